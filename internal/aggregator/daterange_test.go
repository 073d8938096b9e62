package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRange(t *testing.T) {
	testCases := []struct {
		in   string
		want DateRange
	}{
		{"7d", Range7Days},
		{"30d", Range30Days},
		{"90d", Range90Days},
		{"custom", RangeCustom},
		{"all", RangeAll},
		{"", RangeAll},
		{"yesterday", RangeAll},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, ParseDateRange(tc.in), "input %q", tc.in)
	}
}

func TestBoundsPreset(t *testing.T) {
	now := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

	since, until, ok := Range7Days.Bounds(now, nil, nil)
	require.True(t, ok)
	require.NotNil(t, since)
	require.NotNil(t, until)
	assert.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), *since)
	assert.Equal(t, 15, until.Day())
	assert.Equal(t, 23, until.Hour())

	since, _, ok = Range30Days.Bounds(now, nil, nil)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC), *since)
}

func TestBoundsAll(t *testing.T) {
	since, until, ok := RangeAll.Bounds(time.Now(), nil, nil)
	require.True(t, ok)
	assert.Nil(t, since)
	assert.Nil(t, until)
}

func TestBoundsCustom(t *testing.T) {
	start := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC)

	since, until, ok := RangeCustom.Bounds(time.Now(), &start, &end)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), *since)
	assert.Equal(t, 20, until.Day())
	assert.Equal(t, 23, until.Hour())

	// Either date missing means the window is not usable yet
	_, _, ok = RangeCustom.Bounds(time.Now(), &start, nil)
	assert.False(t, ok)
	_, _, ok = RangeCustom.Bounds(time.Now(), nil, &end)
	assert.False(t, ok)
	_, _, ok = RangeCustom.Bounds(time.Now(), nil, nil)
	assert.False(t, ok)
}
