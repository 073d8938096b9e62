package aggregator

import "time"

// DateRange is the fixed set of windows the dashboard offers.
type DateRange string

const (
	RangeAll    DateRange = "all"
	Range7Days  DateRange = "7d"
	Range30Days DateRange = "30d"
	Range90Days DateRange = "90d"
	RangeCustom DateRange = "custom"
)

// ParseDateRange maps a query-string value onto a DateRange. Unknown values
// fall back to RangeAll, matching the dashboard's default selection.
func ParseDateRange(s string) DateRange {
	switch DateRange(s) {
	case Range7Days, Range30Days, Range90Days, RangeCustom:
		return DateRange(s)
	default:
		return RangeAll
	}
}

// Bounds computes the inclusive window for a refresh. The presets span
// start-of-day(now-N) to end-of-day(now); custom spans start-of-day(start)
// to end-of-day(end). ok is false when a custom range is missing either
// date, which tells the caller to skip the fetch entirely.
func (r DateRange) Bounds(now time.Time, start, end *time.Time) (since, until *time.Time, ok bool) {
	switch r {
	case RangeAll:
		return nil, nil, true
	case Range7Days:
		return presetBounds(now, 7)
	case Range30Days:
		return presetBounds(now, 30)
	case Range90Days:
		return presetBounds(now, 90)
	case RangeCustom:
		if start == nil || end == nil {
			return nil, nil, false
		}
		s := startOfDay(*start)
		u := endOfDay(*end)
		return &s, &u, true
	default:
		return nil, nil, true
	}
}

func presetBounds(now time.Time, days int) (*time.Time, *time.Time, bool) {
	s := startOfDay(now.AddDate(0, 0, -days))
	u := endOfDay(now)
	return &s, &u, true
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
