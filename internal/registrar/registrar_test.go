package registrar

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trungle/activity-dashboard/cfg"
	"github.com/trungle/activity-dashboard/internal/model"
)

type nopLogger struct{}

func (nopLogger) Info(ctx context.Context, format string, args ...interface{})     {}
func (nopLogger) Warn(ctx context.Context, format string, args ...interface{})     {}
func (nopLogger) Error(ctx context.Context, format string, args ...interface{})    {}
func (nopLogger) Debug(ctx context.Context, format string, args ...interface{})    {}
func (nopLogger) Critical(ctx context.Context, format string, args ...interface{}) {}

type fakeRegistry struct {
	created []string
	err     error
}

func (f *fakeRegistry) CreateRepo(ctx context.Context, name string) (*model.Repo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, name)
	return &model.Repo{Model: model.Model{ID: uint(len(f.created))}, Name: name}, nil
}

type fakeProber struct {
	exists bool
	err    error
	calls  int
}

func (f *fakeProber) CheckRepo(ctx context.Context, name string) (bool, error) {
	f.calls++
	return f.exists, f.err
}

type fakeRunner struct {
	output string
	err    error
	calls  int
}

func (f *fakeRunner) Run(ctx context.Context, name string) (string, error) {
	f.calls++
	return f.output, f.err
}

func newTestRegistrar(t *testing.T, registry *fakeRegistry, prober *fakeProber, runner *fakeRunner) (*Registrar, string) {
	t.Helper()
	loader, _ := cfg.NewMockLoader()
	config, err := loader.Load()
	require.NoError(t, err)
	config.Ingest.ConfigFile = filepath.Join(t.TempDir(), "config.properties")

	reg, err := NewRegistrar(nopLogger{}, config, registry, prober, runner)
	require.NoError(t, err)
	return reg, config.Ingest.ConfigFile
}

func TestRegisterInvalidNameRejectedBeforeAnyCall(t *testing.T) {
	prober := &fakeProber{exists: true}
	registry := &fakeRegistry{}
	runner := &fakeRunner{}
	reg, _ := newTestRegistrar(t, registry, prober, runner)

	for _, name := range []string{"", "nohere", "owner/", "/repo", "a/b/c", "owner/re po", "owner/repo;rm"} {
		_, err := reg.Register(context.Background(), name)
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr, "name %q", name)
	}

	assert.Zero(t, prober.calls, "invalid names must be rejected before the upstream probe")
	assert.Empty(t, registry.created)
	assert.Zero(t, runner.calls)
}

func TestRegisterUnknownRepository(t *testing.T) {
	prober := &fakeProber{exists: false}
	registry := &fakeRegistry{}
	runner := &fakeRunner{}
	reg, _ := newTestRegistrar(t, registry, prober, runner)

	_, err := reg.Register(context.Background(), "ghost/nowhere")
	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Contains(t, notFoundErr.Error(), "ghost/nowhere")
	assert.Empty(t, registry.created)
	assert.Zero(t, runner.calls)
}

func TestRegisterProbeFailure(t *testing.T) {
	prober := &fakeProber{err: errors.New("github unreachable")}
	reg, _ := newTestRegistrar(t, &fakeRegistry{}, prober, &fakeRunner{})

	_, err := reg.Register(context.Background(), "acme/widgets")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "github unreachable")
}

func TestRegisterSuccess(t *testing.T) {
	prober := &fakeProber{exists: true}
	registry := &fakeRegistry{}
	runner := &fakeRunner{output: "ingested 42 records"}
	reg, configFile := newTestRegistrar(t, registry, prober, runner)

	result, err := reg.Register(context.Background(), "acme/widgets")
	require.NoError(t, err)
	assert.Contains(t, result.Message, "acme/widgets")
	assert.Equal(t, "ingested 42 records", result.Output)
	assert.Equal(t, []string{"acme/widgets"}, registry.created)
	assert.Equal(t, 1, runner.calls)

	content, err := os.ReadFile(configFile)
	require.NoError(t, err)
	assert.Equal(t, "acme/widgets=acme/widgets\n", string(content))
}

func TestRegisterAppendsToExistingConfig(t *testing.T) {
	prober := &fakeProber{exists: true}
	reg, configFile := newTestRegistrar(t, &fakeRegistry{}, prober, &fakeRunner{})
	require.NoError(t, os.WriteFile(configFile, []byte("acme/gadgets=acme/gadgets\n"), 0o644))

	_, err := reg.Register(context.Background(), "acme/widgets")
	require.NoError(t, err)

	content, err := os.ReadFile(configFile)
	require.NoError(t, err)
	assert.Equal(t, "acme/gadgets=acme/gadgets\nacme/widgets=acme/widgets\n", string(content))
}

func TestRegisterIngestFailureCarriesOutput(t *testing.T) {
	prober := &fakeProber{exists: true}
	runner := &fakeRunner{output: "fatal: token expired", err: errors.New("exit status 1")}
	reg, _ := newTestRegistrar(t, &fakeRegistry{}, prober, runner)

	_, err := reg.Register(context.Background(), "acme/widgets")
	var ingestErr *IngestError
	require.ErrorAs(t, err, &ingestErr)
	assert.Equal(t, "fatal: token expired", ingestErr.Error())
	assert.ErrorContains(t, errors.Unwrap(ingestErr), "exit status 1")
}

func TestRegisterStoreFailure(t *testing.T) {
	prober := &fakeProber{exists: true}
	registry := &fakeRegistry{err: errors.New("duplicate entry")}
	runner := &fakeRunner{}
	reg, _ := newTestRegistrar(t, registry, prober, runner)

	_, err := reg.Register(context.Background(), "acme/widgets")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate entry")
	assert.Zero(t, runner.calls, "ingestion must not run when persistence fails")
}
