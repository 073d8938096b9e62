// Package registrar handles requests to track a new repository: name
// validation, an upstream existence probe, registry persistence, and the
// hand-off to the ingestion step.
package registrar

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/trungle/activity-dashboard/cfg"
	"github.com/trungle/activity-dashboard/internal/model"
	"github.com/trungle/activity-dashboard/pkg/log"
)

var repoNameRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

// Registry is the slice of the data store the registrar writes to.
type Registry interface {
	CreateRepo(ctx context.Context, name string) (*model.Repo, error)
}

// Prober checks whether a repository exists upstream.
type Prober interface {
	CheckRepo(ctx context.Context, name string) (bool, error)
}

// Runner executes the ingestion step for one repository and returns its
// captured output.
type Runner interface {
	Run(ctx context.Context, name string) (string, error)
}

// Result is returned on a successful registration. Output carries whatever
// the ingestion step printed.
type Result struct {
	Message string `json:"message"`
	Output  string `json:"output"`
}

type Registrar struct {
	Logger log.Logger
	Config *cfg.Config
	Store  Registry
	Prober Prober
	Runner Runner
}

func NewRegistrar(logger log.Logger, config *cfg.Config, st Registry, prober Prober, runner Runner) (*Registrar, error) {
	return &Registrar{
		Logger: logger,
		Config: config,
		Store:  st,
		Prober: prober,
		Runner: runner,
	}, nil
}

// Register validates the name, probes GitHub, persists the repository to
// the registry and the ingestion config file, then runs the ingestion
// step. Validation failures happen before any external call. Duplicate
// names are left to the registry's unique index.
func (r *Registrar) Register(ctx context.Context, name string) (*Result, error) {
	if !repoNameRe.MatchString(name) {
		return nil, &ValidationError{Name: name}
	}

	exists, err := r.Prober.CheckRepo(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("github lookup for %s failed: %w", name, err)
	}
	if !exists {
		return nil, &NotFoundError{Name: name}
	}

	if _, err := r.Store.CreateRepo(ctx, name); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", name, err)
	}

	if err := r.appendConfigLine(name); err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", r.Config.Ingest.ConfigFile, err)
	}

	r.Logger.Info(ctx, "Registered repository %s, starting ingestion", name)
	output, err := r.Runner.Run(ctx, name)
	if err != nil {
		return nil, &IngestError{Output: output, Err: err}
	}

	return &Result{
		Message: fmt.Sprintf("repository %s registered", name),
		Output:  output,
	}, nil
}

// appendConfigLine adds the name=name line the ingestor's repository list
// is built from.
func (r *Registrar) appendConfigLine(name string) error {
	f, err := os.OpenFile(r.Config.Ingest.ConfigFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%s=%s\n", name, name)
	return err
}
