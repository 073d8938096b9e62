package registrar

import (
	"context"
	"os/exec"

	"github.com/trungle/activity-dashboard/cfg"
	"github.com/trungle/activity-dashboard/pkg/log"
)

// ScriptRunner invokes the configured ingestion command for one
// repository and captures stdout and stderr combined, so a failing run
// surfaces its own diagnostics.
type ScriptRunner struct {
	Logger log.Logger
	Config *cfg.Config
}

func NewScriptRunner(logger log.Logger, config *cfg.Config) (*ScriptRunner, error) {
	return &ScriptRunner{
		Logger: logger,
		Config: config,
	}, nil
}

func (r *ScriptRunner) Run(ctx context.Context, name string) (string, error) {
	args := append([]string{}, r.Config.Ingest.Args...)
	args = append(args, "--repo", name)

	cmd := exec.CommandContext(ctx, r.Config.Ingest.Command, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		r.Logger.Error(ctx, "Ingestion command failed for %s: %v", name, err)
	}
	return string(out), err
}
