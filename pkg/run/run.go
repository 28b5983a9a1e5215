// Package run executes external build tools as subprocesses.
package run

import (
	"context"
	"os/exec"
	"strings"

	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/errors"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/logging"
)

// Runner executes external commands in a working directory. It exists as an
// interface so the orchestrator can be tested without spawning processes.
type Runner interface {
	Run(ctx context.Context, argv []string, cwd string) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// NewExecRunner creates the standard subprocess runner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes argv in cwd, blocking until the process exits. Output is
// captured into the log. A non-zero exit or a spawn failure surfaces as an
// external-tool error.
func (r *ExecRunner) Run(ctx context.Context, argv []string, cwd string) error {
	if len(argv) == 0 {
		return errors.New(errors.ErrInternal, "empty command")
	}
	logger := logging.GetLogger("run").With().
		Str("command", strings.Join(argv, " ")).
		Str("cwd", cwd).
		Logger()
	logging.LogCommand(argv[0], argv[1:])

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = cwd

	output, err := cmd.CombinedOutput()
	if len(output) > 0 {
		logger.Debug().Str("output", string(output)).Msg("command output")
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrExternalTool,
			"%s failed in %s", strings.Join(argv, " "), cwd).
			WithDetail("output", string(output))
	}

	logger.Info().Msg("command succeeded")
	return nil
}
