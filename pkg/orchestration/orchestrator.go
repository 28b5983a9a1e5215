package orchestration

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"

	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/config"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/device"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/logging"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/run"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/types"
)

// Options wires the orchestrator's collaborators.
type Options struct {
	Settings *config.Settings
	FS       types.FS
	Runner   run.Runner
	GitHub   GitHubAPI
	OpenRepo RepoOpener

	// RegisterOPI updates the GUI registry; see gui.AddDeviceOPI.
	RegisterOPI OPIRegistrar

	// UseGit switches repositories to ticket branches and commits after
	// every step. Repositories must be clean when it is set.
	UseGit bool

	// CreateRepo creates the support repository on GitHub before the
	// submodule is added. Requires a token on the GitHub client.
	CreateRepo bool

	// Confirmer, when non-nil, asks before each step; a declined step is
	// skipped and the pipeline continues.
	Confirmer Confirmer

	// Quiet suppresses terminal progress output (used by tests).
	Quiet bool
}

// Orchestrator executes the generation steps in their fixed order.
// It runs strictly sequentially: no step starts before the previous one,
// including its external tool invocation, has finished.
type Orchestrator struct {
	settings    *config.Settings
	fs          types.FS
	runner      run.Runner
	github      GitHubAPI
	openRepo    RepoOpener
	registerOPI OPIRegistrar
	useGit      bool
	createRepo  bool
	confirmer   Confirmer
	quiet       bool

	state State
}

// New creates an orchestrator in the NOT_STARTED state.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		settings:    opts.Settings,
		fs:          opts.FS,
		runner:      opts.Runner,
		github:      opts.GitHub,
		openRepo:    opts.OpenRepo,
		registerOPI: opts.RegisterOPI,
		useGit:      opts.UseGit,
		createRepo:  opts.CreateRepo,
		confirmer:   opts.Confirmer,
		quiet:       opts.Quiet,
		state:       StateNotStarted,
	}
}

// State reports the last pipeline state reached.
func (o *Orchestrator) State() State {
	return o.state
}

// Run executes every step in order against the shared device record.
// The first failure halts the pipeline; files already written stay on
// disk and the error surfaces to the caller. There is no rollback.
func (o *Orchestrator) Run(ctx context.Context, d *device.Info) error {
	logger := logging.GetLogger("orchestration").With().
		Str("ioc", d.IOCName).
		Str("device", d.DeviceName).
		Logger()

	steps := o.steps()

	if o.useGit {
		if err := o.prepareBranches(d, steps); err != nil {
			return err
		}
	}

	for _, step := range steps {
		if o.confirmer != nil {
			ok, err := o.confirmer.ConfirmStep(step.Name, step.Description)
			if err != nil {
				return err
			}
			if !ok {
				logger.Info().Str("step", step.Name).Msg("step skipped by user")
				o.state = step.After
				continue
			}
		}

		if !o.quiet {
			pterm.Info.Printfln("%s...", step.Description)
		}
		logger.Info().Str("step", step.Name).Msg("running step")

		if err := step.Run(ctx, d); err != nil {
			if !o.quiet {
				pterm.Error.Printfln("%s failed: %v", step.Name, err)
			}
			return err
		}

		if o.useGit && step.RepoPath != "" {
			if err := o.commitStep(d, step); err != nil {
				return err
			}
		}

		o.state = step.After
		if !o.quiet {
			pterm.Success.Printfln("%s done", step.Name)
		}
	}

	o.state = StateDone
	logger.Info().Msg("pipeline finished")
	return nil
}

// prepareBranches verifies every involved repository is clean and switches
// each to the ticket branch before any step writes files.
func (o *Orchestrator) prepareBranches(d *device.Info, steps []Step) error {
	seen := map[string]bool{}
	for _, step := range steps {
		if step.RepoPath == "" || seen[step.RepoPath] {
			continue
		}
		seen[step.RepoPath] = true

		repo, err := o.openRepo(step.RepoPath)
		if err != nil {
			return err
		}
		if err := repo.EnsureClean(); err != nil {
			return err
		}
		if err := repo.SwitchToTicketBranch(d.Ticket, d.IOCName); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) commitStep(d *device.Info, step Step) error {
	repo, err := o.openRepo(step.RepoPath)
	if err != nil {
		return err
	}
	message := fmt.Sprintf("Ticket %d: %s", d.Ticket, step.Description)
	return repo.CommitAll(message)
}
