package generate

import (
	"context"

	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/config"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/device"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/errors"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/filesystem"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/github"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/gitutil"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/gui"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/logging"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/orchestration"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/run"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/types"
)

// GitHubClient is the GitHub surface the command needs. *github.Client
// satisfies it.
type GitHubClient interface {
	RepoURL(name string) string
	CreateRepo(ctx context.Context, name string) error
	IssueExistsAndIsOpen(ctx context.Context, ticket int) (bool, error)
}

// Options holds options for the generate command
type Options struct {
	IOCName string

	// DeviceName defaults to IOCName when empty.
	DeviceName string

	Ticket      int
	DeviceCount int

	// UseGit switches repositories to a ticket branch and commits after
	// every step.
	UseGit bool

	// CreateGitHubRepo creates the support repository in the
	// organisation first. Requires GitHubToken.
	CreateGitHubRepo bool
	GitHubToken      string

	// Interactive asks for confirmation before each step.
	Interactive bool

	Quiet bool

	// SettingsDir is where the settings file is looked up; defaults to
	// the current directory.
	SettingsDir string

	Settings   *config.Settings
	FileSystem types.FS   // Allow injecting a filesystem for testing
	Runner     run.Runner // Allow injecting a command runner for testing
	GitHub     GitHubClient

	// OpenRepo and RegisterOPI default to the real git and GUI registry
	// implementations; tests inject fakes.
	OpenRepo    orchestration.RepoOpener
	RegisterOPI orchestration.OPIRegistrar
}

// Result reports what the generate command produced.
type Result struct {
	Device *device.Info
	State  orchestration.State
}

// Generate scaffolds every part of a device integration: support
// submodule, IOC apps, test framework, emulator and GUI entry. The
// development ticket is verified against GitHub before anything is
// written.
func Generate(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.generate")

	fs := opts.FileSystem
	if fs == nil {
		fs = filesystem.NewOS()
	}
	runner := opts.Runner
	if runner == nil {
		runner = run.NewExecRunner()
	}

	settings := opts.Settings
	if settings == nil {
		var err error
		settings, err = config.Load(fs, opts.SettingsDir)
		if err != nil {
			return nil, err
		}
	}

	deviceName := opts.DeviceName
	if deviceName == "" {
		deviceName = opts.IOCName
	}
	d, err := device.New(opts.IOCName, deviceName, opts.Ticket, opts.DeviceCount)
	if err != nil {
		return nil, err
	}

	gh := opts.GitHub
	if gh == nil {
		gh = github.NewClient(settings.GitHubOrganisation, opts.GitHubToken)
	}

	logger.Info().
		Str("ioc", d.IOCName).
		Str("device", d.DeviceName).
		Int("ticket", d.Ticket).
		Int("device_count", d.DeviceCount).
		Bool("use_git", opts.UseGit).
		Msg("Generating device integration")

	// Nothing is written before the ticket is known to be real.
	open, err := gh.IssueExistsAndIsOpen(ctx, d.Ticket)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, errors.Newf(errors.ErrInvalidTicket,
			"ticket %d does not exist or is closed", d.Ticket)
	}

	openRepo := opts.OpenRepo
	if openRepo == nil {
		openRepo = func(path string) (orchestration.Repo, error) {
			return gitutil.Open(path)
		}
	}
	registerOPI := opts.RegisterOPI
	if registerOPI == nil {
		registerOPI = gui.AddDeviceOPI
	}

	orchOpts := orchestration.Options{
		Settings:    settings,
		FS:          fs,
		Runner:      runner,
		GitHub:      gh,
		OpenRepo:    openRepo,
		RegisterOPI: registerOPI,
		UseGit:      opts.UseGit,
		CreateRepo:  opts.CreateGitHubRepo,
		Quiet:       opts.Quiet,
	}
	if opts.Interactive {
		orchOpts.Confirmer = orchestration.TerminalConfirmer{}
	}

	o := orchestration.New(orchOpts)
	if err := o.Run(ctx, d); err != nil {
		return &Result{Device: d, State: o.State()}, err
	}

	logger.Info().Str("ioc", d.IOCName).Msg("Device integration generated")
	return &Result{Device: d, State: o.State()}, nil
}
