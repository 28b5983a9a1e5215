package orchestration

import (
	"context"
	"path/filepath"

	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/buildlist"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/device"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/gui"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/placeholders"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/templates"
)

// Step is one unit of the fixed generation sequence.
type Step struct {
	Name        string
	Description string

	// After is the state the orchestrator reaches once the step ran.
	After State

	// RepoPath is the repository committed to after the step when git
	// use is enabled; empty for steps without a repository.
	RepoPath string

	Run func(ctx context.Context, d *device.Info) error
}

// steps returns the pipeline in its fixed order.
func (o *Orchestrator) steps() []Step {
	return []Step{
		{
			Name:        "create-submodule",
			Description: "Add device support submodule to EPICS top",
			After:       StateSubmoduleCreated,
			RepoPath:    o.settings.EPICS,
			Run:         o.createSubmodule,
		},
		{
			Name:        "populate-structure",
			Description: "Add basic files into the support module",
			After:       StateStructurePopulated,
			RepoPath:    o.settings.EPICS,
			Run:         o.populateStructure,
		},
		{
			Name:        "populate-ioc",
			Description: "Add IOC application(s) for the device",
			After:       StateIOCPopulated,
			RepoPath:    o.settings.EPICS,
			Run:         o.populateIOC,
		},
		{
			Name:        "add-test-framework",
			Description: "Add system test scaffold",
			After:       StateTestFrameworkAdded,
			RepoPath:    o.settings.EPICS,
			Run:         o.addTestFramework,
		},
		{
			Name:        "add-emulator",
			Description: "Add device emulator scaffold",
			After:       StateEmulatorAdded,
			RepoPath:    o.settings.EPICS,
			Run:         o.addEmulator,
		},
		{
			Name:        "add-gui",
			Description: "Add starter OPI and register it with the GUI",
			After:       StateGUIAdded,
			RepoPath:    o.settings.ClientSrc,
			Run:         o.addGUI,
		},
	}
}

// populate stamps one template tag into targetRoot for the device.
func (o *Orchestrator) populate(tag, targetRoot string, d *device.Info) error {
	m, err := placeholders.Resolve(d, o.settings)
	if err != nil {
		return err
	}
	tmpl, err := templates.Get(tag)
	if err != nil {
		return err
	}
	return templates.Populate(tmpl, targetRoot, m, o.fs)
}

// createSubmodule adds the device support submodule to the EPICS top,
// copies the submodule extras and registers the module in the support
// Makefile.
func (o *Orchestrator) createSubmodule(ctx context.Context, d *device.Info) error {
	if o.createRepo {
		if err := o.github.CreateRepo(ctx, d.GitHubRepoName()); err != nil {
			return err
		}
	}

	repo, err := o.openRepo(o.settings.EPICS)
	if err != nil {
		return err
	}
	url := o.github.RepoURL(d.GitHubRepoName())
	if err := repo.CreateSubmodule(d.SupportModuleName(), url, d.SupportMasterPath(o.settings)); err != nil {
		return err
	}

	if err := o.populate("3", o.settings.EPICS, d); err != nil {
		return err
	}

	return buildlist.AddEntry(o.fs,
		filepath.Join(o.settings.EPICSSupport, "Makefile"),
		"SUPPDIRS", d.SupportModuleName())
}

// populateStructure adds the build skeleton into the support module and
// runs the build tool there.
func (o *Orchestrator) populateStructure(ctx context.Context, d *device.Info) error {
	if err := o.populate("4", o.settings.EPICS, d); err != nil {
		return err
	}
	return o.runner.Run(ctx, []string{"make"}, d.SupportMasterPath(o.settings))
}

// populateIOC adds the primary IOC app, then one numbered app per
// additional device, registers the IOC in the build list and builds it.
func (o *Orchestrator) populateIOC(ctx context.Context, d *device.Info) error {
	if err := o.populate("5_1", o.settings.EPICS, d); err != nil {
		return err
	}

	// Apps 2..N share the IOC and differ only in the two-digit index.
	for i := 2; i <= d.DeviceCount; i++ {
		d.Index = device.AppIndex(i)
		if err := o.populate("5_2", o.settings.EPICS, d); err != nil {
			d.Index = ""
			return err
		}
	}
	d.Index = ""

	if err := buildlist.AddEntry(o.fs,
		filepath.Join(o.settings.IOCRoot, "Makefile"),
		"IOCDIRS", d.IOCName); err != nil {
		return err
	}

	return o.runner.Run(ctx, []string{"make"}, d.IOCPath(o.settings))
}

func (o *Orchestrator) addTestFramework(ctx context.Context, d *device.Info) error {
	return o.populate("6", o.settings.EPICS, d)
}

func (o *Orchestrator) addEmulator(ctx context.Context, d *device.Info) error {
	return o.populate("7", o.settings.EPICS, d)
}

// addGUI places the starter OPI into the client source tree and registers
// it in opi_info.xml.
func (o *Orchestrator) addGUI(ctx context.Context, d *device.Info) error {
	if err := o.populate("8", o.settings.ClientSrc, d); err != nil {
		return err
	}
	return o.registerOPI(gui.OPIInfoPath(o.settings.ClientSrc), d)
}
