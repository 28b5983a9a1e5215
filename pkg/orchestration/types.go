package orchestration

import (
	"context"

	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/device"
)

// State is the orchestrator's position in the generation pipeline.
type State string

// Pipeline states, in order. Each step advances the orchestrator to the
// next state; a failure leaves it at the last state reached.
const (
	StateNotStarted         State = "NOT_STARTED"
	StateSubmoduleCreated   State = "SUBMODULE_CREATED"
	StateStructurePopulated State = "STRUCTURE_POPULATED"
	StateIOCPopulated       State = "IOC_POPULATED"
	StateTestFrameworkAdded State = "TEST_FRAMEWORK_ADDED"
	StateEmulatorAdded      State = "EMULATOR_ADDED"
	StateGUIAdded           State = "GUI_ADDED"
	StateDone               State = "DONE"
)

// Repo is the orchestrator's view of a version-controlled tree.
type Repo interface {
	EnsureClean() error
	SwitchToTicketBranch(ticket int, iocName string) error
	CommitAll(message string) error
	CreateSubmodule(name, url, absPath string) error
}

// RepoOpener opens the repository containing path.
type RepoOpener func(path string) (Repo, error)

// GitHubAPI is the subset of the GitHub client the pipeline needs.
type GitHubAPI interface {
	RepoURL(name string) string
	CreateRepo(ctx context.Context, name string) error
}

// OPIRegistrar records a device OPI in the GUI registry file.
type OPIRegistrar func(opiInfoPath string, d *device.Info) error

// Confirmer asks the user whether a step should run. A nil Confirmer
// means every step runs.
type Confirmer interface {
	ConfirmStep(name, description string) (bool, error)
}
