package config

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/errors"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/types"
)

// Environment variable names
const (
	// EnvEPICSRoot overrides the EPICS top directory
	EnvEPICSRoot = "IBEX_EPICS_ROOT"

	// EnvClientSrc overrides the GUI client source directory
	EnvClientSrc = "IBEX_CLIENT_SRC"

	// EnvGitHubOrganisation overrides the GitHub organisation
	EnvGitHubOrganisation = "IBEX_GITHUB_ORG"
)

// SettingsFile is the name of the optional settings file looked up in the
// current working directory.
const SettingsFile = "ibex-device-generator.toml"

// Standard instrument-machine roots.
const (
	defaultEPICS     = `C:\Instrument\Apps\EPICS`
	defaultClientDev = `C:\Instrument\Dev\ibex_gui`
	defaultOrg       = "ISISComputingGroup"
)

// Settings holds the process-wide roots the generator writes under.
// It is built once at startup and injected into the orchestrator so the
// core stays testable against an in-memory tree.
type Settings struct {
	// EPICS is the EPICS top directory.
	EPICS string `toml:"epics"`

	// EPICSSupport is the support submodule root under EPICS.
	EPICSSupport string `toml:"epics_support"`

	// IOCRoot is the ioc/master directory under EPICS.
	IOCRoot string `toml:"ioc_root"`

	// ClientSrc is the IBEX GUI source directory holding OPI resources.
	ClientSrc string `toml:"client_src"`

	// GitHubOrganisation owns the device support repositories.
	GitHubOrganisation string `toml:"github_organisation"`
}

// Default returns the standard instrument-machine settings.
func Default() *Settings {
	s := &Settings{}
	s.fillDefaults()
	return s
}

// Load builds the settings: the optional TOML settings file first, then
// environment overrides, then defaults for anything still unset. A missing
// settings file is not an error.
func Load(fsys types.FS, dir string) (*Settings, error) {
	s := &Settings{}

	path := filepath.Join(dir, SettingsFile)
	data, err := fsys.ReadFile(path)
	if err == nil {
		if err := toml.Unmarshal(data, s); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "cannot parse %s", path)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot read %s", path)
	}

	s.applyEnv()
	s.fillDefaults()
	return s, nil
}

// applyEnv applies environment variable overrides.
func (s *Settings) applyEnv() {
	if v := os.Getenv(EnvEPICSRoot); v != "" {
		s.EPICS = v
	}
	if v := os.Getenv(EnvClientSrc); v != "" {
		s.ClientSrc = v
	}
	if v := os.Getenv(EnvGitHubOrganisation); v != "" {
		s.GitHubOrganisation = v
	}
}

// fillDefaults completes unset fields. The support and IOC roots derive
// from the EPICS top unless pinned explicitly.
func (s *Settings) fillDefaults() {
	if s.EPICS == "" {
		s.EPICS = defaultEPICS
	}
	if s.EPICSSupport == "" {
		s.EPICSSupport = filepath.Join(s.EPICS, "support")
	}
	if s.IOCRoot == "" {
		s.IOCRoot = filepath.Join(s.EPICS, "ioc", "master")
	}
	if s.ClientSrc == "" {
		s.ClientSrc = filepath.Join(defaultClientDev, "base", "uk.ac.stfc.isis.ibex.opis", "resources")
	}
	if s.GitHubOrganisation == "" {
		s.GitHubOrganisation = defaultOrg
	}
}
