package device

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/config"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/errors"
)

// DefaultDeviceCount is the number of duplicate device IOCs generated when
// no count is given.
const DefaultDeviceCount = 1

// MaxDeviceCount bounds the count so the per-app index stays two digits.
const MaxDeviceCount = 99

// IOC names become PV prefixes, so they follow the EPICS convention of
// short uppercase identifiers.
var iocNamePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]{0,7}$`)

// Info is the per-run parameter record threaded through every generation
// step. It is constructed once from validated CLI input and shared by
// pointer; Index is the only field written after construction, by the
// IOC-population step.
type Info struct {
	// IOCName is the name of the IOC, used in ioc/master and in PVs.
	IOCName string

	// DeviceName is the device name, used for the support submodule and
	// the GitHub repository. Defaults to the IOC name.
	DeviceName string

	// Ticket is the GitHub issue number this work is done under.
	Ticket int

	// DeviceCount is the number of duplicate device IOCs to generate.
	DeviceCount int

	// Index is the two-digit app index ("02".."99") while the nth
	// duplicate IOC app is being generated, empty otherwise.
	Index string
}

// New validates the primary inputs and returns the parameter record.
func New(iocName, deviceName string, ticket, deviceCount int) (*Info, error) {
	if deviceName == "" {
		deviceName = iocName
	}
	if !IsValidIOCName(iocName) {
		return nil, errors.Newf(errors.ErrInvalidIOCName,
			"%q is not a valid IOC name: expected 1-8 uppercase alphanumeric characters", iocName)
	}
	if !IsValidDeviceName(deviceName) {
		return nil, errors.Newf(errors.ErrInvalidDeviceName,
			"%q is not a valid device name", deviceName)
	}
	if !IsValidDeviceCount(deviceCount) {
		return nil, errors.Newf(errors.ErrInvalidDeviceCount,
			"device count %d is out of range 1-%d", deviceCount, MaxDeviceCount)
	}
	if ticket <= 0 {
		return nil, errors.Newf(errors.ErrInvalidTicket, "ticket number %d is not positive", ticket)
	}

	return &Info{
		IOCName:     iocName,
		DeviceName:  deviceName,
		Ticket:      ticket,
		DeviceCount: deviceCount,
	}, nil
}

// IsValidIOCName reports whether name is usable as an IOC name.
func IsValidIOCName(name string) bool {
	return iocNamePattern.MatchString(name)
}

// IsValidDeviceName reports whether name is usable as a device name.
// The name ends up in directory names and repository names, so path
// separators and shell-hostile characters are rejected.
func IsValidDeviceName(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	return !strings.ContainsAny(name, `/\:*?"<>|`)
}

// IsValidDeviceCount reports whether count is in the supported range.
func IsValidDeviceCount(count int) bool {
	return count >= 1 && count <= MaxDeviceCount
}

// SupportModuleName is the name of the device support module directory
// under EPICS support.
func (d *Info) SupportModuleName() string {
	return strings.ReplaceAll(strings.ToLower(d.DeviceName), " ", "_")
}

// GitHubRepoName is the name of the support repository on GitHub.
func (d *Info) GitHubRepoName() string {
	return "EPICS-" + strings.ReplaceAll(d.DeviceName, " ", "_")
}

// LewisDeviceName is the emulator package name for the device.
func (d *Info) LewisDeviceName() string {
	return strings.ReplaceAll(strings.ToLower(d.DeviceName), " ", "_")
}

// OPIFileName is the file name of the device's OPI resource.
func (d *Info) OPIFileName() string {
	return d.SupportModuleName() + ".opi"
}

// OPIKey is the key the GUI uses to look up the device OPI.
func (d *Info) OPIKey() string {
	return strings.ReplaceAll(strings.ToUpper(d.DeviceName), " ", "_")
}

// SupportPath is the support submodule directory under EPICS support.
func (d *Info) SupportPath(s *config.Settings) string {
	return filepath.Join(s.EPICSSupport, d.SupportModuleName())
}

// SupportMasterPath is the master checkout inside the support submodule.
func (d *Info) SupportMasterPath(s *config.Settings) string {
	return filepath.Join(d.SupportPath(s), "master")
}

// IOCPath is the IOC directory under ioc/master.
func (d *Info) IOCPath(s *config.Settings) string {
	return filepath.Join(s.IOCRoot, d.IOCName)
}

// AppIndex formats i as the two-digit app index used for duplicate IOCs.
func AppIndex(i int) string {
	return fmt.Sprintf("%02d", i)
}
