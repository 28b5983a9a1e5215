package placeholders

import (
	"regexp"
	"strconv"

	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/config"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/device"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/errors"
)

// Placeholder keys recognised in template file names and contents.
const (
	IOCName                 = "ioc_name"
	DeviceName              = "device_name"
	Ticket                  = "ticket"
	DeviceCount             = "device_count"
	DeviceSupportModuleName = "device_support_module_name"
	GitHubRepoName          = "github_repo_name"
	LewisDeviceName         = "lewis_device_name"
	OPIFileName             = "opi_file_name"
	OPIKey                  = "opi_key"
	SupportPath             = "support_path"
	SupportMasterPath       = "support_master_path"
	IOCPath                 = "ioc_path"
	Index                   = "index"
)

// Map holds the resolved placeholder values for one population run.
type Map map[string]string

// Tokens look like {device_name}: a brace-wrapped lowercase identifier.
// Brace pairs that do not match this shape (C blocks, format strings) are
// left alone.
var tokenPattern = regexp.MustCompile(`\{([a-z][a-z0-9_]*)\}`)

// Resolve validates the primary inputs on the record and derives the full
// placeholder mapping. Derived keys are pure functions of the primaries;
// index is present only while a duplicate IOC app is being generated.
func Resolve(d *device.Info, s *config.Settings) (Map, error) {
	if !device.IsValidIOCName(d.IOCName) {
		return nil, errors.Newf(errors.ErrInvalidIOCName, "%q is not a valid IOC name", d.IOCName)
	}
	if !device.IsValidDeviceName(d.DeviceName) {
		return nil, errors.Newf(errors.ErrInvalidDeviceName, "%q is not a valid device name", d.DeviceName)
	}
	if !device.IsValidDeviceCount(d.DeviceCount) {
		return nil, errors.Newf(errors.ErrInvalidDeviceCount, "device count %d is out of range", d.DeviceCount)
	}

	m := Map{
		IOCName:                 d.IOCName,
		DeviceName:              d.DeviceName,
		Ticket:                  strconv.Itoa(d.Ticket),
		DeviceCount:             strconv.Itoa(d.DeviceCount),
		DeviceSupportModuleName: d.SupportModuleName(),
		GitHubRepoName:          d.GitHubRepoName(),
		LewisDeviceName:         d.LewisDeviceName(),
		OPIFileName:             d.OPIFileName(),
		OPIKey:                  d.OPIKey(),
		SupportPath:             d.SupportPath(s),
		SupportMasterPath:       d.SupportMasterPath(s),
		IOCPath:                 d.IOCPath(s),
	}
	if d.Index != "" {
		m[Index] = d.Index
	}
	return m, nil
}

// Substitute replaces every {key} token in text with its value from m.
// A token with no mapping fails: a leaked raw token would corrupt the
// generated source or build files downstream.
func Substitute(text string, m Map) (string, error) {
	var missing string
	out := tokenPattern.ReplaceAllStringFunc(text, func(token string) string {
		key := token[1 : len(token)-1]
		if value, ok := m[key]; ok {
			return value
		}
		if missing == "" {
			missing = key
		}
		return token
	})
	if missing != "" {
		return "", errors.Newf(errors.ErrUnresolvedPlaceholder,
			"template token {%s} has no placeholder value", missing).
			WithDetail("key", missing)
	}
	return out, nil
}
