// Package gui registers generated device OPIs with the IBEX client's
// opi_info.xml lookup table.
package gui

import (
	"os"
	"path/filepath"

	"github.com/beevik/etree"

	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/device"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/errors"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/logging"
)

// OPIInfoFile is the registry file name under the client source tree.
const OPIInfoFile = "opi_info.xml"

// OPIInfoPath returns the registry path under the client source root.
func OPIInfoPath(clientSrc string) string {
	return filepath.Join(clientSrc, OPIInfoFile)
}

// AddDeviceOPI inserts an entry for the device's OPI into opi_info.xml.
// Inserting a key that is already registered is a no-op, so re-runs are
// safe. The registry is read and written through the OS because etree
// works on real files; the path always lives in the client source tree.
func AddDeviceOPI(opiInfoPath string, d *device.Info) error {
	logger := logging.GetLogger("gui").With().
		Str("file", opiInfoPath).
		Str("key", d.OPIKey()).
		Logger()

	data, err := os.ReadFile(opiInfoPath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrGUIRegistry, "cannot read %s", opiInfoPath)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return errors.Wrapf(err, errors.ErrGUIRegistry, "cannot parse %s", opiInfoPath)
	}

	root := doc.SelectElement("opis")
	if root == nil {
		return errors.Newf(errors.ErrGUIRegistry, "%s has no <opis> root element", opiInfoPath)
	}

	for _, entry := range root.SelectElements("entry") {
		if key := entry.SelectElement("key"); key != nil && key.Text() == d.OPIKey() {
			logger.Debug().Msg("OPI already registered")
			return nil
		}
	}

	entry := root.CreateElement("entry")
	entry.CreateElement("key").SetText(d.OPIKey())
	value := entry.CreateElement("value")
	value.CreateElement("type").SetText("COMPONENT")
	value.CreateElement("path").SetText(d.OPIFileName())
	value.CreateElement("description").SetText("The OPI for the " + d.DeviceName + ".")
	macros := value.CreateElement("macros")
	macro := macros.CreateElement("macro")
	macro.CreateElement("name").SetText(d.OPIKey())
	macro.CreateElement("description").SetText("The " + d.DeviceName + " PV prefix (e.g. " + d.IOCName + "_01)")
	value.CreateElement("categories")

	doc.Indent(4)
	out, err := doc.WriteToBytes()
	if err != nil {
		return errors.Wrapf(err, errors.ErrGUIRegistry, "cannot serialize %s", opiInfoPath)
	}
	if err := os.WriteFile(opiInfoPath, out, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrGUIRegistry, "cannot write %s", opiInfoPath)
	}

	logger.Info().Msg("registered device OPI")
	return nil
}
