package templates_test

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/errors"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/filesystem"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/placeholders"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/templates"
)

func adhoc(t *testing.T, files fstest.MapFS) *templates.Template {
	t.Helper()
	tmpl, err := templates.NewFromFS("adhoc", files)
	require.NoError(t, err)
	return tmpl
}

func TestPopulateSubstitutesNamesAndContents(t *testing.T) {
	tmpl := adhoc(t, fstest.MapFS{
		"{device_name}_support/README": &fstest.MapFile{
			Data: []byte("Support for {device_name}"),
		},
	})
	mem := afero.NewMemMapFs()
	fs := filesystem.NewAfero(mem)
	m := placeholders.Map{"device_name": "chopper"}

	require.NoError(t, templates.Populate(tmpl, "/target", m, fs))

	got, err := afero.ReadFile(mem, filepath.Join("/target", "chopper_support", "README"))
	require.NoError(t, err)
	assert.Equal(t, "Support for chopper", string(got))
}

func TestPopulatePreservesStructureAndBytes(t *testing.T) {
	tmpl := adhoc(t, fstest.MapFS{
		"a/b/{ioc_name}/file.txt": &fstest.MapFile{Data: []byte("name={ioc_name}\nplain $(MACRO)\n")},
		"a/verbatim.txt":          &fstest.MapFile{Data: []byte("no tokens here\n")},
	})
	mem := afero.NewMemMapFs()
	fs := filesystem.NewAfero(mem)
	m := placeholders.Map{"ioc_name": "CHOPPER"}

	require.NoError(t, templates.Populate(tmpl, "/epics", m, fs))

	got, err := afero.ReadFile(mem, "/epics/a/b/CHOPPER/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "name=CHOPPER\nplain $(MACRO)\n", string(got))

	got, err = afero.ReadFile(mem, "/epics/a/verbatim.txt")
	require.NoError(t, err)
	assert.Equal(t, "no tokens here\n", string(got))
}

func TestPopulateMissingKeyWritesNothing(t *testing.T) {
	tmpl := adhoc(t, fstest.MapFS{
		"ok.txt":  &fstest.MapFile{Data: []byte("fine")},
		"bad.txt": &fstest.MapFile{Data: []byte("value {missing_key}")},
	})
	mem := afero.NewMemMapFs()
	fs := filesystem.NewAfero(mem)

	err := templates.Populate(tmpl, "/target", placeholders.Map{}, fs)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnresolvedPlaceholder))

	// Nothing may be written, not even entries that rendered cleanly
	exists, _ := afero.DirExists(mem, "/target")
	assert.False(t, exists, "target must be untouched after a substitution failure")
}

func TestPopulateManifestRequirementChecked(t *testing.T) {
	tmpl := adhoc(t, fstest.MapFS{
		templates.ManifestFile: &fstest.MapFile{
			Data: []byte("name: x\nrequires: [index]\n"),
		},
		"file.txt": &fstest.MapFile{Data: []byte("static")},
	})
	mem := afero.NewMemMapFs()
	fs := filesystem.NewAfero(mem)

	err := templates.Populate(tmpl, "/target", placeholders.Map{}, fs)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnresolvedPlaceholder))
}

func TestPopulateSkipsManifest(t *testing.T) {
	tmpl := adhoc(t, fstest.MapFS{
		templates.ManifestFile: &fstest.MapFile{Data: []byte("name: x\n")},
		"file.txt":             &fstest.MapFile{Data: []byte("static")},
	})
	mem := afero.NewMemMapFs()
	fs := filesystem.NewAfero(mem)

	require.NoError(t, templates.Populate(tmpl, "/target", placeholders.Map{}, fs))

	exists, _ := afero.Exists(mem, "/target/"+templates.ManifestFile)
	assert.False(t, exists, "manifest must not be populated into the target")
}

func TestPopulateOverwritesExisting(t *testing.T) {
	tmpl := adhoc(t, fstest.MapFS{
		"file.txt": &fstest.MapFile{Data: []byte("from template {device_name}")},
	})
	mem := afero.NewMemMapFs()
	fs := filesystem.NewAfero(mem)
	require.NoError(t, afero.WriteFile(mem, "/target/file.txt", []byte("stale"), 0644))

	m := placeholders.Map{"device_name": "chopper"}
	require.NoError(t, templates.Populate(tmpl, "/target", m, fs))

	got, err := afero.ReadFile(mem, "/target/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "from template chopper", string(got), "re-runs overwrite, last writer wins")
}

func TestPopulateBinaryAssetVerbatim(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', 0x00, '{', 'i', 'o', 'c', '_', 'n', 'a', 'm', 'e', '}'}
	tmpl := adhoc(t, fstest.MapFS{
		"icon.png": &fstest.MapFile{Data: payload},
	})
	mem := afero.NewMemMapFs()
	fs := filesystem.NewAfero(mem)

	require.NoError(t, templates.Populate(tmpl, "/target", placeholders.Map{}, fs))

	got, err := afero.ReadFile(mem, "/target/icon.png")
	require.NoError(t, err)
	assert.Equal(t, payload, got, "binary content must not be substituted")
}

func TestPopulateEmbeddedChopperExample(t *testing.T) {
	tmpl, err := templates.Get("4")
	require.NoError(t, err)

	mem := afero.NewMemMapFs()
	fs := filesystem.NewAfero(mem)
	m := placeholders.Map{
		"device_name":                "chopper",
		"device_support_module_name": "chopper",
	}

	require.NoError(t, templates.Populate(tmpl, "/epics", m, fs))

	got, err := afero.ReadFile(mem, "/epics/support/chopper/master/Makefile")
	require.NoError(t, err)
	assert.Contains(t, string(got), "DIRS += chopperSup")

	db, err := afero.ReadFile(mem, "/epics/support/chopper/master/chopperSup/chopper.db")
	require.NoError(t, err)
	assert.Contains(t, string(db), "Records for chopper")
	assert.NotContains(t, string(db), "{device_name}")
}
