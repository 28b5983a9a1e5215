package buildlist_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/buildlist"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/errors"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/filesystem"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/types"
)

func makefileFS(t *testing.T, content string) (types.FS, afero.Fs) {
	t.Helper()
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/epics/Makefile", []byte(content), 0644))
	return filesystem.NewAfero(mem), mem
}

func readMakefile(t *testing.T, mem afero.Fs) string {
	t.Helper()
	data, err := afero.ReadFile(mem, "/epics/Makefile")
	require.NoError(t, err)
	return string(data)
}

func TestAddEntryAppendsAfterLastLine(t *testing.T) {
	fs, mem := makefileFS(t, "# support modules\nSUPPDIRS += alpha\nSUPPDIRS += bravo\n\ninclude rules.mak\n")

	require.NoError(t, buildlist.AddEntry(fs, "/epics/Makefile", "SUPPDIRS", "chopper"))

	want := "# support modules\nSUPPDIRS += alpha\nSUPPDIRS += bravo\nSUPPDIRS += chopper\n\ninclude rules.mak\n"
	assert.Equal(t, want, readMakefile(t, mem))
}

func TestAddEntryIdempotent(t *testing.T) {
	fs, mem := makefileFS(t, "IOCDIRS += alpha\n")

	require.NoError(t, buildlist.AddEntry(fs, "/epics/Makefile", "IOCDIRS", "beta"))
	after := readMakefile(t, mem)
	assert.Equal(t, "IOCDIRS += alpha\nIOCDIRS += beta\n", after)

	// Second call with the same entry must leave the file byte-identical
	require.NoError(t, buildlist.AddEntry(fs, "/epics/Makefile", "IOCDIRS", "beta"))
	assert.Equal(t, after, readMakefile(t, mem))
}

func TestAddEntryNoDuplicateFromInlineList(t *testing.T) {
	fs, mem := makefileFS(t, "IOCDIRS = alpha beta gamma\n")

	require.NoError(t, buildlist.AddEntry(fs, "/epics/Makefile", "IOCDIRS", "beta"))
	assert.Equal(t, "IOCDIRS = alpha beta gamma\n", readMakefile(t, mem))
}

func TestAddEntryPreservesSurroundingBytes(t *testing.T) {
	content := "# header comment\r\n\r\nSUPPDIRS += alpha\r\n\r\n# trailer\r\nOTHERVAR += x\r\n"
	fs, mem := makefileFS(t, content)

	require.NoError(t, buildlist.AddEntry(fs, "/epics/Makefile", "SUPPDIRS", "beta"))

	want := "# header comment\r\n\r\nSUPPDIRS += alpha\r\nSUPPDIRS += beta\r\n\r\n# trailer\r\nOTHERVAR += x\r\n"
	assert.Equal(t, want, readMakefile(t, mem))
}

func TestAddEntryKeepsIndentation(t *testing.T) {
	fs, mem := makefileFS(t, "ifeq ($(OS),Windows)\n  IOCDIRS += alpha\nendif\n")

	require.NoError(t, buildlist.AddEntry(fs, "/epics/Makefile", "IOCDIRS", "beta"))
	assert.Equal(t, "ifeq ($(OS),Windows)\n  IOCDIRS += alpha\n  IOCDIRS += beta\nendif\n", readMakefile(t, mem))
}

func TestAddEntryNoTrailingNewline(t *testing.T) {
	fs, mem := makefileFS(t, "SUPPDIRS += alpha")

	require.NoError(t, buildlist.AddEntry(fs, "/epics/Makefile", "SUPPDIRS", "beta"))
	assert.Equal(t, "SUPPDIRS += alpha\nSUPPDIRS += beta", readMakefile(t, mem))
}

func TestAddEntryVariableNotFound(t *testing.T) {
	fs, _ := makefileFS(t, "OTHER += alpha\n# SUPPDIRS mentioned in a comment only\n")

	err := buildlist.AddEntry(fs, "/epics/Makefile", "SUPPDIRS", "beta")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBuildVariableNotFound))
}

func TestAddEntryMissingFile(t *testing.T) {
	fs := filesystem.NewAfero(afero.NewMemMapFs())

	err := buildlist.AddEntry(fs, "/nowhere/Makefile", "SUPPDIRS", "beta")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
}

func TestAddEntryDoesNotMatchPrefixedVariables(t *testing.T) {
	fs, mem := makefileFS(t, "XSUPPDIRS += other\nSUPPDIRS += alpha\n")

	require.NoError(t, buildlist.AddEntry(fs, "/epics/Makefile", "SUPPDIRS", "beta"))
	assert.Equal(t, "XSUPPDIRS += other\nSUPPDIRS += alpha\nSUPPDIRS += beta\n", readMakefile(t, mem))
}
