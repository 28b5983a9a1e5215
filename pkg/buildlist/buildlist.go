package buildlist

import (
	"os"
	"regexp"
	"strings"

	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/errors"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/logging"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/types"
)

// AddEntry inserts entry into the named list variable of a Makefile-style
// build file. Already-present entries are a no-op with no rewrite. New
// entries are appended as a fresh `VAR += entry` line directly after the
// variable's last existing line, copying its indentation; everything
// outside the list construct is preserved byte for byte. These files carry
// human-authored comments and grouping, so the list is never re-sorted.
func AddEntry(fsys types.FS, path, variable, entry string) error {
	logger := logging.GetLogger("buildlist").With().
		Str("file", path).
		Str("variable", variable).
		Str("entry", entry).
		Logger()

	data, err := fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrFileNotFound, "build file %s does not exist", path)
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read build file %s", path)
	}

	lines := splitLines(string(data))
	linePattern := regexp.MustCompile(`^([ \t]*)` + regexp.QuoteMeta(variable) + `[ \t]*\+?=[ \t]*(.*)$`)

	lastIdx := -1
	indent := ""
	for i, raw := range lines {
		m := linePattern.FindStringSubmatch(trimEOL(raw))
		if m == nil {
			continue
		}
		lastIdx = i
		indent = m[1]
		for _, token := range strings.Fields(m[2]) {
			if token == entry {
				logger.Debug().Msg("entry already present, leaving file untouched")
				return nil
			}
		}
	}

	if lastIdx == -1 {
		return errors.Newf(errors.ErrBuildVariableNotFound,
			"build file %s has no list variable %s", path, variable).
			WithDetail("variable", variable)
	}

	eol := lines[lastIdx][len(trimEOL(lines[lastIdx])):]
	newLine := indent + variable + " += " + entry
	if eol == "" {
		// The last list line sits at EOF without a newline; give it one
		// in the file's own convention before appending.
		eol = dominantEOL(string(data))
		lines[lastIdx] += eol
	} else {
		newLine += eol
	}

	var b strings.Builder
	for i, raw := range lines {
		b.WriteString(raw)
		if i == lastIdx {
			b.WriteString(newLine)
		}
	}

	if err := fsys.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot rewrite build file %s", path)
	}

	logger.Info().Msg("added build list entry")
	return nil
}

// splitLines splits s into raw lines, each keeping its own line ending.
func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func trimEOL(raw string) string {
	return strings.TrimRight(raw, "\r\n")
}

func dominantEOL(s string) string {
	if strings.Contains(s, "\r\n") {
		return "\r\n"
	}
	return "\n"
}
