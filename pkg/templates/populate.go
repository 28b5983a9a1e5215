package templates

import (
	"bytes"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/errors"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/logging"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/placeholders"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/types"
)

// rendered is one template entry after substitution, ready to write.
type rendered struct {
	relPath string
	isDir   bool
	data    []byte
	mode    fs.FileMode
}

// Populate stamps the template into targetRoot, substituting placeholders
// in file and directory names and in text file contents. Binary assets are
// copied verbatim. Rendering is done in full before any write, so a
// substitution failure leaves the target untouched. Existing destination
// files are overwritten, which keeps individual steps re-runnable.
func Populate(t *Template, targetRoot string, m placeholders.Map, fsys types.FS) error {
	logger := logging.GetLogger("templates").With().
		Str("template", t.Tag).
		Str("target", targetRoot).
		Logger()
	defer logging.LogOperationStart(logger, "populate")()

	for _, key := range t.Manifest.Requires {
		if _, ok := m[key]; !ok {
			return errors.Newf(errors.ErrUnresolvedPlaceholder,
				"template %q requires placeholder %q which has no value", t.Tag, key).
				WithDetail("key", key)
		}
	}

	// Phase 1: render everything in memory.
	var out []rendered
	err := fs.WalkDir(t.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot walk template %q", t.Tag)
		}
		if p == "." || p == ManifestFile {
			return nil
		}

		dest, err := substitutePath(p, m)
		if err != nil {
			return err
		}

		if d.IsDir() {
			out = append(out, rendered{relPath: dest, isDir: true})
			return nil
		}

		data, err := fs.ReadFile(t.fsys, p)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot read template file %s", p)
		}

		mode := fs.FileMode(0644)
		if isText(data) {
			text, err := placeholders.Substitute(string(data), m)
			if err != nil {
				return err
			}
			data = []byte(text)
		} else {
			logger.Debug().Str("file", p).Msg("binary asset copied verbatim")
		}

		out = append(out, rendered{relPath: dest, data: data, mode: mode})
		return nil
	})
	if err != nil {
		return err
	}

	// Phase 2: write the rendered tree.
	for _, r := range out {
		abs := filepath.Join(targetRoot, filepath.FromSlash(r.relPath))
		if r.isDir {
			if err := fsys.MkdirAll(abs, 0755); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "cannot create directory %s", abs)
			}
			continue
		}
		if err := fsys.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "cannot create directory %s", filepath.Dir(abs))
		}
		if err := fsys.WriteFile(abs, r.data, r.mode); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", abs)
		}
		logger.Debug().Str("file", abs).Int("bytes", len(r.data)).Msg("wrote file")
	}

	logger.Info().Int("entries", len(out)).Msg("template populated")
	return nil
}

// substitutePath substitutes placeholders in every element of a
// slash-separated template path.
func substitutePath(p string, m placeholders.Map) (string, error) {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		sub, err := placeholders.Substitute(part, m)
		if err != nil {
			return "", err
		}
		parts[i] = sub
	}
	return path.Join(parts...), nil
}

// isText reports whether data is substitutable text. NUL bytes or invalid
// UTF-8 mark an asset as binary.
func isText(data []byte) bool {
	return !bytes.ContainsRune(data, 0) && utf8.Valid(data)
}
