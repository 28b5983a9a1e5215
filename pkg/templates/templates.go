package templates

import (
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/errors"
)

// ManifestFile is the metadata file at the root of every template tree.
// It is never populated into the target.
const ManifestFile = "manifest.yaml"

// Manifest describes a template: a human-readable name and the placeholder
// keys its files require. Requirements are checked before any file is
// rendered so a mismatch fails before touching the target tree.
type Manifest struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Requires    []string `yaml:"requires"`
}

// Template is an immutable parameterized directory tree identified by the
// tag of the pipeline step it belongs to.
type Template struct {
	Tag      string
	Manifest Manifest

	fsys fs.FS
}

// Get resolves a template tag to one of the embedded template trees.
func Get(tag string) (*Template, error) {
	sub, err := fs.Sub(assets, "assets/"+tag)
	if err != nil {
		return nil, errors.Newf(errors.ErrTemplateNotFound, "no template for tag %q", tag)
	}
	// fs.Sub succeeds for any syntactically valid path; probe the directory
	if _, err := fs.Stat(sub, "."); err != nil {
		return nil, errors.Newf(errors.ErrTemplateNotFound, "no template for tag %q", tag)
	}
	if entries, err := fs.ReadDir(sub, "."); err != nil || len(entries) == 0 {
		return nil, errors.Newf(errors.ErrTemplateNotFound, "no template for tag %q", tag)
	}
	return NewFromFS(tag, sub)
}

// NewFromFS builds a template from an arbitrary fs.FS rooted at the
// template directory. The manifest is optional for ad-hoc trees.
func NewFromFS(tag string, fsys fs.FS) (*Template, error) {
	t := &Template{Tag: tag, fsys: fsys}

	data, err := fs.ReadFile(fsys, ManifestFile)
	if err != nil {
		return t, nil
	}
	if err := yaml.Unmarshal(data, &t.Manifest); err != nil {
		return nil, errors.Wrapf(err, errors.ErrTemplateManifest,
			"template %q has a malformed manifest", tag)
	}
	return t, nil
}
