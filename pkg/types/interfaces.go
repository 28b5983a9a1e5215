package types

import (
	"io/fs"
)

// FS is the filesystem interface required for generator operations.
// Production code uses the OS implementation; tests use an afero-backed
// in-memory implementation so no real tree is touched.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error
}
