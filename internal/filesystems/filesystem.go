// Package filesystems abstracts file access so discovery and extraction can
// run against a checked-out tree or an in-memory fixture interchangeably.
package filesystems

import (
	"io/fs"
	"iter"
	"time"
)

// FileSystem is the file access surface the toolkit depends on.
type FileSystem interface {
	// ReadFile reads the named file and returns its contents.
	ReadFile(name string) ([]byte, error)

	// ReadDir returns an iterator over the named directory's entries.
	ReadDir(name string) iter.Seq2[DirEntry, error]

	// Walk walks the tree rooted at root, calling fn for every entry.
	Walk(root string, fn WalkFunc) error

	// Join joins path elements into a single path.
	Join(elem ...string) string

	// Base returns the last element of path.
	Base(path string) string

	// Dir returns all but the last element of path.
	Dir(path string) string

	// Rel returns a relative path from basepath to targpath.
	Rel(basepath, targpath string) (string, error)
}

// DirEntry describes one entry of a directory.
type DirEntry interface {
	Name() string
	IsDir() bool
	Type() fs.FileMode
	Info() (FileInfo, error)
}

// FileInfo describes a file.
type FileInfo interface {
	Name() string
	Size() int64
	Mode() fs.FileMode
	ModTime() time.Time
	IsDir() bool
	Sys() interface{}
}

// WalkFunc is the callback type used by Walk.
type WalkFunc func(path string, info FileInfo, err error) error

// SkipDir tells Walk to skip the remainder of the current directory.
var SkipDir = fs.SkipDir
