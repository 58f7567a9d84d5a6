package filesystems

import (
	"fmt"
	"io/fs"
	"iter"
	"path"
	"sort"
	"strings"
	"time"
)

// MemoryFS is an in-memory FileSystem used by tests and fixtures.
type MemoryFS struct {
	files map[string][]byte
	dirs  map[string]bool
}

func NewMemoryFS() *MemoryFS {
	return &MemoryFS{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

// AddFile stores a file, creating parent directories implicitly.
func (mfs *MemoryFS) AddFile(name string, content []byte) {
	clean := path.Clean(name)
	mfs.files[clean] = content
	mfs.addParents(clean)
}

// AddDir records an (possibly empty) directory.
func (mfs *MemoryFS) AddDir(name string) {
	clean := path.Clean(name)
	mfs.dirs[clean] = true
	mfs.addParents(clean)
}

func (mfs *MemoryFS) addParents(name string) {
	for dir := path.Dir(name); dir != "." && dir != "/"; dir = path.Dir(dir) {
		mfs.dirs[dir] = true
	}
}

func (mfs *MemoryFS) ReadFile(name string) ([]byte, error) {
	content, ok := mfs.files[path.Clean(name)]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", name)
	}
	return content, nil
}

func (mfs *MemoryFS) ReadDir(name string) iter.Seq2[DirEntry, error] {
	return func(yield func(DirEntry, error) bool) {
		clean := path.Clean(name)
		if clean != "." && !mfs.dirs[clean] {
			yield(nil, fmt.Errorf("directory not found: %s", name))
			return
		}

		names := mfs.children(clean)
		for _, child := range names {
			full := child
			if clean != "." {
				full = path.Join(clean, child)
			}
			entry := &memoryDirEntry{
				name:     child,
				isDir:    mfs.dirs[full],
				fullPath: full,
				mfs:      mfs,
			}
			if !yield(entry, nil) {
				return
			}
		}
	}
}

// children returns the sorted direct children of dir.
func (mfs *MemoryFS) children(dir string) []string {
	seen := make(map[string]bool)

	collect := func(p string) {
		var remainder string
		if dir == "." {
			remainder = p
		} else if strings.HasPrefix(p, dir+"/") {
			remainder = strings.TrimPrefix(p, dir+"/")
		} else {
			return
		}
		if remainder == "" {
			return
		}
		seen[strings.SplitN(remainder, "/", 2)[0]] = true
	}

	for p := range mfs.files {
		collect(p)
	}
	for p := range mfs.dirs {
		collect(p)
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (mfs *MemoryFS) Walk(root string, fn WalkFunc) error {
	clean := path.Clean(root)

	var walk func(string) error
	walk = func(p string) error {
		info := mfs.infoFor(p)
		if info != nil {
			if err := fn(p, info, nil); err != nil {
				if err == SkipDir && info.IsDir() {
					return nil
				}
				return err
			}
		}

		if mfs.dirs[p] || p == "." {
			for _, child := range mfs.children(p) {
				childPath := child
				if p != "." {
					childPath = path.Join(p, child)
				}
				if err := walk(childPath); err != nil {
					return err
				}
			}
		}
		return nil
	}

	return walk(clean)
}

func (mfs *MemoryFS) infoFor(p string) FileInfo {
	if mfs.dirs[p] || p == "." {
		return &memoryFileInfo{name: path.Base(p), mode: fs.ModeDir | 0o755, isDir: true}
	}
	if content, ok := mfs.files[p]; ok {
		return &memoryFileInfo{name: path.Base(p), size: int64(len(content)), mode: 0o644}
	}
	return nil
}

func (mfs *MemoryFS) Join(elem ...string) string {
	return path.Join(elem...)
}

func (mfs *MemoryFS) Base(p string) string {
	return path.Base(p)
}

func (mfs *MemoryFS) Dir(p string) string {
	return path.Dir(p)
}

func (mfs *MemoryFS) Rel(basepath, targpath string) (string, error) {
	base := path.Clean(basepath)
	target := path.Clean(targpath)

	if base == target {
		return ".", nil
	}
	if base == "." {
		return target, nil
	}
	if strings.HasPrefix(target, base+"/") {
		return strings.TrimPrefix(target, base+"/"), nil
	}
	return target, nil
}

type memoryDirEntry struct {
	name     string
	isDir    bool
	fullPath string
	mfs      *MemoryFS
}

func (e *memoryDirEntry) Name() string { return e.name }
func (e *memoryDirEntry) IsDir() bool  { return e.isDir }

func (e *memoryDirEntry) Type() fs.FileMode {
	if e.isDir {
		return fs.ModeDir
	}
	return 0
}

func (e *memoryDirEntry) Info() (FileInfo, error) {
	info := e.mfs.infoFor(e.fullPath)
	if info == nil {
		return nil, fmt.Errorf("not found: %s", e.fullPath)
	}
	return info, nil
}

type memoryFileInfo struct {
	name  string
	size  int64
	mode  fs.FileMode
	isDir bool
}

func (fi *memoryFileInfo) Name() string       { return fi.name }
func (fi *memoryFileInfo) Size() int64        { return fi.size }
func (fi *memoryFileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi *memoryFileInfo) ModTime() time.Time { return time.Time{} }
func (fi *memoryFileInfo) IsDir() bool        { return fi.isDir }
func (fi *memoryFileInfo) Sys() interface{}   { return nil }
