package filesystems

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFSReadFile(t *testing.T) {
	mfs := NewMemoryFS()
	mfs.AddFile("app/config.yaml", []byte("services: []"))

	content, err := mfs.ReadFile("app/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "services: []", string(content))

	_, err = mfs.ReadFile("app/missing.yaml")
	assert.Error(t, err)
}

func TestMemoryFSReadDir(t *testing.T) {
	mfs := NewMemoryFS()
	mfs.AddFile("app/a.txt", nil)
	mfs.AddFile("app/sub/b.txt", nil)
	mfs.AddDir("app/empty")

	var names []string
	var dirs []string
	for entry, err := range mfs.ReadDir("app") {
		require.NoError(t, err)
		names = append(names, entry.Name())
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}

	assert.Equal(t, []string{"a.txt", "empty", "sub"}, names)
	sort.Strings(dirs)
	assert.Equal(t, []string{"empty", "sub"}, dirs)
}

func TestMemoryFSReadDirMissing(t *testing.T) {
	mfs := NewMemoryFS()

	var gotErr error
	for _, err := range mfs.ReadDir("nope") {
		gotErr = err
	}
	assert.Error(t, gotErr)
}

func TestMemoryFSWalk(t *testing.T) {
	mfs := NewMemoryFS()
	mfs.AddFile("repo/a.txt", []byte("a"))
	mfs.AddFile("repo/sub/b.txt", []byte("b"))

	var visited []string
	err := mfs.Walk("repo", func(path string, info FileInfo, err error) error {
		require.NoError(t, err)
		visited = append(visited, path)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"repo", "repo/a.txt", "repo/sub", "repo/sub/b.txt"}, visited)
}

func TestMemoryFSWalkSkipDir(t *testing.T) {
	mfs := NewMemoryFS()
	mfs.AddFile("repo/a.txt", nil)
	mfs.AddFile("repo/skip/b.txt", nil)

	var visited []string
	err := mfs.Walk("repo", func(path string, info FileInfo, err error) error {
		if info.IsDir() && info.Name() == "skip" {
			return SkipDir
		}
		visited = append(visited, path)
		return nil
	})
	require.NoError(t, err)
	assert.NotContains(t, visited, "repo/skip/b.txt")
	assert.Contains(t, visited, "repo/a.txt")
}

func TestMemoryFSRel(t *testing.T) {
	mfs := NewMemoryFS()

	rel, err := mfs.Rel("repo", "repo/sub/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "sub/file.txt", rel)

	rel, err = mfs.Rel("repo", "repo")
	require.NoError(t, err)
	assert.Equal(t, ".", rel)
}

func TestNewFileSystemRejectsFiles(t *testing.T) {
	dir := t.TempDir()

	_, base, err := NewFileSystem(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, base)

	_, _, err = NewFileSystem(dir + "/does-not-exist")
	assert.Error(t, err)
}
