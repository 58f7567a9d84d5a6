package filesystems

import (
	"fmt"
	"os"
	"strings"
)

// NewFileSystem resolves a source argument into a FileSystem and the base
// path to operate on. Plain paths and file:// URLs map to the local
// filesystem.
func NewFileSystem(source string) (FileSystem, string, error) {
	base := strings.TrimPrefix(source, "file://")
	if base == "" {
		base = "."
	}

	info, err := os.Stat(base)
	if err != nil {
		return nil, "", fmt.Errorf("source path: %w", err)
	}
	if !info.IsDir() {
		return nil, "", fmt.Errorf("source path is not a directory: %s", base)
	}

	return NewLocalFS(), base, nil
}
