package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Manifest filenames recognized by Detect.
var manifestNames = []string{"blueprint.yaml", "blueprint.yml", "render.yaml", "render.yml", "blueprint.toml"}

var (
	// ErrUnknownFormat indicates a file extension without a registered codec.
	ErrUnknownFormat = errors.New("unknown manifest format")

	// ErrEmptyManifest indicates a manifest with no services section.
	ErrEmptyManifest = errors.New("manifest declares no services")
)

// Detect reports whether filename is a blueprint manifest.
func Detect(filename string) bool {
	base := strings.ToLower(filepath.Base(filename))
	for _, name := range manifestNames {
		if base == name {
			return true
		}
	}
	return false
}

// Parse decodes manifest data using the codec implied by the file extension.
func Parse(path string, data []byte) (*Blueprint, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".toml":
		return ParseTOML(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// ParseYAML decodes a YAML manifest. Unknown fields are rejected so typos in
// field names surface as parse errors instead of silently dropped config.
func ParseYAML(data []byte) (*Blueprint, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var bp Blueprint
	if err := dec.Decode(&bp); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyManifest
		}
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	if len(bp.Services) == 0 {
		return nil, ErrEmptyManifest
	}

	return &bp, nil
}

// ParseTOML decodes a TOML manifest.
func ParseTOML(data []byte) (*Blueprint, error) {
	var bp Blueprint
	if err := toml.Unmarshal(data, &bp); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	if len(bp.Services) == 0 {
		return nil, ErrEmptyManifest
	}

	return &bp, nil
}
