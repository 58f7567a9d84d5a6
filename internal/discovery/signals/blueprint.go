// Package signals contains the per-format manifest detectors used by
// discovery.
package signals

import (
	"context"
	"strings"

	"github.com/deploykit/blueprint/internal/filesystems"
	"github.com/deploykit/blueprint/internal/manifest"
	"github.com/deploykit/blueprint/internal/schema"
)

// BlueprintSignal finds YAML blueprint manifests (blueprint.yaml and the
// render.yaml spelling).
type BlueprintSignal struct {
	filesystem  filesystems.FileSystem
	configPaths []string
	configDirs  map[string]string // config path -> directory
}

func NewBlueprintSignal(filesystem filesystems.FileSystem) *BlueprintSignal {
	return &BlueprintSignal{
		filesystem: filesystem,
		configDirs: make(map[string]string),
	}
}

// Confidence is highest of all signals: a blueprint is an explicit
// production deployment spec.
func (b *BlueprintSignal) Confidence() int {
	return 95
}

func (b *BlueprintSignal) Reset() {
	b.configPaths = nil
	b.configDirs = make(map[string]string)
}

func (b *BlueprintSignal) ObserveEntry(ctx context.Context, rootPath string, entry filesystems.DirEntry) error {
	if entry.IsDir() {
		return nil
	}

	name := strings.ToLower(entry.Name())
	if !manifest.Detect(name) || strings.HasSuffix(name, ".toml") {
		return nil
	}

	configPath := b.filesystem.Join(rootPath, entry.Name())
	b.configPaths = append(b.configPaths, configPath)
	b.configDirs[configPath] = rootPath
	return nil
}

func (b *BlueprintSignal) GenerateServices(ctx context.Context) ([]schema.Service, error) {
	var all []schema.Service
	var lastErr error

	for _, configPath := range b.configPaths {
		data, err := b.filesystem.ReadFile(configPath)
		if err != nil {
			lastErr = err
			continue
		}

		bp, err := manifest.Parse(configPath, data)
		if err != nil {
			lastErr = err
			continue
		}

		buildPath := b.configDirs[configPath]
		project := manifest.Normalize(bp, b.filesystem.Base(buildPath), configPath)
		for _, svc := range project.Services {
			svc.BuildPath = buildPath
			all = append(all, svc)
		}
	}

	if len(all) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return all, nil
}
