package signals

import (
	"context"
	"strings"

	"github.com/deploykit/blueprint/internal/filesystems"
	"github.com/deploykit/blueprint/internal/manifest"
	"github.com/deploykit/blueprint/internal/schema"
)

// BlueprintTOMLSignal finds blueprint.toml manifests.
type BlueprintTOMLSignal struct {
	filesystem  filesystems.FileSystem
	configPaths []string
	configDirs  map[string]string
}

func NewBlueprintTOMLSignal(filesystem filesystems.FileSystem) *BlueprintTOMLSignal {
	return &BlueprintTOMLSignal{
		filesystem: filesystem,
		configDirs: make(map[string]string),
	}
}

// Confidence sits just under the YAML signal: same format family, less
// common spelling.
func (b *BlueprintTOMLSignal) Confidence() int {
	return 90
}

func (b *BlueprintTOMLSignal) Reset() {
	b.configPaths = nil
	b.configDirs = make(map[string]string)
}

func (b *BlueprintTOMLSignal) ObserveEntry(ctx context.Context, rootPath string, entry filesystems.DirEntry) error {
	if entry.IsDir() || !strings.EqualFold(entry.Name(), "blueprint.toml") {
		return nil
	}

	configPath := b.filesystem.Join(rootPath, entry.Name())
	b.configPaths = append(b.configPaths, configPath)
	b.configDirs[configPath] = rootPath
	return nil
}

func (b *BlueprintTOMLSignal) GenerateServices(ctx context.Context) ([]schema.Service, error) {
	var all []schema.Service
	var lastErr error

	for _, configPath := range b.configPaths {
		data, err := b.filesystem.ReadFile(configPath)
		if err != nil {
			lastErr = err
			continue
		}

		bp, err := manifest.ParseTOML(data)
		if err != nil {
			lastErr = err
			continue
		}

		buildPath := b.configDirs[configPath]
		project := manifest.Normalize(bp, b.filesystem.Base(buildPath), configPath)
		for _, svc := range project.Services {
			svc.BuildPath = buildPath
			for i := range svc.Configs {
				svc.Configs[i].Type = "blueprint-toml"
			}
			all = append(all, svc)
		}
	}

	if len(all) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return all, nil
}
