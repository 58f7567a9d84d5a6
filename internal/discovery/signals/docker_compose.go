package signals

import (
	"context"
	"strconv"
	"strings"

	"github.com/compose-spec/compose-go/v2/cli"
	composetypes "github.com/compose-spec/compose-go/v2/types"

	"github.com/deploykit/blueprint/internal/filesystems"
	"github.com/deploykit/blueprint/internal/schema"
)

var composeNames = []string{
	"docker-compose.yml", "docker-compose.yaml",
	"compose.yml", "compose.yaml",
}

// ComposeSignal imports docker-compose projects as a lower-confidence
// manifest source, so teams migrating to blueprints see the same service
// list from either file.
type ComposeSignal struct {
	filesystem  filesystems.FileSystem
	configPaths []string
	configDirs  map[string]string
}

func NewComposeSignal(filesystem filesystems.FileSystem) *ComposeSignal {
	return &ComposeSignal{
		filesystem: filesystem,
		configDirs: make(map[string]string),
	}
}

// Confidence is lower than the blueprint signals: compose files describe
// local development at least as often as deployment.
func (c *ComposeSignal) Confidence() int {
	return 70
}

func (c *ComposeSignal) Reset() {
	c.configPaths = nil
	c.configDirs = make(map[string]string)
}

func (c *ComposeSignal) ObserveEntry(ctx context.Context, rootPath string, entry filesystems.DirEntry) error {
	if entry.IsDir() {
		return nil
	}

	name := strings.ToLower(entry.Name())
	for _, candidate := range composeNames {
		if name == candidate {
			configPath := c.filesystem.Join(rootPath, entry.Name())
			c.configPaths = append(c.configPaths, configPath)
			c.configDirs[configPath] = rootPath
			return nil
		}
	}
	return nil
}

func (c *ComposeSignal) GenerateServices(ctx context.Context) ([]schema.Service, error) {
	var all []schema.Service

	for _, configPath := range c.configPaths {
		options, err := cli.NewProjectOptions(
			[]string{configPath},
			cli.WithOsEnv,
			cli.WithName(c.filesystem.Base(c.configDirs[configPath])),
		)
		if err != nil {
			continue
		}

		project, err := options.LoadProject(ctx)
		if err != nil {
			continue // skip broken configs
		}

		for _, composeService := range project.Services {
			all = append(all, c.convertService(composeService, configPath))
		}
	}

	return all, nil
}

func (c *ComposeSignal) convertService(cs composetypes.ServiceConfig, configPath string) schema.Service {
	svc := schema.NewService(cs.Name)
	svc.Runtime = schema.RuntimeContinuous
	svc.Network = schema.NetworkPrivate
	svc.AutoDeploy = true
	svc.BuildPath = c.configDirs[configPath]
	svc.Configs = []schema.ConfigRef{{Type: "docker-compose", Path: configPath}}

	// Published ports mean something reaches the service from outside.
	for _, port := range cs.Ports {
		if port.Published != "" {
			if _, err := strconv.Atoi(strings.Split(port.Published, ":")[0]); err == nil {
				svc.Network = schema.NetworkPublic
				break
			}
		}
	}

	if cs.Image != "" {
		svc.Image = cs.Image
		svc.Build = schema.BuildFromImage
	} else if cs.Build != nil && cs.Build.Context != "" {
		svc.BuildPath = c.filesystem.Join(c.configDirs[configPath], cs.Build.Context)
	}

	for key, value := range cs.Environment {
		if value == nil {
			continue
		}
		svc.Environment[key] = schema.EnvVar{
			Value:     *value,
			Sensitive: looksSensitive(key, *value),
		}
	}

	return svc
}

func looksSensitive(key, value string) bool {
	lower := strings.ToLower(key)
	for _, pattern := range []string{"password", "secret", "key", "token", "auth"} {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	// Connection URLs with inline credentials.
	return strings.Contains(value, "://") && strings.Contains(value, "@")
}
