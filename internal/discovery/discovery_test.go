package discovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploykit/blueprint/internal/filesystems"
	"github.com/deploykit/blueprint/internal/schema"
)

const fixtureYAML = `services:
  - type: web
    name: backend
    env: python
    startCommand: gunicorn app:app
    repo: https://github.com/example/backend
  - type: background
    name: keepalive
    env: python
    startCommand: python ping.py
`

const fixtureTOML = `
[[services]]
type = "web"
name = "backend"
env = "python"
startCommand = "uvicorn app:app"
`

func TestDiscoverBlueprint(t *testing.T) {
	mfs := filesystems.NewMemoryFS()
	mfs.AddFile("repo/blueprint.yaml", []byte(fixtureYAML))

	services, err := New(mfs).Discover(context.Background(), "repo")
	require.NoError(t, err)
	require.Len(t, services, 2)

	assert.Equal(t, "backend", services[0].Name)
	assert.Equal(t, schema.NetworkPublic, services[0].Network)
	assert.Equal(t, "repo", services[0].BuildPath)
	require.Len(t, services[0].Configs, 1)
	assert.Equal(t, "blueprint", services[0].Configs[0].Type)

	assert.Equal(t, "keepalive", services[1].Name)
	assert.Equal(t, schema.NetworkPrivate, services[1].Network)
}

func TestDiscoverNestedManifests(t *testing.T) {
	mfs := filesystems.NewMemoryFS()
	mfs.AddFile("repo/api/render.yaml", []byte(fixtureYAML))
	mfs.AddFile("repo/README.md", []byte("docs"))

	services, err := New(mfs).Discover(context.Background(), "repo")
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, "repo/api", services[0].BuildPath)
}

func TestDiscoverIgnoresDependencyDirs(t *testing.T) {
	mfs := filesystems.NewMemoryFS()
	mfs.AddFile("repo/node_modules/pkg/blueprint.yaml", []byte(fixtureYAML))
	mfs.AddFile("repo/.git/blueprint.yaml", []byte(fixtureYAML))

	services, err := New(mfs).Discover(context.Background(), "repo")
	require.NoError(t, err)
	assert.Empty(t, services)
}

func TestDiscoverRespectsDepthLimit(t *testing.T) {
	mfs := filesystems.NewMemoryFS()
	mfs.AddFile("repo/a/b/c/d/e/blueprint.yaml", []byte(fixtureYAML))

	services, err := New(mfs).Discover(context.Background(), "repo")
	require.NoError(t, err)
	assert.Empty(t, services)
}

func TestTriangulationPrefersHigherConfidence(t *testing.T) {
	mfs := filesystems.NewMemoryFS()
	mfs.AddFile("repo/blueprint.yaml", []byte(fixtureYAML))
	mfs.AddFile("repo/blueprint.toml", []byte(fixtureTOML))

	services, err := New(mfs).Discover(context.Background(), "repo")
	require.NoError(t, err)

	backend, found := findService(services, "backend")
	require.True(t, found)

	// The YAML signal has higher confidence; its start command wins, but
	// both config files are recorded.
	assert.Equal(t, "gunicorn app:app", backend.StartCommand)
	require.Len(t, backend.Configs, 2)

	types := []string{backend.Configs[0].Type, backend.Configs[1].Type}
	assert.Contains(t, types, "blueprint")
	assert.Contains(t, types, "blueprint-toml")
}

func TestDiscoverSkipsBrokenManifest(t *testing.T) {
	mfs := filesystems.NewMemoryFS()
	mfs.AddFile("repo/blueprint.yaml", []byte(":::not yaml"))
	mfs.AddFile("repo/api/blueprint.toml", []byte(fixtureTOML))

	services, err := New(mfs).Discover(context.Background(), "repo")
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "backend", services[0].Name)
}

func TestDiscoverSurfacesErrorWhenNothingUsable(t *testing.T) {
	mfs := filesystems.NewMemoryFS()
	mfs.AddFile("repo/blueprint.yaml", []byte(":::not yaml"))

	_, err := New(mfs).Discover(context.Background(), "repo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable manifests")
}

func TestIgnoreDir(t *testing.T) {
	assert.True(t, ignoreDir("node_modules"))
	assert.True(t, ignoreDir("Dist"))
	assert.True(t, ignoreDir(".git"))
	assert.True(t, ignoreDir("_build"))
	assert.False(t, ignoreDir("api"))
	assert.False(t, ignoreDir("services"))
}

func findService(services []schema.Service, name string) (schema.Service, bool) {
	for _, svc := range services {
		if svc.Name == name {
			return svc, true
		}
	}
	return schema.Service{}, false
}
