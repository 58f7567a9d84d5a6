package export

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/deploykit/blueprint/internal/schema"
)

func sampleProject() *schema.Project {
	return &schema.Project{
		Name: "iems",
		Services: []schema.Service{
			{
				Name:         "backend",
				Network:      schema.NetworkPublic,
				Runtime:      schema.RuntimeContinuous,
				Build:        schema.BuildFromSource,
				BuildPath:    "backend",
				StartCommand: "gunicorn app:app",
				Environment: map[string]schema.EnvVar{
					"FLASK_ENV":  {Value: "production"},
					"SECRET_KEY": {Generated: true, Sensitive: true},
				},
			},
			{
				Name:        "frontend",
				Network:     schema.NetworkPublic,
				Runtime:     schema.RuntimeStatic,
				Build:       schema.BuildFromSource,
				PublishPath: "./build",
			},
			{
				Name:     "iems-db",
				Network:  schema.NetworkPrivate,
				Runtime:  schema.RuntimeContinuous,
				Build:    schema.BuildFromImage,
				Image:    "postgres",
				Schedule: "",
			},
		},
	}
}

func TestForFormat(t *testing.T) {
	for _, name := range []string{"json", "dotenv", "compose"} {
		exporter, err := ForFormat(name)
		require.NoError(t, err)
		assert.Equal(t, name, exporter.Name())
	}

	_, err := ForFormat("terraform")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestJSONExporter(t *testing.T) {
	out, err := NewJSONExporter().Export(sampleProject())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "iems", decoded["name"])

	services, ok := decoded["services"].([]any)
	require.True(t, ok)
	assert.Len(t, services, 3)
}

func TestDotEnvExporter(t *testing.T) {
	out, err := NewDotEnvExporter().Export(sampleProject())
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "# backend")
	assert.Contains(t, text, `FLASK_ENV="production"`)
	assert.Contains(t, text, "<generated:SECRET_KEY>")

	// Services without env vars produce no section.
	assert.NotContains(t, text, "# frontend")
	assert.NotContains(t, text, "# iems-db")
}

func TestComposeExporter(t *testing.T) {
	out, err := NewComposeExporter().Export(sampleProject())
	require.NoError(t, err)

	var doc struct {
		Name     string `yaml:"name"`
		Services map[string]struct {
			Image   string            `yaml:"image"`
			Command string            `yaml:"command"`
			Build   map[string]string `yaml:"build"`
			Env     map[string]string `yaml:"environment"`
		} `yaml:"services"`
	}
	require.NoError(t, yaml.Unmarshal(out, &doc))

	assert.Equal(t, "iems", doc.Name)

	backend, ok := doc.Services["backend"]
	require.True(t, ok)
	assert.Equal(t, "gunicorn app:app", backend.Command)
	assert.Equal(t, "backend", backend.Build["context"])
	assert.Equal(t, "production", backend.Env["FLASK_ENV"])

	db, ok := doc.Services["iems-db"]
	require.True(t, ok)
	assert.Equal(t, "postgres", db.Image)

	// Static services have no process to run.
	_, ok = doc.Services["frontend"]
	assert.False(t, ok)
}

func TestComposeExporterScheduleLabel(t *testing.T) {
	project := &schema.Project{
		Name: "iems",
		Services: []schema.Service{{
			Name:         "nightly",
			Runtime:      schema.RuntimeScheduled,
			StartCommand: "./job",
			Schedule:     "0 3 * * *",
		}},
	}

	out, err := NewComposeExporter().Export(project)
	require.NoError(t, err)

	var doc struct {
		Services map[string]struct {
			Labels map[string]string `yaml:"labels"`
		} `yaml:"services"`
	}
	require.NoError(t, yaml.Unmarshal(out, &doc))
	assert.Equal(t, "0 3 * * *", doc.Services["nightly"].Labels["blueprint.schedule"])
}
