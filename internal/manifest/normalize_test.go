package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploykit/blueprint/internal/schema"
)

func TestNormalizeClassifications(t *testing.T) {
	tests := []struct {
		name        string
		decl        ServiceDeclaration
		wantNetwork schema.Network
		wantRuntime schema.Runtime
		wantBuild   schema.Build
	}{
		{
			name:        "web service",
			decl:        ServiceDeclaration{Type: TypeWeb, Name: "api", StartCommand: "./run"},
			wantNetwork: schema.NetworkPublic,
			wantRuntime: schema.RuntimeContinuous,
			wantBuild:   schema.BuildFromSource,
		},
		{
			name:        "static site",
			decl:        ServiceDeclaration{Type: TypeStatic, Name: "site", StaticPublishPath: "./build"},
			wantNetwork: schema.NetworkPublic,
			wantRuntime: schema.RuntimeStatic,
			wantBuild:   schema.BuildFromSource,
		},
		{
			name:        "background worker",
			decl:        ServiceDeclaration{Type: TypeBackground, Name: "worker", StartCommand: "python ping.py"},
			wantNetwork: schema.NetworkPrivate,
			wantRuntime: schema.RuntimeContinuous,
			wantBuild:   schema.BuildFromSource,
		},
		{
			name:        "cron job",
			decl:        ServiceDeclaration{Type: TypeCron, Name: "nightly", StartCommand: "./job", Schedule: "0 3 * * *"},
			wantNetwork: schema.NetworkPrivate,
			wantRuntime: schema.RuntimeScheduled,
			wantBuild:   schema.BuildFromSource,
		},
		{
			name:        "private image service",
			decl:        ServiceDeclaration{Type: TypePrivate, Name: "queue", Image: &Image{URL: "docker.io/library/redis:7"}},
			wantNetwork: schema.NetworkPrivate,
			wantRuntime: schema.RuntimeContinuous,
			wantBuild:   schema.BuildFromImage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bp := &Blueprint{Services: []ServiceDeclaration{tt.decl}}
			project := Normalize(bp, "proj", "blueprint.yaml")

			require.Len(t, project.Services, 1)
			svc := project.Services[0]
			assert.Equal(t, tt.wantNetwork, svc.Network)
			assert.Equal(t, tt.wantRuntime, svc.Runtime)
			assert.Equal(t, tt.wantBuild, svc.Build)
		})
	}
}

func TestNormalizeCarriesDeclarationFields(t *testing.T) {
	bp := &Blueprint{Services: []ServiceDeclaration{{
		Type:            TypeWeb,
		Name:            "backend",
		Region:          "oregon",
		Plan:            "free",
		BuildCommand:    "pip install -r requirements.txt",
		StartCommand:    "gunicorn app:app",
		Branch:          "main",
		Repo:            "https://github.com/example/backend",
		HealthCheckPath: "/health",
		Domains:         []string{"iems.example.com"},
	}}}

	project := Normalize(bp, "iems", "render.yaml")
	require.Len(t, project.Services, 1)

	svc := project.Services[0]
	assert.Equal(t, "oregon", svc.Region)
	assert.Equal(t, "free", svc.Plan)
	assert.Equal(t, "gunicorn app:app", svc.StartCommand)
	assert.Equal(t, "/health", svc.HealthCheckPath)
	assert.True(t, svc.AutoDeploy)
	require.Len(t, svc.Configs, 1)
	assert.Equal(t, schema.ConfigRef{Type: "blueprint", Path: "render.yaml"}, svc.Configs[0])
}

func TestNormalizeFlattensEnvVars(t *testing.T) {
	sync := false
	bp := &Blueprint{
		Services: []ServiceDeclaration{{
			Type:         TypeWeb,
			Name:         "backend",
			StartCommand: "./run",
			EnvVars: []EnvVarDef{
				{Key: "FLASK_ENV", Value: "production"},
				{Key: "SECRET_KEY", GenerateValue: true},
				{Key: "MANUAL", Value: "x", Sync: &sync},
				{FromGroup: "shared"},
				{Key: "DATABASE_URL", FromDatabase: &EnvFromDB{Name: "iems-db"}},
			},
		}},
		Databases: []Database{{Name: "iems-db"}},
		EnvVarGroups: []EnvVarGroup{{
			Name: "shared",
			EnvVars: []EnvVarDef{
				{Key: "LOG_LEVEL", Value: "info"},
				{Key: "REGION", Value: "oregon"},
			},
		}},
	}

	project := Normalize(bp, "iems", "blueprint.yaml")
	svc, ok := project.Lookup("backend")
	require.True(t, ok)

	env := svc.Environment
	assert.Equal(t, "production", env["FLASK_ENV"].Value)

	assert.True(t, env["SECRET_KEY"].Generated)
	assert.True(t, env["SECRET_KEY"].Sensitive)

	// sync: false means the value is held by the platform, not the manifest.
	assert.True(t, env["MANUAL"].Sensitive)

	assert.Equal(t, "info", env["LOG_LEVEL"].Value)
	assert.Equal(t, "oregon", env["REGION"].Value)

	db := env["DATABASE_URL"]
	assert.True(t, db.Generated)
	assert.True(t, db.Sensitive)
	assert.Equal(t, "${iems-db.connectionString}", db.Value)
}

func TestNormalizeDatabasesBecomeServices(t *testing.T) {
	bp := &Blueprint{
		Services:  []ServiceDeclaration{{Type: TypeWeb, Name: "api", StartCommand: "./run"}},
		Databases: []Database{{Name: "iems-db", Plan: "free"}},
	}

	project := Normalize(bp, "iems", "blueprint.yaml")
	require.Len(t, project.Services, 2)

	db, ok := project.Lookup("iems-db")
	require.True(t, ok)
	assert.Equal(t, schema.NetworkPrivate, db.Network)
	assert.Equal(t, schema.BuildFromImage, db.Build)
	assert.Equal(t, "postgres", db.Image)
	assert.Equal(t, "free", db.Plan)
}
