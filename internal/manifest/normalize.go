package manifest

import (
	"fmt"

	"github.com/deploykit/blueprint/internal/schema"
)

// Normalize converts a parsed blueprint into the platform-neutral project
// model. configPath is recorded on every service as its config reference;
// projectName names the resulting project.
func Normalize(bp *Blueprint, projectName, configPath string) *schema.Project {
	project := schema.NewProject(projectName)

	for _, decl := range bp.Services {
		project.AddService(normalizeService(bp, decl, configPath))
	}

	// Databases surface as private continuous services running a stock image.
	for _, db := range bp.Databases {
		svc := schema.NewService(db.Name)
		svc.Network = schema.NetworkPrivate
		svc.Runtime = schema.RuntimeContinuous
		svc.Build = schema.BuildFromImage
		svc.Image = "postgres"
		svc.Plan = db.Plan
		svc.Configs = []schema.ConfigRef{{Type: "blueprint", Path: configPath}}
		project.AddService(svc)
	}

	return project
}

func normalizeService(bp *Blueprint, decl ServiceDeclaration, configPath string) schema.Service {
	svc := schema.NewService(decl.Name)
	svc.Network = networkFor(decl)
	svc.Runtime = runtimeFor(decl)
	svc.Build = buildFor(decl)

	if decl.Image != nil {
		svc.Image = decl.Image.URL
	}

	svc.BuildCommand = decl.BuildCommand
	svc.StartCommand = decl.StartCommand
	svc.PublishPath = decl.StaticPublishPath
	svc.Schedule = decl.Schedule
	svc.Repo = decl.Repo
	svc.Branch = decl.Branch
	svc.Region = decl.Region
	svc.Plan = decl.Plan
	svc.AutoDeploy = decl.AutoDeployEnabled()
	svc.HealthCheckPath = decl.HealthCheckPath
	svc.Domains = decl.Domains
	svc.Environment = flattenEnvVars(bp, decl)
	svc.Configs = []schema.ConfigRef{{Type: "blueprint", Path: configPath}}

	return svc
}

// flattenEnvVars resolves group references and collapses the envVars list
// into a map. Later entries win over earlier ones, matching the platform's
// last-write semantics for duplicate keys.
func flattenEnvVars(bp *Blueprint, decl ServiceDeclaration) map[string]schema.EnvVar {
	env := make(map[string]schema.EnvVar)

	apply := func(def EnvVarDef) {
		switch {
		case def.FromGroup != "":
			group, ok := bp.Group(def.FromGroup)
			if !ok {
				return
			}
			for _, member := range group.EnvVars {
				if member.Key == "" {
					continue
				}
				env[member.Key] = toEnvVar(member)
			}
		case def.FromService != nil:
			key := def.FromService.EnvVarKey
			if key == "" {
				key = def.Key
			}
			if key == "" {
				return
			}
			env[key] = schema.EnvVar{
				Value:     fmt.Sprintf("${%s.%s}", def.FromService.Name, orDefault(def.FromService.Property, "host")),
				Generated: true,
			}
		case def.FromDatabase != nil:
			if def.Key == "" {
				return
			}
			env[def.Key] = schema.EnvVar{
				Value:     fmt.Sprintf("${%s.%s}", def.FromDatabase.Name, orDefault(def.FromDatabase.Property, "connectionString")),
				Generated: true,
				Sensitive: true,
			}
		case def.Key != "":
			env[def.Key] = toEnvVar(def)
		}
	}

	for _, def := range decl.EnvVars {
		apply(def)
	}

	return env
}

func toEnvVar(def EnvVarDef) schema.EnvVar {
	return schema.EnvVar{
		Value:     def.Value,
		Generated: def.GenerateValue,
		Sensitive: def.GenerateValue || (def.Sync != nil && !*def.Sync),
	}
}

func networkFor(decl ServiceDeclaration) schema.Network {
	switch decl.Type {
	case TypeWeb, TypeStatic:
		return schema.NetworkPublic
	case TypePrivate:
		return schema.NetworkPrivate
	default:
		// Workers and cron jobs reach out, nothing reaches in.
		return schema.NetworkPrivate
	}
}

func runtimeFor(decl ServiceDeclaration) schema.Runtime {
	switch {
	case decl.Type == TypeCron || decl.Schedule != "":
		return schema.RuntimeScheduled
	case decl.Type == TypeStatic:
		return schema.RuntimeStatic
	default:
		return schema.RuntimeContinuous
	}
}

func buildFor(decl ServiceDeclaration) schema.Build {
	if decl.Image != nil && decl.Image.URL != "" {
		return schema.BuildFromImage
	}
	return schema.BuildFromSource
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
