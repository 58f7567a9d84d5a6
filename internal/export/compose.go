package export

import (
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/deploykit/blueprint/internal/schema"
)

// ComposeExporter writes a docker-compose rendition of the project for
// local development. Static services are skipped: the platform serves their
// assets directly and there is no process to run.
type ComposeExporter struct{}

func NewComposeExporter() *ComposeExporter {
	return &ComposeExporter{}
}

func (e *ComposeExporter) Name() string {
	return "compose"
}

func (e *ComposeExporter) Export(project *schema.Project) ([]byte, error) {
	services := make(map[string]any)

	for _, svc := range project.Services {
		if svc.Runtime == schema.RuntimeStatic {
			continue
		}

		entry := make(map[string]any)

		if svc.Image != "" {
			entry["image"] = svc.Image
		} else {
			context := svc.BuildPath
			if context == "" {
				context = "."
			}
			entry["build"] = map[string]any{"context": context}
		}

		if svc.StartCommand != "" {
			entry["command"] = svc.StartCommand
		}

		if len(svc.Environment) > 0 {
			keys := make([]string, 0, len(svc.Environment))
			for key := range svc.Environment {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			env := make(map[string]string, len(keys))
			for _, key := range keys {
				env[key] = svc.Environment[key].Value
			}
			entry["environment"] = env
		}

		if svc.Runtime == schema.RuntimeScheduled && svc.Schedule != "" {
			entry["labels"] = map[string]string{"blueprint.schedule": svc.Schedule}
		}

		services[svc.Name] = entry
	}

	doc := map[string]any{
		"name":     project.Name,
		"services": services,
	}

	return yaml.Marshal(doc)
}
