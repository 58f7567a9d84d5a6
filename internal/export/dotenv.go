package export

import (
	"bytes"
	"fmt"

	"github.com/joho/godotenv"

	"github.com/deploykit/blueprint/internal/schema"
)

// DotEnvExporter writes every service's environment as dotenv sections,
// one commented block per service. Generated values export as placeholders
// since the platform materializes them at deploy time.
type DotEnvExporter struct{}

func NewDotEnvExporter() *DotEnvExporter {
	return &DotEnvExporter{}
}

func (e *DotEnvExporter) Name() string {
	return "dotenv"
}

func (e *DotEnvExporter) Export(project *schema.Project) ([]byte, error) {
	var buf bytes.Buffer

	for _, svc := range project.Services {
		if len(svc.Environment) == 0 {
			continue
		}

		env := make(map[string]string, len(svc.Environment))
		for key, v := range svc.Environment {
			if v.Generated && v.Value == "" {
				env[key] = fmt.Sprintf("<generated:%s>", key)
				continue
			}
			env[key] = v.Value
		}

		block, err := godotenv.Marshal(env)
		if err != nil {
			return nil, fmt.Errorf("marshal env for %s: %w", svc.Name, err)
		}

		fmt.Fprintf(&buf, "# %s\n%s\n\n", svc.Name, block)
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
