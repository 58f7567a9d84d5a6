package export

import (
	"encoding/json"

	"github.com/deploykit/blueprint/internal/schema"
)

type JSONExporter struct{}

func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

func (e *JSONExporter) Name() string {
	return "json"
}

func (e *JSONExporter) Export(project *schema.Project) ([]byte, error) {
	return json.MarshalIndent(project, "", "  ")
}
