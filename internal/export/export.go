// Package export renders a normalized project into consumable formats.
package export

import (
	"errors"
	"fmt"

	"github.com/deploykit/blueprint/internal/schema"
)

// ErrUnknownFormat indicates a format name with no registered exporter.
var ErrUnknownFormat = errors.New("unknown export format")

// Exporter renders a project into one output format.
type Exporter interface {
	Name() string
	Export(project *schema.Project) ([]byte, error)
}

// ForFormat returns the exporter registered under name.
func ForFormat(name string) (Exporter, error) {
	switch name {
	case "json":
		return NewJSONExporter(), nil
	case "dotenv":
		return NewDotEnvExporter(), nil
	case "compose":
		return NewComposeExporter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
}
