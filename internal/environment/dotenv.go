package environment

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// DotEnvExtractor reads .env-family files.
type DotEnvExtractor struct{}

func NewDotEnvExtractor() *DotEnvExtractor {
	return &DotEnvExtractor{}
}

func (d *DotEnvExtractor) CanHandle(filename string) bool {
	base := strings.ToLower(filepath.Base(filename))
	return strings.HasPrefix(base, ".env")
}

func (d *DotEnvExtractor) Confidence() int {
	return 85
}

func (d *DotEnvExtractor) Extract(ctx context.Context, filename string, content []byte) ([]EnvResult, error) {
	env, err := godotenv.Unmarshal(string(content))
	if err != nil {
		return nil, err
	}

	confidence := d.fileConfidence(filepath.Base(filename))

	var results []EnvResult
	for key, value := range env {
		if ShouldIgnore(key) {
			continue
		}
		envType, sensitive := Classify(key, value)
		results = append(results, EnvResult{
			VarName:    key,
			Value:      value,
			Type:       envType,
			Sensitive:  sensitive,
			Source:     fmt.Sprintf("dotenv:%s", filename),
			Confidence: confidence,
		})
	}

	return results, nil
}

func (d *DotEnvExtractor) fileConfidence(base string) int {
	switch {
	case base == ".env":
		return 85
	case strings.Contains(base, "production"):
		return 90
	case strings.Contains(base, "example") || strings.Contains(base, "sample"):
		return 30 // templates, not real values
	default:
		return 75
	}
}
