package environment

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/moby/buildkit/frontend/dockerfile/parser"
)

// DockerfileExtractor reads ENV instructions from Dockerfiles.
type DockerfileExtractor struct{}

func NewDockerfileExtractor() *DockerfileExtractor {
	return &DockerfileExtractor{}
}

func (d *DockerfileExtractor) CanHandle(filename string) bool {
	return strings.Contains(strings.ToLower(filename), "dockerfile")
}

func (d *DockerfileExtractor) Confidence() int {
	return 60
}

func (d *DockerfileExtractor) Extract(ctx context.Context, filename string, content []byte) ([]EnvResult, error) {
	ast, err := parser.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	var results []EnvResult
	for _, child := range ast.AST.Children {
		if strings.ToUpper(child.Value) == "ENV" {
			results = append(results, d.parseEnvNode(child, filename)...)
		}
	}

	return results, nil
}

func (d *DockerfileExtractor) parseEnvNode(node *parser.Node, dockerfilePath string) []EnvResult {
	var results []EnvResult

	// The parser emits ENV arguments as alternating key/value nodes, for
	// both the key=value form and the legacy two-word form.
	for n := node.Next; n != nil && n.Next != nil; n = n.Next.Next {
		name, value := n.Value, n.Next.Value
		if ShouldIgnore(name) {
			continue
		}
		envType, sensitive := Classify(name, value)
		results = append(results, EnvResult{
			VarName:    name,
			Value:      value,
			Type:       envType,
			Sensitive:  sensitive,
			Source:     fmt.Sprintf("dockerfile:%s", dockerfilePath),
			Confidence: d.Confidence(),
		})
	}

	return results
}
