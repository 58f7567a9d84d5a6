package environment

import (
	"context"
	"fmt"

	"github.com/deploykit/blueprint/internal/manifest"
)

// BlueprintExtractor reads envVars sections from blueprint manifests. It is
// the highest-confidence source: the manifest states deployment intent
// explicitly.
type BlueprintExtractor struct{}

func NewBlueprintExtractor() *BlueprintExtractor {
	return &BlueprintExtractor{}
}

func (b *BlueprintExtractor) CanHandle(filename string) bool {
	return manifest.Detect(filename)
}

func (b *BlueprintExtractor) Confidence() int {
	return 95
}

func (b *BlueprintExtractor) Extract(ctx context.Context, filename string, content []byte) ([]EnvResult, error) {
	bp, err := manifest.Parse(filename, content)
	if err != nil {
		return nil, err
	}

	var results []EnvResult

	collect := func(owner string, defs []manifest.EnvVarDef) {
		for _, def := range defs {
			if def.Key == "" || def.IsReference() {
				continue
			}

			envType, sensitive := Classify(def.Key, def.Value)
			if def.GenerateValue {
				envType, sensitive = EnvTypeGenerated, true
			}

			results = append(results, EnvResult{
				VarName:    def.Key,
				Value:      def.Value,
				Type:       envType,
				Sensitive:  sensitive,
				Source:     fmt.Sprintf("blueprint:%s (%s)", filename, owner),
				Confidence: b.Confidence(),
			})
		}
	}

	for _, svc := range bp.Services {
		collect(svc.Name, svc.EnvVars)
	}
	for _, group := range bp.EnvVarGroups {
		collect("group/"+group.Name, group.EnvVars)
	}

	return results, nil
}
