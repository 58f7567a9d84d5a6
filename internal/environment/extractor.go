package environment

import (
	"context"
)

// ContentExtractor pulls env vars out of one file format.
type ContentExtractor interface {
	// CanHandle reports whether this extractor understands filename.
	CanHandle(filename string) bool

	// Extract returns the env vars declared in content.
	Extract(ctx context.Context, filename string, content []byte) ([]EnvResult, error)

	// Confidence ranks this extractor's results against other sources.
	Confidence() int
}

// Extractor fans file content out to every registered format extractor.
type Extractor struct {
	extractors []ContentExtractor
}

func NewExtractor() *Extractor {
	return &Extractor{
		extractors: []ContentExtractor{
			NewBlueprintExtractor(),
			NewDotEnvExtractor(),
			NewDockerfileExtractor(),
		},
	}
}

// Extract streams env vars from every extractor that handles the file.
func (e *Extractor) Extract(ctx context.Context, filename string, content []byte) <-chan EnvResult {
	results := make(chan EnvResult, 32)

	go func() {
		defer close(results)

		for _, extractor := range e.extractors {
			if !extractor.CanHandle(filename) {
				continue
			}

			found, err := extractor.Extract(ctx, filename, content)
			if err != nil {
				continue
			}
			for _, result := range found {
				select {
				case results <- result:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return results
}

// Merge deduplicates results by variable name, keeping the highest
// confidence source for each.
func Merge(results ...EnvResult) map[string]EnvResult {
	merged := make(map[string]EnvResult)
	for _, result := range results {
		existing, ok := merged[result.VarName]
		if !ok || result.Confidence > existing.Confidence {
			merged[result.VarName] = result
		}
	}
	return merged
}
