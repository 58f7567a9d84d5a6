// Package discovery locates service manifests in a source tree and merges
// what they declare into a single normalized service list.
package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/deploykit/blueprint/internal/discovery/signals"
	"github.com/deploykit/blueprint/internal/filesystems"
	"github.com/deploykit/blueprint/internal/schema"
)

// Signal is one source of service declarations. Signals observe every entry
// during the walk, then generate services from their accumulated state.
type Signal interface {
	// ObserveEntry is called for each file or directory entry encountered.
	ObserveEntry(ctx context.Context, rootPath string, entry filesystems.DirEntry) error

	// GenerateServices is called once the walk is complete.
	GenerateServices(ctx context.Context) ([]schema.Service, error)

	// Reset clears accumulated state before a new walk.
	Reset()

	// Confidence is used for conflict resolution between signals (0-100).
	Confidence() int
}

// Discovery walks a filesystem and runs all registered signals over it.
type Discovery struct {
	signals    []Signal
	filesystem filesystems.FileSystem
	maxDepth   int
}

// DefaultSignals returns the built-in signal set.
func DefaultSignals(filesystem filesystems.FileSystem) []Signal {
	return []Signal{
		signals.NewBlueprintSignal(filesystem),
		signals.NewBlueprintTOMLSignal(filesystem),
		signals.NewComposeSignal(filesystem),
	}
}

func New(filesystem filesystems.FileSystem, sigs ...Signal) *Discovery {
	if len(sigs) == 0 {
		sigs = DefaultSignals(filesystem)
	}
	return &Discovery{
		signals:    sigs,
		filesystem: filesystem,
		maxDepth:   4,
	}
}

// Discover walks rootPath and returns the triangulated service list.
func (d *Discovery) Discover(ctx context.Context, rootPath string) ([]schema.Service, error) {
	for _, sig := range d.signals {
		sig.Reset()
	}

	if err := d.walk(ctx, rootPath); err != nil {
		return nil, fmt.Errorf("filesystem walk failed: %w", err)
	}

	// Generate from each signal concurrently; results keep signal order so
	// triangulation is deterministic.
	results := make([][]schema.Service, len(d.signals))
	var mu sync.Mutex
	var firstErr error

	g, gctx := errgroup.WithContext(ctx)
	for i, sig := range d.signals {
		g.Go(func() error {
			services, err := sig.GenerateServices(gctx)
			if err != nil {
				// A broken manifest in one format must not hide the others.
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return nil
			}
			results[i] = services
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var ranked []rankedServices
	for i, services := range results {
		if len(services) > 0 {
			ranked = append(ranked, rankedServices{
				services:   services,
				confidence: d.signals[i].Confidence(),
			})
		}
	}

	if len(ranked) == 0 && firstErr != nil {
		return nil, fmt.Errorf("no usable manifests: %w", firstErr)
	}

	return triangulate(ranked), nil
}

type rankedServices struct {
	services   []schema.Service
	confidence int
}

type rankedService struct {
	service    schema.Service
	confidence int
}

// triangulate merges same-named services found by multiple signals. The
// highest-confidence declaration wins; config references accumulate from all.
func triangulate(results []rankedServices) []schema.Service {
	byName := make(map[string][]rankedService)
	var order []string

	for _, result := range results {
		for _, svc := range result.services {
			if _, seen := byName[svc.Name]; !seen {
				order = append(order, svc.Name)
			}
			byName[svc.Name] = append(byName[svc.Name], rankedService{
				service:    svc,
				confidence: result.confidence,
			})
		}
	}

	merged := make([]schema.Service, 0, len(order))
	for _, name := range order {
		candidates := byName[name]

		best := candidates[0]
		var configs []schema.ConfigRef
		configSeen := make(map[string]bool)

		for _, candidate := range candidates {
			if candidate.confidence > best.confidence {
				best = candidate
			}
			for _, ref := range candidate.service.Configs {
				key := ref.Type + ":" + ref.Path
				if !configSeen[key] {
					configs = append(configs, ref)
					configSeen[key] = true
				}
			}
		}

		svc := best.service
		svc.Configs = configs
		merged = append(merged, svc)
	}

	return merged
}

// Directories that never contain manifests worth scanning.
var excludeDirs = []string{
	"node_modules", "vendor", "bower_components",
	"venv", "env",
	"target", "deps", "_build",
	"dist", "build", "out", ".next", ".nuxt", ".output",
	"bin", "obj",
	"tmp", "temp", "cache", "logs", "coverage",
}

func ignoreDir(name string) bool {
	for _, pattern := range excludeDirs {
		if strings.EqualFold(name, pattern) {
			return true
		}
	}
	if strings.HasPrefix(name, "_") {
		return true
	}
	if strings.HasPrefix(name, ".") && len(name) > 1 {
		return true
	}
	return false
}

type walkItem struct {
	path  string
	depth int
}

// walk performs an iterative depth-limited traversal, letting every signal
// observe every entry.
func (d *Discovery) walk(ctx context.Context, rootPath string) error {
	stack := []walkItem{{path: rootPath, depth: 0}}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current.depth > d.maxDepth {
			continue
		}
		if current.depth > 0 && ignoreDir(d.filesystem.Base(current.path)) {
			continue
		}

		for entry, err := range d.filesystem.ReadDir(current.path) {
			if err != nil {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			for _, sig := range d.signals {
				// Signals accumulate state independently; one failing
				// observation must not starve the rest.
				_ = sig.ObserveEntry(ctx, current.path, entry)
			}

			if entry.IsDir() {
				stack = append(stack, walkItem{
					path:  d.filesystem.Join(current.path, entry.Name()),
					depth: current.depth + 1,
				})
			}
		}
	}

	return nil
}
