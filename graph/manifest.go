package graph

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mercurysync/graphrunner/hook"
	"github.com/mercurysync/graphrunner/stage"
	yaml "go.yaml.in/yaml/v3"
)

// Manifest is the on-disk declaration the CLI loads a graph from: a flat
// list of stages, each carrying its dependency names and the hooks
// attached to it. It is deliberately the simplest thing that can drive
// the Assembler end to end — a user program is expected to build its
// Builder directly the way the rest of this package's tests do; the
// manifest format exists for `graphrunner run`/`check`/`graph describe`.
type Manifest struct {
	Name   string      `yaml:"name"`
	Stages []StageSpec `yaml:"stages"`
}

// StageSpec is one manifest-declared stage.
type StageSpec struct {
	Name             string    `yaml:"name"`
	Kind             string    `yaml:"kind"`
	Dependencies     []string  `yaml:"dependencies"`
	RequiresShutdown bool      `yaml:"requires_shutdown"`
	Hooks            []HookSpec `yaml:"hooks"`
}

// HookSpec is one manifest-declared hook attached to a stage.
type HookSpec struct {
	Kind      string   `yaml:"kind"`
	ShortName string   `yaml:"short_name"`
	Params    []string `yaml:"params"`
	Produces  []string `yaml:"produces"`
	Order     int      `yaml:"order"`

	// Protocol selects how the hook's Func is built: "http" issues a
	// one-shot request via net/http (the CLI's own single-invocation
	// surface, distinct from action.Executor's sustained-load pooling
	// used by the Action Executor component during an Execute-kind
	// stage's load phase); "fake" (default) is a no-op that optionally
	// sleeps Delay and echoes Produces as true.
	Protocol string        `yaml:"protocol"`
	URL      string        `yaml:"url"`
	Method   string        `yaml:"method"`
	Delay    time.Duration `yaml:"delay"`
}

// LoadManifest reads and parses a YAML graph manifest from path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("graph: read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("graph: parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// Build assembles a Graph and its backing hook.Registry from the
// manifest, running the full Assembler algorithm (AddStage,
// RequireShutdown, Build) exactly as a caller constructing a Builder by
// hand would.
func (m *Manifest) Build() (*Graph, *hook.Registry, error) {
	registry := hook.NewRegistry()
	builder := NewBuilder(registry, DefaultTransitions())

	for _, s := range m.Stages {
		if err := builder.AddStage(s.Name, stage.Kind(s.Kind), s.Dependencies); err != nil {
			return nil, nil, err
		}
		if s.RequiresShutdown {
			if err := builder.RequireShutdown(s.Name); err != nil {
				return nil, nil, err
			}
		}
		for _, hs := range s.Hooks {
			h := &hook.Hook{
				Name:      s.Name + "." + hs.ShortName,
				ShortName: hs.ShortName,
				StageName: s.Name,
				Kind:      hook.Kind(hs.Kind),
				Params:    hs.Params,
				Produces:  hs.Produces,
				Order:     hs.Order,
				Call:      buildHookFunc(hs),
			}
			if err := registry.Register(h); err != nil {
				return nil, nil, err
			}
		}
	}

	g, err := builder.Build()
	if err != nil {
		return nil, nil, err
	}
	return g, registry, nil
}

// buildHookFunc translates one manifest HookSpec into the callable a
// hook.Hook invokes.
func buildHookFunc(hs HookSpec) hook.Func {
	switch hs.Protocol {
	case "http":
		return func(ctx context.Context, args map[string]any) (map[string]any, error) {
			method := hs.Method
			if method == "" {
				method = http.MethodGet
			}
			req, err := http.NewRequestWithContext(ctx, method, hs.URL, nil)
			if err != nil {
				return nil, fmt.Errorf("hook %s: build request: %w", hs.ShortName, err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return nil, fmt.Errorf("hook %s: request: %w", hs.ShortName, err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			return map[string]any{"status": resp.StatusCode, "body": body}, nil
		}
	default:
		return func(ctx context.Context, args map[string]any) (map[string]any, error) {
			if hs.Delay > 0 {
				select {
				case <-time.After(hs.Delay):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
			out := make(map[string]any, len(hs.Produces))
			for _, name := range hs.Produces {
				out[name] = true
			}
			return out, nil
		}
	}
}
