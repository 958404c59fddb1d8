package hook

import (
	"fmt"
	"sync"
)

// kindSet is the closed set of valid Kind values, checked by Register.
var kindSet = map[Kind]bool{
	Action: true, Task: true, Check: true, Before: true, After: true,
	Event: true, Condition: true, Transform: true, Context: true,
	Setup: true, Teardown: true, Load: true, Save: true,
	Channel: true, Metric: true,
}

// DuplicateError reports a second registration for the same
// (stage, kind, shortName) key.
type DuplicateError struct {
	Stage     string
	Kind      Kind
	ShortName string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("hook: duplicate registration for stage %q kind %q name %q", e.Stage, e.Kind, e.ShortName)
}

// InvalidKindError reports registration of a hook whose Kind is not in
// the closed enumeration.
type InvalidKindError struct{ Kind Kind }

func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("hook: invalid kind %q", e.Kind)
}

type key struct {
	stage     string
	kind      Kind
	shortName string
}

// Registry indexes hooks by (stage, kind, short name). It is created
// fresh per graph-load and passed explicitly to the Assembler — never a
// package-level singleton, per the no-global-mutable-registries design.
type Registry struct {
	mu    sync.RWMutex
	hooks map[key]*Hook
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{hooks: make(map[key]*Hook)}
}

// Register adds a hook to the registry. Fails if the kind is not one of
// the closed enumeration values, or if (stage, kind, shortName) is
// already registered.
func (r *Registry) Register(h *Hook) error {
	if !kindSet[h.Kind] {
		return &InvalidKindError{Kind: h.Kind}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{stage: h.StageName, kind: h.Kind, shortName: h.ShortName}
	if _, exists := r.hooks[k]; exists {
		return &DuplicateError{Stage: h.StageName, Kind: h.Kind, ShortName: h.ShortName}
	}
	r.hooks[k] = h
	return nil
}

// Resolve looks up a hook by stage, short name, and kind.
func (r *Registry) Resolve(stage, shortName string, kind Kind) (*Hook, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.hooks[key{stage: stage, kind: kind, shortName: shortName}]
	return h, ok
}

// ForStage returns every hook attached to a stage, grouped by kind.
func (r *Registry) ForStage(stage string) map[Kind][]*Hook {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[Kind][]*Hook)
	for k, h := range r.hooks {
		if k.stage != stage || h.Skip {
			continue
		}
		out[k.kind] = append(out[k.kind], h)
	}
	return out
}

// StageNames returns the distinct stage names with at least one
// registered hook.
func (r *Registry) StageNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var names []string
	for k := range r.hooks {
		if !seen[k.stage] {
			seen[k.stage] = true
			names = append(names, k.stage)
		}
	}
	return names
}
