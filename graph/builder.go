package graph

import (
	"fmt"
	"sort"

	"github.com/mercurysync/graphrunner/event"
	"github.com/mercurysync/graphrunner/hook"
	"github.com/mercurysync/graphrunner/stage"
)

// stageDef is a user-declared stage prior to assembly.
type stageDef struct {
	name             string
	kind             stage.Kind
	dependencies     []string
	requiresShutdown bool
	seq              int
}

// Builder assembles a validated Graph from explicitly registered stage
// definitions. Stages add themselves via AddStage at declaration time;
// there is no subclass scanning and no package-level stage registry —
// each Builder holds its own set, and the hook registry and transition
// table are both supplied by the caller at construction.
type Builder struct {
	hooks       *hook.Registry
	transitions Table

	defs []*stageDef
	seq  int
}

// NewBuilder constructs a Builder over an injected hook registry and
// transition table.
func NewBuilder(hooks *hook.Registry, transitions Table) *Builder {
	return &Builder{hooks: hooks, transitions: transitions}
}

// AddStage registers a user-declared stage. dependencies names stages
// that must complete before this one starts.
func (b *Builder) AddStage(name string, kind stage.Kind, dependencies []string) error {
	for _, d := range b.defs {
		if d.name == name {
			return fmt.Errorf("graph: stage %q already registered", name)
		}
	}
	b.defs = append(b.defs, &stageDef{
		name:         name,
		kind:         kind,
		dependencies: append([]string(nil), dependencies...),
		seq:          b.seq,
	})
	b.seq++
	return nil
}

// RequireShutdown marks an already-registered stage's teardown callback
// as one the Transition Runner must invoke when the run ends.
func (b *Builder) RequireShutdown(name string) error {
	for _, d := range b.defs {
		if d.name == name {
			d.requiresShutdown = true
			return nil
		}
	}
	return fmt.Errorf("graph: stage %q not registered", name)
}

// CyclicGraphError reports that the declared dependency graph contains
// a cycle.
type CyclicGraphError struct{ Remaining []string }

func (e *CyclicGraphError) Error() string {
	return fmt.Sprintf("graph: cyclic dependency involving stages %v", e.Remaining)
}

// IsolatedStageError reports a stage unreachable from Idle: it has no
// dependencies and nothing depends on it, in a graph with more than one
// declared stage.
type IsolatedStageError struct{ Stage string }

func (e *IsolatedStageError) Error() string {
	return fmt.Sprintf("graph: stage %q is isolated (unreachable from Idle)", e.Stage)
}

// UnsupportedTransitionError reports an edge whose (from.Kind, to.Kind)
// pair has no handler in the transition table.
type UnsupportedTransitionError struct{ From, To stage.Kind }

func (e *UnsupportedTransitionError) Error() string {
	return fmt.Sprintf("graph: no transition handler for %s -> %s", e.From, e.To)
}

// UnknownHookStageError reports a hook registered under a stage name
// that does not exist in the assembled graph: a hook may not reference
// a stage that does not exist at assembly time.
type UnknownHookStageError struct{ Stage string }

func (e *UnknownHookStageError) Error() string {
	return fmt.Sprintf("graph: hook registered for unknown stage %q", e.Stage)
}

// Graph is the validated, assembled stage DAG.
type Graph struct {
	Stages      map[string]*stage.Stage
	Edges       []*Edge
	Generations [][]string
	EventGraphs map[string]*event.Graph

	// Transitions is the table the Builder assembled this graph with. The
	// Transition Runner consults it directly to synthesize the implicit
	// error transition on failure, since that edge is never declared by
	// a stage dependency and so never appears in Edges.
	Transitions Table
}

// Build runs the full assembly algorithm: adjacency build, cycle/isolate
// rejection, implicit-stage synthesis, Kahn's-algorithm leveling,
// transition-table validation, and event-graph binding.
func (b *Builder) Build() (*Graph, error) {
	defs := cloneDefs(b.defs)

	if err := checkCyclesAndIsolates(defs); err != nil {
		return nil, err
	}

	defs = synthesizeImplicitStages(defs)

	byName := make(map[string]*stageDef, len(defs))
	for _, d := range defs {
		byName[d.name] = d
	}

	levels, err := levelStages(defs)
	if err != nil {
		return nil, err
	}

	g := &Graph{
		Stages:      make(map[string]*stage.Stage, len(defs)),
		EventGraphs: make(map[string]*event.Graph, len(defs)),
		Transitions: b.transitions,
	}

	for genID, level := range levels {
		for _, name := range level {
			d := byName[name]
			s := stage.New(d.name, d.kind, d.dependencies)
			s.GenerationID = genID
			s.RequiresShutdown = d.requiresShutdown
			g.Stages[name] = s
		}
		g.Generations = append(g.Generations, append([]string(nil), level...))
	}

	for _, d := range defs {
		to := g.Stages[d.name]
		for _, depName := range d.dependencies {
			from, ok := g.Stages[depName]
			if !ok {
				return nil, fmt.Errorf("graph: stage %q depends on unknown stage %q", d.name, depName)
			}
			fn, ok := b.transitions.Lookup(from.Kind, to.Kind)
			if !ok {
				return nil, &UnsupportedTransitionError{From: from.Kind, To: to.Kind}
			}
			g.Edges = append(g.Edges, &Edge{
				From:         from.Name,
				To:           to.Name,
				TransitionFn: fn,
			})
		}
	}

	if b.hooks != nil {
		for _, hookStage := range b.hooks.StageNames() {
			if _, ok := g.Stages[hookStage]; !ok {
				return nil, &UnknownHookStageError{Stage: hookStage}
			}
		}

		for name, s := range g.Stages {
			s.HooksByKind = b.hooks.ForStage(name)
			eg, err := event.Build(name, s.HooksByKind)
			if err != nil {
				return nil, err
			}
			g.EventGraphs[name] = eg
		}
	}

	return g, nil
}

func cloneDefs(in []*stageDef) []*stageDef {
	out := make([]*stageDef, len(in))
	for i, d := range in {
		cp := *d
		cp.dependencies = append([]string(nil), d.dependencies...)
		out[i] = &cp
	}
	return out
}

func checkCyclesAndIsolates(defs []*stageDef) error {
	if len(defs) == 0 {
		return nil
	}

	byName := make(map[string]*stageDef, len(defs))
	inDegree := make(map[string]int, len(defs))
	dependents := make(map[string][]string)
	for _, d := range defs {
		byName[d.name] = d
		if _, ok := inDegree[d.name]; !ok {
			inDegree[d.name] = 0
		}
	}
	for _, d := range defs {
		for _, dep := range d.dependencies {
			inDegree[d.name]++
			dependents[dep] = append(dependents[dep], d.name)
		}
	}

	if len(defs) > 1 {
		for _, d := range defs {
			if len(d.dependencies) == 0 && len(dependents[d.name]) == 0 {
				return &IsolatedStageError{Stage: d.name}
			}
		}
	}

	var queue []string
	for name, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, name)
		}
	}
	visited := 0
	for len(queue) > 0 {
		var next []string
		for _, name := range queue {
			visited++
			for _, dep := range dependents[name] {
				inDegree[dep]--
				if inDegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		queue = next
	}
	if visited != len(defs) {
		var remaining []string
		for name, deg := range inDegree {
			if deg > 0 {
				remaining = append(remaining, name)
			}
		}
		sort.Strings(remaining)
		return &CyclicGraphError{Remaining: remaining}
	}

	return nil
}

func synthesizeImplicitStages(defs []*stageDef) []*stageDef {
	byName := make(map[string]*stageDef, len(defs))
	for _, d := range defs {
		byName[d.name] = d
	}
	nextSeq := 0
	for _, d := range defs {
		if d.seq >= nextSeq {
			nextSeq = d.seq + 1
		}
	}

	if _, ok := byName["Idle"]; !ok {
		idle := &stageDef{name: "Idle", kind: stage.Idle, seq: -2}
		defs = append([]*stageDef{idle}, defs...)
		byName["Idle"] = idle
	}

	if _, ok := byName["Validate"]; !ok {
		validate := &stageDef{name: "Validate", kind: stage.Validate, dependencies: []string{"Idle"}, seq: -1}
		rebuilt := make([]*stageDef, 0, len(defs)+1)
		rebuilt = append(rebuilt, defs[0], validate)
		rebuilt = append(rebuilt, defs[1:]...)
		defs = rebuilt
		byName["Validate"] = validate
	}

	for _, d := range defs {
		if d.name == "Idle" || d.name == "Validate" {
			continue
		}
		if len(d.dependencies) == 0 {
			d.dependencies = []string{"Validate"}
		}
	}

	dependedOn := make(map[string]bool)
	for _, d := range defs {
		for _, dep := range d.dependencies {
			dependedOn[dep] = true
		}
	}
	var sinks []string
	for _, d := range defs {
		if d.name == "Idle" || d.name == "Validate" {
			continue
		}
		if !dependedOn[d.name] {
			sinks = append(sinks, d.name)
		}
	}
	sort.Strings(sinks)

	ensureTail := func(name string, kind stage.Kind, deps []string) {
		if _, ok := byName[name]; ok {
			return
		}
		d := &stageDef{name: name, kind: kind, dependencies: deps, seq: nextSeq}
		nextSeq++
		defs = append(defs, d)
		byName[name] = d
	}

	if len(sinks) == 0 {
		sinks = []string{"Validate"}
	}
	ensureTail("Analyze", stage.Analyze, sinks)
	ensureTail("Submit", stage.Submit, []string{"Analyze"})
	ensureTail("Complete", stage.Complete, []string{"Submit"})

	// Error has no dependencies and nothing depends on it: it is reached
	// only via the runner's out-of-band error transition, never through
	// ordinary generation dispatch. Synthesized after the cycle/isolate
	// check above, so its lack of edges never trips IsolatedStageError.
	ensureTail("Error", stage.ErrorKind, nil)

	return defs
}

func levelStages(defs []*stageDef) ([][]string, error) {
	byName := make(map[string]*stageDef, len(defs))
	inDegree := make(map[string]int, len(defs))
	dependents := make(map[string][]string)
	for _, d := range defs {
		byName[d.name] = d
		if _, ok := inDegree[d.name]; !ok {
			inDegree[d.name] = 0
		}
	}
	for _, d := range defs {
		for _, dep := range d.dependencies {
			inDegree[d.name]++
			dependents[dep] = append(dependents[dep], d.name)
		}
	}

	var levels [][]string
	remaining := len(defs)
	for remaining > 0 {
		var level []string
		for name, deg := range inDegree {
			if deg == 0 {
				level = append(level, name)
			}
		}
		if len(level) == 0 {
			return nil, &CyclicGraphError{}
		}
		sort.Slice(level, func(i, j int) bool {
			return byName[level[i]].seq < byName[level[j]].seq
		})
		levels = append(levels, level)
		for _, name := range level {
			delete(inDegree, name)
			remaining--
		}
		for _, name := range level {
			for _, dep := range dependents[name] {
				if _, ok := inDegree[dep]; ok {
					inDegree[dep]--
				}
			}
		}
	}

	return levels, nil
}
