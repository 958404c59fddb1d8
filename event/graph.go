package event

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mercurysync/graphrunner/hook"
)

// Node wraps a hook inside the per-stage event DAG. It forwards to its
// target hook through a known method set (Name, Params, Produces,
// Invoke) rather than proxying arbitrary attribute access.
type Node struct {
	target *hook.Hook

	PreviousMap []string
	NextMap     []string
}

func newNode(h *hook.Hook) *Node {
	return &Node{target: h}
}

// Name is the event's name, taken from its target hook's short name.
func (n *Node) Name() string { return n.target.ShortName }

// Order is the target hook's declared ordering integer.
func (n *Node) Order() int { return n.target.Order }

// Params lists the argument names the target hook reads.
func (n *Node) Params() []string { return n.target.Params }

// Produces lists the result names the target hook writes.
func (n *Node) Produces() []string { return n.target.Produces }

// Kind is the target hook's kind.
func (n *Node) Kind() hook.Kind { return n.target.Kind }

// Invoke runs the target hook.
func (n *Node) Invoke(ctx context.Context, args map[string]any) (map[string]any, error) {
	return n.target.Invoke(ctx, args)
}

// Failure captures a hook error along with the offending event's name.
// Sibling events in the same generation are allowed to complete; a
// Failure never aborts the rest of the dispatch.
type Failure struct {
	EventName string
	Err       error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("event %q failed: %v", f.EventName, f.Err)
}

// conditionFalseKey is the reserved result key a Condition hook uses to
// signal a false outcome.
const conditionFalseKey = "__condition__"

// Graph is the per-stage event DAG.
type Graph struct {
	StageName string
	Nodes     map[string]*Node
	levels    [][]string
}

// Build constructs the event graph for a stage from its hooks, excluding
// Setup/Teardown (those run once outside the event graph, per the
// one-shot-per-stage contract). Edge construction is deterministic:
// an edge A -> B exists whenever B declares a Param matching one of A's
// Produces names; ties are broken by (Order, Name).
func Build(stageName string, hooksByKind map[hook.Kind][]*hook.Hook) (*Graph, error) {
	g := &Graph{StageName: stageName, Nodes: make(map[string]*Node)}

	for kind, hooks := range hooksByKind {
		if kind == hook.Setup || kind == hook.Teardown {
			continue
		}
		for _, h := range hooks {
			if h.Skip {
				continue
			}
			if _, exists := g.Nodes[h.ShortName]; exists {
				return nil, fmt.Errorf("event: duplicate event name %q in stage %q", h.ShortName, stageName)
			}
			g.Nodes[h.ShortName] = newNode(h)
		}
	}

	// Derive edges from produces/params matching.
	names := g.sortedNames()
	for _, fromName := range names {
		from := g.Nodes[fromName]
		produced := make(map[string]bool, len(from.Produces()))
		for _, p := range from.Produces() {
			produced[p] = true
		}
		for _, toName := range names {
			if toName == fromName {
				continue
			}
			to := g.Nodes[toName]
			for _, param := range to.Params() {
				if produced[param] {
					from.NextMap = append(from.NextMap, toName)
					to.PreviousMap = append(to.PreviousMap, fromName)
					break
				}
			}
		}
	}

	levels, err := g.buildLevels()
	if err != nil {
		return nil, err
	}
	g.levels = levels

	return g, nil
}

func (g *Graph) sortedNames() []string {
	names := make([]string, 0, len(g.Nodes))
	for n := range g.Nodes {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		ni, nj := g.Nodes[names[i]], g.Nodes[names[j]]
		if ni.Order() != nj.Order() {
			return ni.Order() < nj.Order()
		}
		return names[i] < names[j]
	})
	return names
}

// buildLevels groups nodes into topological generations via Kahn's
// algorithm, ties broken by (Order, Name) for reproducible dispatch
// order within a generation.
func (g *Graph) buildLevels() ([][]string, error) {
	inDegree := make(map[string]int, len(g.Nodes))
	for name := range g.Nodes {
		inDegree[name] = len(g.Nodes[name].PreviousMap)
	}

	var levels [][]string
	remaining := len(g.Nodes)

	for remaining > 0 {
		var level []string
		for name, deg := range inDegree {
			if deg == 0 {
				level = append(level, name)
			}
		}
		if len(level) == 0 {
			return nil, fmt.Errorf("event: cycle detected in stage %q event graph", g.StageName)
		}
		sort.Slice(level, func(i, j int) bool {
			ni, nj := g.Nodes[level[i]], g.Nodes[level[j]]
			if ni.Order() != nj.Order() {
				return ni.Order() < nj.Order()
			}
			return level[i] < level[j]
		})

		levels = append(levels, level)
		for _, name := range level {
			delete(inDegree, name)
			remaining--
		}
		for _, name := range level {
			for _, next := range g.Nodes[name].NextMap {
				if _, ok := inDegree[next]; ok {
					inDegree[next]--
				}
			}
		}
	}

	return levels, nil
}

// Run executes the event graph in topological generations, starting
// from the given seed arguments fed to every root (in-degree zero)
// node. It returns the union of outputs from terminal nodes (those with
// no successors) plus any Failures encountered; sibling events in a
// failed generation still run to completion.
func (g *Graph) Run(ctx context.Context, seed map[string]any) (map[string]any, []*Failure) {
	nextArgs := make(map[string]map[string]any, len(g.Nodes))
	for name := range g.Nodes {
		nextArgs[name] = make(map[string]any)
	}
	for _, level := range g.levels {
		for _, name := range level {
			if len(g.Nodes[name].PreviousMap) == 0 {
				for k, v := range seed {
					nextArgs[name][k] = v
				}
			}
		}
	}

	results := make(map[string]map[string]any, len(g.Nodes))
	skipped := make(map[string]bool)
	var failures []*Failure
	var mu sync.Mutex

	for _, level := range g.levels {
		var wg sync.WaitGroup
		for _, name := range level {
			if skipped[name] {
				continue
			}
			wg.Add(1)
			go func(name string) {
				defer wg.Done()
				defer func() {
					if p := recover(); p != nil {
						mu.Lock()
						failures = append(failures, &Failure{EventName: name, Err: fmt.Errorf("panic: %v", p)})
						mu.Unlock()
					}
				}()
				n := g.Nodes[name]

				args := filterArgs(nextArgs[name], n.Params())
				out, err := n.Invoke(ctx, args)

				mu.Lock()
				defer mu.Unlock()

				if err != nil {
					failures = append(failures, &Failure{EventName: name, Err: err})
					return
				}
				results[name] = out

				conditionFalse := n.Kind() == hook.Condition && out != nil && out[conditionFalseKey] == false
				if conditionFalse {
					cascadeSkip(g, name, skipped)
					return
				}

				for _, next := range n.NextMap {
					for k, v := range out {
						nextArgs[next][k] = v
					}
				}
			}(name)
		}
		wg.Wait()
	}

	final := make(map[string]any)
	for name, n := range g.Nodes {
		if len(n.NextMap) == 0 {
			for k, v := range results[name] {
				final[k] = v
			}
		}
	}

	return final, failures
}

func filterArgs(args map[string]any, params []string) map[string]any {
	out := make(map[string]any, len(params))
	for _, p := range params {
		if v, ok := args[p]; ok {
			out[p] = v
		}
	}
	return out
}

func cascadeSkip(g *Graph, from string, skipped map[string]bool) {
	queue := append([]string(nil), g.Nodes[from].NextMap...)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if skipped[name] {
			continue
		}
		skipped[name] = true
		queue = append(queue, g.Nodes[name].NextMap...)
	}
}
