package runner

import (
	"context"
	"errors"
	"io"
	"net"
	"sort"
	"sync/atomic"

	"github.com/mercurysync/graphrunner/dag"
	"github.com/mercurysync/graphrunner/graph"
	"github.com/mercurysync/graphrunner/graphctx"
	"github.com/mercurysync/graphrunner/logger"
	"github.com/mercurysync/graphrunner/stage"
)

// errorStageName is the synthesized stage the Graph Assembler adds to
// every graph (graph.Builder.synthesizeImplicitStages); it is reached
// only through synthesizeErrorTransition, never ordinary generation
// dispatch.
const errorStageName = "Error"

// Status is the terminal outcome of a graph run.
type Status string

const (
	StatusCompleted Status = "Completed"
	StatusFailed    Status = "Failed"
)

// Report summarizes a completed or failed run.
type Report struct {
	Status       Status
	StageResults map[string]graph.TransitionResult
	Conflicts    []graphctx.Conflict
}

// TeardownFunc is invoked once per stage marked RequiresShutdown when
// the run ends, regardless of outcome.
type TeardownFunc func(ctx context.Context, s *stage.Stage) error

// Runner drives a Graph generation by generation.
type Runner struct {
	// MaxParallel bounds concurrent transitions within one generation
	// (0 = unlimited, one goroutine per stage in the generation).
	MaxParallel int

	Log *logger.Logger

	// Teardown is invoked for every stage marked RequiresShutdown after
	// the run ends, generation by generation in the graph's
	// Generations order.
	Teardown TeardownFunc

	executionStageSeq int64
}

// Run executes every generation in order. Within a generation,
// transitions are dispatched concurrently; a failure does not pre-empt
// already-running sibling transitions, and subsequent generations are
// skipped once any transition in the current generation reports Error.
func (r *Runner) Run(ctx context.Context, g *graph.Graph) (*Report, error) {
	report := &Report{
		Status:       StatusCompleted,
		StageResults: make(map[string]graph.TransitionResult, len(g.Stages)),
	}

	failed := false

	for _, generation := range g.Generations {
		if failed {
			break
		}

		names := make([]string, 0, len(generation))
		for _, name := range generation {
			if name == errorStageName {
				continue
			}
			names = append(names, name)
		}
		if len(names) == 0 {
			continue
		}

		incoming := incomingEdges(g, names)
		dagGraph := r.buildDAG(g, names, incoming)

		engine := &dag.Engine{MaxParallel: r.MaxParallel}
		batch, err := engine.ExecuteBatch(ctx, dagGraph, dag.NewState())
		if err != nil {
			return nil, err
		}

		for _, name := range names {
			result, _ := batch.NodeResults[name].Output.(graph.TransitionResult)
			report.StageResults[name] = result
			if result.Err != nil || result.State == stage.ErrorState {
				failed = true
			}
		}
	}

	if failed {
		report.Status = StatusFailed
		r.synthesizeErrorTransition(ctx, g, report)
	}

	r.runTeardown(ctx, g, report)

	return report, nil
}

// buildDAG wraps one generation's stages as dag.Node values and delegates
// bounded-concurrency dispatch within the generation to dag.Engine — the
// same per-level executor the dag package uses for its own batch
// execution. No edges are declared: stages within one generation are
// already independent by construction (the Graph Assembler's leveling
// guarantees it), so every node sits at dag.Engine's single level.
func (r *Runner) buildDAG(g *graph.Graph, names []string, incoming map[string][]*graph.Edge) *dag.Graph {
	nodes := make(map[string]dag.Node, len(names))
	for _, name := range names {
		to := g.Stages[name]
		edges := incoming[name]
		nodes[name] = &stageNode{
			name: name,
			run:  func(ctx context.Context) graph.TransitionResult { return r.runStage(ctx, g, to, edges) },
		}
	}
	return &dag.Graph{Nodes: nodes}
}

// stageNode adapts a stage transition into a dag.Node. Its Run never
// returns a Go error: a failing transition is represented as a
// TransitionResult with Err set, per the typed-result-over-exception
// design, and that value must survive into dag.NodeResult.Output even
// on failure.
type stageNode struct {
	name string
	run  func(ctx context.Context) graph.TransitionResult
}

func (n *stageNode) Name() string { return n.name }

func (n *stageNode) Run(ctx context.Context, _ *dag.State) (any, error) {
	return n.run(ctx), nil
}

// synthesizeErrorTransition implements the requirement that once any
// transition's next_state is Error, the runner invokes a real
// (from.Kind, ErrorKind) transition against the graph's Error stage and
// records its result, rather than leaving the failure as a bare status
// flag. The first failing stage in sorted name order is deterministically
// chosen as the source when more than one transition failed within the
// same generation.
func (r *Runner) synthesizeErrorTransition(ctx context.Context, g *graph.Graph, report *Report) {
	errorStage, ok := g.Stages[errorStageName]
	if !ok {
		return
	}

	names := make([]string, 0, len(report.StageResults))
	for name := range report.StageResults {
		names = append(names, name)
	}
	sort.Strings(names)

	var failedName string
	for _, name := range names {
		result := report.StageResults[name]
		if result.Err != nil || result.State == stage.ErrorState {
			failedName = name
			break
		}
	}
	if failedName == "" {
		return
	}

	from := g.Stages[failedName]
	fn, ok := g.Transitions.Lookup(from.Kind, stage.ErrorKind)
	if !ok {
		if r.Log != nil {
			r.Log.WithComponent("runner").Error("no error transition registered",
				logger.Fields("from_kind", string(from.Kind)))
		}
		return
	}

	edge := &graph.Edge{From: failedName, To: errorStageName, TransitionFn: fn}
	report.StageResults[errorStageName] = r.runStage(ctx, g, errorStage, []*graph.Edge{edge})
}

func (r *Runner) runStage(ctx context.Context, g *graph.Graph, to *stage.Stage, edges []*graph.Edge) graph.TransitionResult {
	if to.ExecutionStageID == 0 {
		to.ExecutionStageID = int(atomic.AddInt64(&r.executionStageSeq, 1))
	}

	if len(edges) == 0 {
		if err := to.Enter(stage.Initialized); err != nil {
			return graph.TransitionResult{State: stage.ErrorState, Err: err}
		}
		return graph.TransitionResult{State: stage.Initialized}
	}

	var last graph.TransitionResult
	for _, e := range edges {
		from := g.Stages[e.From]
		result := e.TransitionFn(ctx, from, to)
		last = result

		conflicts := to.Context.MergeFrom(from.GenerationID, from.ExecutionStageID, from.Context.Snapshot())
		if len(conflicts) > 0 && r.Log != nil {
			r.Log.WithComponent("runner").Debug("context merge conflict", logger.Fields("stage", to.Name, "conflicts", len(conflicts)))
		}

		if result.Err != nil {
			return result
		}
	}
	return last
}

func incomingEdges(g *graph.Graph, generation []string) map[string][]*graph.Edge {
	inGen := make(map[string]bool, len(generation))
	for _, n := range generation {
		inGen[n] = true
	}
	out := make(map[string][]*graph.Edge)
	for _, e := range g.Edges {
		if inGen[e.To] {
			out[e.To] = append(out[e.To], e)
		}
	}
	return out
}

// runTeardown invokes the registered teardown callback for every stage
// marked RequiresShutdown, generation by generation in the graph's
// Generations order. A BrokenPipeError
// equivalent (net.ErrClosed/io.ErrClosedPipe) encountered here is
// suppressed but logged at Debug, per the preserved loop-close
// suppression behavior.
func (r *Runner) runTeardown(ctx context.Context, g *graph.Graph, report *Report) {
	if r.Teardown == nil {
		return
	}
	for _, generation := range g.Generations {
		for _, name := range generation {
			s := g.Stages[name]
			if !s.RequiresShutdown {
				continue
			}
			if err := r.Teardown(ctx, s); err != nil {
				if isClosedPipeError(err) {
					if r.Log != nil {
						r.Log.WithComponent("runner").Debug("teardown: closed pipe suppressed", logger.ErrorFields("teardown", err))
					}
					continue
				}
				if r.Log != nil {
					r.Log.WithComponent("runner").Error("teardown failed", logger.ErrorFields("teardown", err))
				}
			}
		}
	}
}

func isClosedPipeError(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}
