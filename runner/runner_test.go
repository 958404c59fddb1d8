package runner

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mercurysync/graphrunner/graph"
	"github.com/mercurysync/graphrunner/stage"
)

func buildLinear(t *testing.T) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder(nil, graph.DefaultTransitions())
	if err := b.AddStage("Setup", stage.Setup, nil); err != nil {
		t.Fatal(err)
	}
	if err := b.AddStage("Execute", stage.Execute, []string{"Setup"}); err != nil {
		t.Fatal(err)
	}
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// TestRun_LinearGraphCompletes drives the synthesized Idle -> Validate
// -> Setup -> Execute -> Analyze -> Submit -> Complete chain end to end
// and expects every stage to resolve to its nominal state with no
// errors (spec.md §8 scenario 1, engine side).
func TestRun_LinearGraphCompletes(t *testing.T) {
	g := buildLinear(t)
	r := &Runner{}

	report, err := r.Run(context.Background(), g)
	if err != nil {
		t.Fatalf("unexpected runner error: %v", err)
	}
	if report.Status != StatusCompleted {
		t.Fatalf("expected StatusCompleted, got %s", report.Status)
	}
	for name, result := range report.StageResults {
		if result.Err != nil {
			t.Fatalf("stage %q failed: %v", name, result.Err)
		}
		if result.State == stage.ErrorState {
			t.Fatalf("stage %q entered Error state unexpectedly", name)
		}
	}
}

// TestRun_ErrorTransitionStopsSubsequentGenerations verifies a failing
// transition in one generation marks the run Failed and that later
// generations are skipped (spec.md §4.5).
func TestRun_ErrorTransitionStopsSubsequentGenerations(t *testing.T) {
	g := buildLinear(t)

	// Force the Setup -> Execute edge to fail.
	for _, e := range g.Edges {
		if e.From == "Setup" && e.To == "Execute" {
			e.TransitionFn = func(ctx context.Context, from, to *stage.Stage) graph.TransitionResult {
				return graph.TransitionResult{State: stage.ErrorState, Err: errInjected}
			}
		}
	}

	r := &Runner{}
	report, err := r.Run(context.Background(), g)
	if err != nil {
		t.Fatalf("unexpected runner-level error: %v", err)
	}
	if report.Status != StatusFailed {
		t.Fatalf("expected StatusFailed, got %s", report.Status)
	}

	// Complete depends (through Submit/Analyze) on Execute, which failed;
	// its generation must never have run.
	if _, ran := report.StageResults["Complete"]; ran {
		t.Fatal("expected Complete's generation to be skipped after the Execute failure")
	}
}

// TestRun_SynthesizesErrorTransition verifies that a failing transition
// invokes a real (from.Kind, ErrorKind) transition against the
// synthesized Error stage and records its result, per spec.md §4.5's
// "any next_state == Error" rule, rather than only flipping a status
// flag.
func TestRun_SynthesizesErrorTransition(t *testing.T) {
	g := buildLinear(t)

	for _, e := range g.Edges {
		if e.From == "Setup" && e.To == "Execute" {
			e.TransitionFn = func(ctx context.Context, from, to *stage.Stage) graph.TransitionResult {
				return graph.TransitionResult{State: stage.ErrorState, Err: errInjected}
			}
		}
	}

	r := &Runner{}
	report, err := r.Run(context.Background(), g)
	if err != nil {
		t.Fatalf("unexpected runner-level error: %v", err)
	}
	if report.Status != StatusFailed {
		t.Fatalf("expected StatusFailed, got %s", report.Status)
	}

	errResult, ok := report.StageResults["Error"]
	if !ok {
		t.Fatal("expected a synthesized Error stage result")
	}
	if errResult.State != stage.ErrorState {
		t.Fatalf("expected Error stage to enter ErrorState, got %s", errResult.State)
	}

	errorStage, ok := g.Stages["Error"]
	if !ok {
		t.Fatal("expected Builder to synthesize an Error stage")
	}
	if errorStage.State != stage.ErrorState {
		t.Fatalf("expected Error stage's own State to be ErrorState, got %s", errorStage.State)
	}
}

// TestRun_MaxParallelBoundsConcurrency verifies a generation's stages
// are dispatched through dag.Engine's bounded-concurrency executor:
// four sibling stages sharing one generation never run more than
// MaxParallel at once (mirrors dag's own TestEngine_MaxParallel, since
// Runner.Run now delegates to the same engine rather than a hand-rolled
// semaphore loop).
func TestRun_MaxParallelBoundsConcurrency(t *testing.T) {
	var running, maxRunning atomic.Int32

	track := func(ctx context.Context, from, to *stage.Stage) graph.TransitionResult {
		cur := running.Add(1)
		for {
			old := maxRunning.Load()
			if cur <= old || maxRunning.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		running.Add(-1)
		if err := to.Enter(stage.Executing); err != nil {
			return graph.TransitionResult{State: stage.ErrorState, Err: err}
		}
		return graph.TransitionResult{State: stage.Executing}
	}

	b := graph.NewBuilder(nil, graph.DefaultTransitions())
	if err := b.AddStage("Setup", stage.Setup, nil); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"A", "B", "C", "D"} {
		if err := b.AddStage(name, stage.Execute, []string{"Setup"}); err != nil {
			t.Fatal(err)
		}
	}
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range g.Edges {
		if e.From == "Setup" {
			e.TransitionFn = track
		}
	}

	r := &Runner{MaxParallel: 2}
	report, err := r.Run(context.Background(), g)
	if err != nil {
		t.Fatalf("unexpected runner error: %v", err)
	}
	if report.Status != StatusCompleted {
		t.Fatalf("expected StatusCompleted, got %s", report.Status)
	}
	if maxRunning.Load() > 2 {
		t.Fatalf("expected at most 2 concurrent transitions, observed %d", maxRunning.Load())
	}
}

// TestRun_TeardownInvokedForMarkedStages verifies every stage flagged
// RequiresShutdown gets its teardown callback invoked once the run ends,
// regardless of outcome (spec.md §4.5 "Cancellation").
func TestRun_TeardownInvokedForMarkedStages(t *testing.T) {
	b := graph.NewBuilder(nil, graph.DefaultTransitions())
	if err := b.AddStage("Setup", stage.Setup, nil); err != nil {
		t.Fatal(err)
	}
	if err := b.RequireShutdown("Setup"); err != nil {
		t.Fatal(err)
	}
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	var torndown []string
	r := &Runner{Teardown: func(ctx context.Context, s *stage.Stage) error {
		torndown = append(torndown, s.Name)
		return nil
	}}

	if _, err := r.Run(context.Background(), g); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, name := range torndown {
		if name == "Setup" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Setup's teardown to run, got %v", torndown)
	}
}

type testError string

func (e testError) Error() string { return string(e) }

const errInjected = testError("injected transition failure")
