package event

import (
	"context"
	"testing"

	"github.com/mercurysync/graphrunner/hook"
)

func constHook(name string, produces []string, order int, fn hook.Func) *hook.Hook {
	return &hook.Hook{
		Name: name, ShortName: name, StageName: "Execute", Kind: hook.Action,
		Produces: produces, Order: order, Call: fn,
	}
}

// TestBuild_OrdersByProducesConsumes verifies a hook B that declares a
// Param matching hook A's Produces set runs strictly after A.
func TestBuild_OrdersByProducesConsumes(t *testing.T) {
	var order []string

	a := constHook("a", []string{"x"}, 0, func(ctx context.Context, args map[string]any) (map[string]any, error) {
		order = append(order, "a")
		return map[string]any{"x": 1}, nil
	})
	b := &hook.Hook{
		Name: "b", ShortName: "b", StageName: "Execute", Kind: hook.Action,
		Params: []string{"x"},
		Call: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			order = append(order, "b")
			if args["x"] != 1 {
				t.Fatalf("expected b to see a's produced x=1, got %v", args["x"])
			}
			return nil, nil
		},
	}

	g, err := Build("Execute", map[hook.Kind][]*hook.Hook{hook.Action: {a, b}})
	if err != nil {
		t.Fatal(err)
	}

	_, failures := g.Run(context.Background(), nil)
	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("expected [a b], got %v", order)
	}
}

// TestBuild_CycleRejected rejects an event graph whose hooks declare a
// mutual produces/params cycle.
func TestBuild_CycleRejected(t *testing.T) {
	a := &hook.Hook{Name: "a", ShortName: "a", StageName: "Execute", Kind: hook.Action, Produces: []string{"y"}, Params: []string{"x"}}
	b := &hook.Hook{Name: "b", ShortName: "b", StageName: "Execute", Kind: hook.Action, Produces: []string{"x"}, Params: []string{"y"}}

	_, err := Build("Execute", map[hook.Kind][]*hook.Hook{hook.Action: {a, b}})
	if err == nil {
		t.Fatal("expected a cycle error, got nil")
	}
}

// TestRun_ConditionFalseSkipsDescendants verifies a false Condition node
// short-circuits its descendants within the current dispatch, while
// unrelated sibling events still complete (spec.md §4.2).
func TestRun_ConditionFalseSkipsDescendants(t *testing.T) {
	var ran []string

	cond := &hook.Hook{
		Name: "cond", ShortName: "cond", StageName: "Execute", Kind: hook.Condition,
		Produces: []string{"gate"},
		Call: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			ran = append(ran, "cond")
			return map[string]any{"gate": false, conditionFalseKey: false}, nil
		},
	}
	gated := &hook.Hook{
		Name: "gated", ShortName: "gated", StageName: "Execute", Kind: hook.Action,
		Params: []string{"gate"},
		Call: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			ran = append(ran, "gated")
			return nil, nil
		},
	}
	sibling := &hook.Hook{
		Name: "sibling", ShortName: "sibling", StageName: "Execute", Kind: hook.Action,
		Call: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			ran = append(ran, "sibling")
			return nil, nil
		},
	}

	g, err := Build("Execute", map[hook.Kind][]*hook.Hook{
		hook.Condition: {cond},
		hook.Action:    {gated, sibling},
	})
	if err != nil {
		t.Fatal(err)
	}

	_, failures := g.Run(context.Background(), nil)
	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}

	seen := make(map[string]bool)
	for _, n := range ran {
		seen[n] = true
	}
	if !seen["cond"] || !seen["sibling"] {
		t.Fatalf("expected cond and sibling to run, got %v", ran)
	}
	if seen["gated"] {
		t.Fatalf("expected gated to be skipped after false condition, got %v", ran)
	}
}

// TestRun_SiblingFailureDoesNotAbortGeneration verifies a Failure from
// one event does not prevent concurrent siblings in the same generation
// from completing (spec.md §4.2 "Failure within the event graph").
func TestRun_SiblingFailureDoesNotAbortGeneration(t *testing.T) {
	ranOK := make(chan struct{}, 1)

	failing := &hook.Hook{
		Name: "failing", ShortName: "failing", StageName: "Execute", Kind: hook.Action,
		Call: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			return nil, errBoom
		},
	}
	ok := &hook.Hook{
		Name: "ok", ShortName: "ok", StageName: "Execute", Kind: hook.Action,
		Call: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			ranOK <- struct{}{}
			return nil, nil
		},
	}

	g, err := Build("Execute", map[hook.Kind][]*hook.Hook{hook.Action: {failing, ok}})
	if err != nil {
		t.Fatal(err)
	}

	_, failures := g.Run(context.Background(), nil)
	if len(failures) != 1 || failures[0].EventName != "failing" {
		t.Fatalf("expected one failure from 'failing', got %v", failures)
	}
	select {
	case <-ranOK:
	default:
		t.Fatal("expected sibling 'ok' event to complete despite 'failing' error")
	}
}

type testError string

func (e testError) Error() string { return string(e) }

const errBoom = testError("boom")
