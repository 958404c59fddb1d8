package hook

import (
	"context"
	"testing"
)

func TestRegistry_RegisterAndResolve(t *testing.T) {
	r := NewRegistry()
	h := &Hook{Name: "svc.getRoot", ShortName: "getRoot", StageName: "Execute", Kind: Action}
	if err := r.Register(h); err != nil {
		t.Fatal(err)
	}
	got, ok := r.Resolve("Execute", "getRoot", Action)
	if !ok || got != h {
		t.Fatalf("expected to resolve registered hook, got %v (ok=%v)", got, ok)
	}
}

func TestRegistry_DuplicateRejected(t *testing.T) {
	r := NewRegistry()
	h := &Hook{Name: "svc.getRoot", ShortName: "getRoot", StageName: "Execute", Kind: Action}
	if err := r.Register(h); err != nil {
		t.Fatal(err)
	}
	err := r.Register(&Hook{Name: "svc.getRoot2", ShortName: "getRoot", StageName: "Execute", Kind: Action})
	if err == nil {
		t.Fatal("expected DuplicateError, got nil")
	}
	if _, ok := err.(*DuplicateError); !ok {
		t.Fatalf("expected *DuplicateError, got %T", err)
	}
}

// TestRegistry_ChannelAndMetricKindsAccepted verifies the two kinds
// spec.md §2's component-A table adds beyond the original distillation
// (channel, metric) register like any other closed-enum kind.
func TestRegistry_ChannelAndMetricKindsAccepted(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&Hook{Name: "c", ShortName: "c", StageName: "Execute", Kind: Channel}); err != nil {
		t.Fatalf("expected Channel kind to register, got %v", err)
	}
	if err := r.Register(&Hook{Name: "m", ShortName: "m", StageName: "Execute", Kind: Metric}); err != nil {
		t.Fatalf("expected Metric kind to register, got %v", err)
	}
}

func TestRegistry_InvalidKindRejected(t *testing.T) {
	r := NewRegistry()
	err := r.Register(&Hook{Name: "bad", ShortName: "bad", StageName: "Execute", Kind: Kind("bogus")})
	if err == nil {
		t.Fatal("expected InvalidKindError, got nil")
	}
	if _, ok := err.(*InvalidKindError); !ok {
		t.Fatalf("expected *InvalidKindError, got %T", err)
	}
}

func TestRegistry_ForStage_ExcludesSkipped(t *testing.T) {
	r := NewRegistry()
	kept := &Hook{Name: "kept", ShortName: "kept", StageName: "Execute", Kind: Check}
	skipped := &Hook{Name: "skipped", ShortName: "skipped", StageName: "Execute", Kind: Check, Skip: true}
	if err := r.Register(kept); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(skipped); err != nil {
		t.Fatal(err)
	}

	byKind := r.ForStage("Execute")
	if len(byKind[Check]) != 1 || byKind[Check][0] != kept {
		t.Fatalf("expected only the non-skipped hook, got %v", byKind[Check])
	}
}

func TestHook_Invoke_PreconditionFalseIsNoop(t *testing.T) {
	called := false
	h := &Hook{
		Name: "guarded", ShortName: "guarded", StageName: "Execute", Kind: Condition,
		Precondition: func(args map[string]any) bool { return false },
		Call: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			called = true
			return nil, nil
		},
	}
	out, err := h.Invoke(context.Background(), nil)
	if err != nil || out != nil {
		t.Fatalf("expected (nil, nil) for false precondition, got (%v, %v)", out, err)
	}
	if called {
		t.Fatal("expected Call not to run when precondition is false")
	}
}

func TestRegistry_StageNames(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&Hook{Name: "a", ShortName: "a", StageName: "Setup", Kind: Setup}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(&Hook{Name: "b", ShortName: "b", StageName: "Execute", Kind: Action}); err != nil {
		t.Fatal(err)
	}
	names := r.StageNames()
	if len(names) != 2 {
		t.Fatalf("expected 2 stage names, got %v", names)
	}
}
