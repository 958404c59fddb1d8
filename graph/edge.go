package graph

import (
	"context"
	"time"

	"github.com/mercurysync/graphrunner/stage"
)

// Edge is a directed connection between two stages, bound at assembly
// time to a TransitionFunc looked up from the transition table by
// (from.Kind, to.Kind).
type Edge struct {
	From string
	To   string

	// Requires lists the context keys the destination stage reads.
	Requires []string
	// Provides lists the context keys the source stage writes.
	Provides []string
	Timeout  time.Duration

	TransitionFn TransitionFunc
}

// TransitionResult is the typed sum value a TransitionFunc returns in
// place of letting an exception cross the stage boundary.
type TransitionResult struct {
	State stage.State
	Err   error
}

// TransitionFunc is pure with respect to the stages passed: it reads
// the source stage's published context and produces mutations on the
// destination stage, returning the destination's resulting state.
type TransitionFunc func(ctx context.Context, from, to *stage.Stage) TransitionResult

// TransitionKey identifies a transition table entry by source and
// destination stage kind. Kind "" (AnyKind) matches any source kind,
// used for Teardown/Error, which are reachable from every state.
type TransitionKey struct {
	From stage.Kind
	To   stage.Kind
}

// AnyKind matches any source stage kind in a TransitionKey.From.
const AnyKind stage.Kind = ""

// Table is the fixed mapping from (from.kind, to.kind) to a transition
// handler, injected into the Builder rather than held as a package
// global.
type Table map[TransitionKey]TransitionFunc

// Lookup resolves the handler for an edge, falling back to an
// AnyKind-sourced entry (used by Teardown/Error, reachable from any
// state) when no exact match exists.
func (t Table) Lookup(from, to stage.Kind) (TransitionFunc, bool) {
	if fn, ok := t[TransitionKey{From: from, To: to}]; ok {
		return fn, true
	}
	if fn, ok := t[TransitionKey{From: AnyKind, To: to}]; ok {
		return fn, true
	}
	return nil, false
}
