package graph

import (
	"context"

	"github.com/mercurysync/graphrunner/stage"
)

// stateFor maps a stage Kind to the State it enters on a successful
// transition.
func stateFor(kind stage.Kind) stage.State {
	switch kind {
	case stage.Idle:
		return stage.Initialized
	case stage.Validate:
		return stage.Validated
	case stage.Setup:
		return stage.SetupState
	case stage.Optimize:
		return stage.Optimizing
	case stage.Execute:
		return stage.Executing
	case stage.Checkpoint:
		return stage.Checkpointing
	case stage.Analyze:
		return stage.Analyzing
	case stage.Submit:
		return stage.Submitting
	case stage.Complete:
		return stage.Completed
	case stage.Teardown:
		return stage.TeardownState
	case stage.ErrorKind:
		return stage.ErrorState
	default:
		return stage.Initialized
	}
}

// defaultTransition merges the source stage's context snapshot into the
// destination stage's context and enters the destination's state for
// its kind. This is the transition body
// used for every edge that does not need bespoke handling.
func defaultTransition(_ context.Context, from, to *stage.Stage) TransitionResult {
	if from != nil && from.Context != nil && to.Context != nil {
		for k, v := range from.Context.Snapshot() {
			to.Context.Set(k, v)
		}
	}

	target := stateFor(to.Kind)
	if err := to.Enter(target); err != nil {
		return TransitionResult{State: stage.ErrorState, Err: err}
	}
	return TransitionResult{State: target}
}

// DefaultTransitions returns the fixed transition table covering the
// canonical stage-kind flow described in the state machine: Idle ->
// Validate -> Setup -> [Optimize] -> Execute -> [Checkpoint] -> Analyze
// -> Submit -> Complete, with Teardown and Error reachable from any
// kind.
func DefaultTransitions() Table {
	t := Table{}

	pairs := []TransitionKey{
		{From: stage.Idle, To: stage.Validate},
		{From: stage.Validate, To: stage.Setup},
		{From: stage.Setup, To: stage.Optimize},
		{From: stage.Setup, To: stage.Execute},
		{From: stage.Optimize, To: stage.Execute},
		{From: stage.Execute, To: stage.Checkpoint},
		{From: stage.Execute, To: stage.Analyze},
		{From: stage.Checkpoint, To: stage.Analyze},
		{From: stage.Analyze, To: stage.Submit},
		{From: stage.Submit, To: stage.Complete},
	}
	for _, p := range pairs {
		t[p] = defaultTransition
	}

	t[TransitionKey{From: AnyKind, To: stage.Teardown}] = defaultTransition
	t[TransitionKey{From: AnyKind, To: stage.ErrorKind}] = defaultTransition

	return t
}
