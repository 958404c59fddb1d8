package stage

import (
	"github.com/mercurysync/graphrunner/graphctx"
	"github.com/mercurysync/graphrunner/hook"
)

// Kind is a closed enumeration of stage kinds.
type Kind string

const (
	Idle         Kind = "Idle"
	Validate     Kind = "Validate"
	Setup        Kind = "Setup"
	Optimize     Kind = "Optimize"
	Execute      Kind = "Execute"
	Checkpoint   Kind = "Checkpoint"
	Analyze      Kind = "Analyze"
	Submit       Kind = "Submit"
	Complete     Kind = "Complete"
	Teardown     Kind = "Teardown"
	Wait         Kind = "Wait"
	ErrorKind    Kind = "Error"
)

// State is a closed enumeration of lifecycle states a Stage passes
// through once per run.
type State string

const (
	Initialized  State = "Initialized"
	Validated    State = "Validated"
	SetupState   State = "Setup"
	Optimizing   State = "Optimizing"
	Executing    State = "Executing"
	Checkpointing State = "Checkpointing"
	Analyzing    State = "Analyzing"
	Submitting   State = "Submitting"
	Completed    State = "Completed"
	TeardownState State = "Teardown"
	ErrorState   State = "Error"
)

// Stage is a named unit of the execution graph.
type Stage struct {
	Name         string
	Kind         Kind
	Dependencies []string
	State        State

	HooksByKind map[hook.Kind][]*hook.Hook

	Context *graphctx.Context

	// GenerationID is assigned at assembly by the Graph Assembler via
	// Kahn's algorithm leveling.
	GenerationID int
	// ExecutionStageID is assigned by the Transition Runner from its
	// running counter when it dispatches the stage; it is the
	// tie-breaker for concurrent context merges.
	ExecutionStageID int

	// RequiresShutdown marks a stage whose teardown callback the
	// Transition Runner must invoke unconditionally when the run ends.
	RequiresShutdown bool

	// entered records whether this stage has already run once, to
	// enforce the no-re-entry invariant.
	entered bool
}

// New constructs a Stage in its initial state.
func New(name string, kind Kind, dependencies []string) *Stage {
	return &Stage{
		Name:         name,
		Kind:         kind,
		Dependencies: dependencies,
		State:        Initialized,
		HooksByKind:  make(map[hook.Kind][]*hook.Hook),
		Context:      graphctx.New(),
	}
}

// Enter transitions the stage to the given state, enforcing the
// no-re-entry invariant: Completed and Error are terminal, and a stage
// already marked entered may not be entered again within one run.
func (s *Stage) Enter(state State) error {
	if s.entered && (s.State == Completed || s.State == ErrorState) {
		return &ReenterError{Stage: s.Name}
	}
	s.State = state
	if state == Completed || state == ErrorState {
		s.entered = true
	}
	return nil
}

// ReenterError reports an attempt to re-enter a stage already marked
// Completed or Error within the same run.
type ReenterError struct{ Stage string }

func (e *ReenterError) Error() string {
	return "stage: " + e.Stage + " may not be re-entered within one run"
}
