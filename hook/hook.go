package hook

import "context"

// Kind is a closed enumeration of hook kinds. A hook may carry exactly
// one kind.
type Kind string

const (
	Action    Kind = "action"
	Task      Kind = "task"
	Check     Kind = "check"
	Before    Kind = "before"
	After     Kind = "after"
	Event     Kind = "event"
	Condition Kind = "condition"
	Transform Kind = "transform"
	Context   Kind = "context"
	Setup     Kind = "setup"
	Teardown  Kind = "teardown"
	Load      Kind = "load"
	Save      Kind = "save"
	Channel   Kind = "channel"
	Metric    Kind = "metric"
)

// Func is the callable a Hook wraps. It receives the union of outputs
// produced by its predecessors in the event graph, filtered to the
// hook's declared Params, and returns the values it produces (named by
// its declared Produces set).
type Func func(ctx context.Context, args map[string]any) (map[string]any, error)

// Hook is a user-declared callable attached to exactly one stage.
type Hook struct {
	Name      string
	ShortName string
	StageName string
	Kind      Kind

	// Params lists the argument names this hook reads.
	Params []string
	// Produces lists the result names this hook writes.
	Produces []string

	// Precondition, when set, must return true for the hook to run.
	// Used by Condition hooks and by hooks with an attached guard.
	Precondition func(args map[string]any) bool

	// Order breaks ties deterministically when multiple hooks could
	// run concurrently or when dependency edges tie.
	Order int
	// Weight is the hook's declared weight. It is stored with the hook;
	// neither the event graph nor the action personas read it.
	Weight int
	// Skip marks a hook to be excluded from assembly without deleting
	// its registration.
	Skip bool

	Metadata map[string]any

	Call Func
}

// Invoke calls the hook's function, honoring a false Precondition by
// returning (nil, nil) rather than invoking Call — the event graph
// treats that as a no-op rather than a failure.
func (h *Hook) Invoke(ctx context.Context, args map[string]any) (map[string]any, error) {
	if h.Precondition != nil && !h.Precondition(args) {
		return nil, nil
	}
	if h.Call == nil {
		return nil, nil
	}
	return h.Call(ctx, args)
}
