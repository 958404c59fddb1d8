// Package event implements the Event Graph: a per-stage dependency
// graph over hooks. Edges are derived from parameter-name matching
// between a hook's declared Params and its predecessors' Produces sets.
// The graph runs in topological generations, with events in the same
// generation dispatched concurrently and failures captured per event
// rather than propagated as exceptions.
//
// This replaces the dynamic attribute-forwarding pattern an event
// object used in the original implementation to transparently proxy to
// its target hook: here an event Node holds an explicit *hook.Hook
// field and forwards only through Name/Params/Produces/Invoke — no
// hidden delegation.
package event
