// Package runner implements the Transition Runner: it drives the
// assembled graph generation by generation, dispatching each
// generation's transitions concurrently over a bounded worker pool
// (the Go-idiomatic stand-in for the cooperative-scheduling model,
// grounded in dag.Engine's executeLevel pattern), merging stage
// contexts at generation boundaries, and routing failures to the Error
// path without pre-empting already-running sibling transitions.
package runner
