// Package graphctx provides the per-graph key/value store (SimpleContext)
// written by stages and read by downstream stages, and the deterministic
// merge rule the Transition Runner applies at generation boundaries.
package graphctx
