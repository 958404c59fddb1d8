// Package graph implements the Graph Assembler: it ingests user-declared
// stage definitions, rejects cyclic or isolated graphs, synthesizes the
// implicit Idle/Validate/Analyze/Submit/Complete stages, assigns
// generations via Kahn's algorithm, and binds a transition function to
// every edge from a fixed transition table.
//
// Stages register themselves explicitly through Builder.AddStage at
// declaration time; there is no reflection-based scanning for Stage
// subclasses, and no package-level stage registry — each Builder is
// constructed fresh and holds its own stage set.
package graph
