// Package stage defines the Stage State Machine: the closed set of
// stage kinds and states, and the Stage type the Graph Assembler and
// Transition Runner operate on.
package stage
