// Package action implements the Action Executor: the per-stage
// bounded-concurrency driver that prepares actions, pins connections
// from a pool, executes them under a persona's dispatch policy,
// captures timings, runs checks, and returns results.
//
// Protocol internals are out of scope per the specification; this
// package defines the Action/Result data model and the ActionClient
// boundary, and ships a small set of reference ActionClient adapters
// (HTTP, HTTP/3, gRPC, WebSocket, UDP, and an in-memory fake used by
// tests) grounded in the corpus's httpclient, grpc, and resilience
// packages.
package action
