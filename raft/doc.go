// Package raft implements the embedded distributed coordinator used
// when graph execution is sharded across nodes: leader election, log
// replication, and membership monitoring over a gossip-style discovery
// view.
//
// It is newly authored in the teacher's idiom (no pack repo carries a
// RAFT implementation) but follows the teacher's structural
// conventions throughout: discovery.Discovery for membership,
// resilience.Retry for vote-request retry, logger.Logger for election
// and replication logging, and an observability span around each
// election. Nothing in this package implements component.Component.
//
// Semantics are grounded in hedra/distributed/raft/raft_controller.py,
// translated into explicit Go state machines (ElectionState, NodeState)
// in place of the Python original's ad hoc instance attributes.
package raft
