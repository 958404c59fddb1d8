package raft

import (
	"context"
	"fmt"
	"sync"
)

// FakeTransport is an in-memory Transport that dispatches directly to
// registered Handlers, grounded in action/fake_adapter.go's in-memory
// ActionClient: it lets raft's own tests (and the spec.md §8 RAFT
// scenarios) simulate a multi-node cluster in a single process without
// opening real sockets.
type FakeTransport struct {
	mu       sync.RWMutex
	handlers map[Member]Handler

	// Partitioned members never receive messages; their RPCs time out
	// immediately with an error, simulating a network partition or a
	// killed node for election/failure tests.
	partitioned map[Member]bool
}

// NewFakeTransport returns an empty FakeTransport. Call Register for
// every simulated node before starting elections.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{
		handlers:    make(map[Member]Handler),
		partitioned: make(map[Member]bool),
	}
}

// Register associates a Member address with the Handler that answers
// RPCs addressed to it.
func (t *FakeTransport) Register(mem Member, h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[mem] = h
}

// Partition marks a member as unreachable (simulating a crash or
// network split) until Heal is called.
func (t *FakeTransport) Partition(mem Member) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.partitioned[mem] = true
}

// Heal clears a previously partitioned member.
func (t *FakeTransport) Heal(mem Member) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.partitioned, mem)
}

func (t *FakeTransport) handlerFor(mem Member) (Handler, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.partitioned[mem] {
		return nil, fmt.Errorf("raft: member %s unreachable", mem)
	}
	h, ok := t.handlers[mem]
	if !ok {
		return nil, fmt.Errorf("raft: no handler registered for %s", mem)
	}
	return h, nil
}

// RequestVote dispatches directly to the target's HandleVoteRequest.
func (t *FakeTransport) RequestVote(ctx context.Context, to Member, req *Message) (*Message, error) {
	h, err := t.handlerFor(to)
	if err != nil {
		return nil, err
	}
	return h.HandleVoteRequest(ctx, req), nil
}

// AppendEntries dispatches directly to the target's HandleAppendEntries.
func (t *FakeTransport) AppendEntries(ctx context.Context, to Member, req *Message) (*Message, error) {
	h, err := t.handlerFor(to)
	if err != nil {
		return nil, err
	}
	return h.HandleAppendEntries(ctx, req), nil
}

// Close is a no-op for the in-memory transport.
func (t *FakeTransport) Close() error { return nil }

var _ Transport = (*FakeTransport)(nil)
