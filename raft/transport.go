package raft

import "context"

// Transport is the RPC boundary a Controller uses to reach other
// members: RequestVote over the UDP control channel, AppendEntries over
// the TCP log channel. Concrete implementations live in transport_net.go
// (real net.PacketConn/net.Conn) and transport_fake.go (in-memory, for
// tests and single-process simulations of a cluster).
type Transport interface {
	// RequestVote sends a vote request to to and returns its response.
	RequestVote(ctx context.Context, to Member, req *Message) (*Message, error)
	// AppendEntries sends a log-replication batch to to and returns its
	// response.
	AppendEntries(ctx context.Context, to Member, req *Message) (*Message, error)
	// Close releases any transport resources (listening sockets).
	Close() error
}

// Handler is implemented by Controller to answer inbound RPCs. It is
// kept separate from Transport so a real network transport can dispatch
// inbound bytes to it without importing Controller's concrete type.
type Handler interface {
	HandleVoteRequest(ctx context.Context, req *Message) *Message
	HandleAppendEntries(ctx context.Context, req *Message) *Message
}
