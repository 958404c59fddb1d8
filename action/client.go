package action

import "context"

// Conn is an opaque, pool-managed connection handle. Protocol adapters
// decide what it actually wraps (net.Conn, *http.Client, *grpc.ClientConn, ...).
type Conn interface {
	// Reset tears down and replaces the underlying transport, used when
	// a connection is poisoned by a failed action and must never be
	// returned to the pool in its failed state.
	Reset(ctx context.Context) error
	// Close releases the connection permanently.
	Close() error
}

// Client is the external protocol-adapter boundary. Protocol internals
// (HTTP/2 framing, TLS, DNS) are out of scope for this repository;
// callers supply a Client implementation per protocol.
type Client interface {
	// Prepare resolves the action's target, attaches a connection
	// config, and runs any user-declared setup. It must be idempotent:
	// callers re-run it after a Before hook mutates the action.
	Prepare(ctx context.Context, a *Action) (*Action, error)

	// Dial acquires a fresh Conn for the pool.
	Dial(ctx context.Context, a *Action) (Conn, error)

	// ExecutePrepared runs one already-prepared action over the given
	// connection and returns its Result. Timestamps other than
	// WaitStart/Start (set by the executor before calling this) are the
	// adapter's responsibility.
	ExecutePrepared(ctx context.Context, a *Action, conn Conn) (*Result, error)

	Close() error
}
