package action

import (
	"context"
	"fmt"
)

// Pool is a single-owner-per-stage connection pool. Its size always
// equals the admission semaphore size, so Pop never blocks waiting on a
// connection — the semaphore is the sole admission gate.
type Pool struct {
	client Client
	action *Action

	conns chan Conn
	size  int
}

// NewPool pre-dials size connections for one prepared action.
func NewPool(ctx context.Context, client Client, a *Action, size int) (*Pool, error) {
	p := &Pool{client: client, action: a, conns: make(chan Conn, size), size: size}
	for i := 0; i < size; i++ {
		c, err := client.Dial(ctx, a)
		if err != nil {
			p.closeAll()
			return nil, fmt.Errorf("action: pool dial %d/%d: %w", i+1, size, err)
		}
		p.conns <- c
	}
	return p, nil
}

// Pop removes a connection from the pool. Callers must hold an
// admission-semaphore slot before calling Pop, which guarantees a
// connection is always immediately available.
func (p *Pool) Pop(ctx context.Context) (Conn, error) {
	select {
	case c := <-p.conns:
		return c, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Return puts a healthy connection back in the pool.
func (p *Pool) Return(c Conn) {
	p.conns <- c
}

// Replace discards a poisoned connection and dials a fresh one in its
// place, preserving the pool's configured size. A connection used by a
// failed action is never returned to the pool unreset.
func (p *Pool) Replace(ctx context.Context, poisoned Conn) error {
	_ = poisoned.Close()
	fresh, err := p.client.Dial(ctx, p.action)
	if err != nil {
		return fmt.Errorf("action: pool replace: %w", err)
	}
	p.conns <- fresh
	return nil
}

// Size returns the configured (and invariant) pool size.
func (p *Pool) Size() int { return p.size }

func (p *Pool) closeAll() {
	close(p.conns)
	for c := range p.conns {
		_ = c.Close()
	}
}

// Close tears down every connection currently in the pool. Connections
// checked out at call time are not waited for.
func (p *Pool) Close() {
	for {
		select {
		case c := <-p.conns:
			_ = c.Close()
		default:
			return
		}
	}
}
