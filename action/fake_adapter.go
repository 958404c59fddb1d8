package action

import (
	"context"
	"sync"
	"time"
)

// FakeClient is an in-memory ActionClient used by tests (linear graph,
// connection reset). Handler is invoked per execution; after FailNext(n),
// that many invocations in a row fail before succeeding, letting tests
// exercise the pool's non-poisoning guarantee.
type FakeClient struct {
	Handler func(a *Action) (*Result, error)

	mu       sync.Mutex
	failLeft int
}

// NewFakeClient returns a client whose Handler always succeeds with a
// 200 response carrying body.
func NewFakeClient(body []byte) *FakeClient {
	return &FakeClient{
		Handler: func(a *Action) (*Result, error) {
			return &Result{ActionName: a.Name, Status: 200, Body: body}, nil
		},
	}
}

// FailNext makes the next n executions return an error before Handler
// runs, to drive the "connection reset on failure" scenario.
func (c *FakeClient) FailNext(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failLeft = n
}

func (c *FakeClient) Prepare(ctx context.Context, a *Action) (*Action, error) {
	return a.Clone(), nil
}

type fakeConn struct{ poisoned bool }

func (c *fakeConn) Reset(ctx context.Context) error { c.poisoned = false; return nil }
func (c *fakeConn) Close() error                     { return nil }

func (c *FakeClient) Dial(ctx context.Context, a *Action) (Conn, error) {
	return &fakeConn{}, nil
}

func (c *FakeClient) ExecutePrepared(ctx context.Context, a *Action, conn Conn) (*Result, error) {
	start := time.Now()

	c.mu.Lock()
	shouldFail := c.failLeft > 0
	if shouldFail {
		c.failLeft--
	}
	c.mu.Unlock()

	connectEnd := time.Now()
	writeEnd := connectEnd

	if shouldFail {
		if fc, ok := conn.(*fakeConn); ok {
			fc.poisoned = true
		}
		readEnd := time.Now()
		return &Result{
			ActionName: a.Name,
			Start:      &start,
			ConnectEnd: &connectEnd,
			WriteEnd:   &writeEnd,
			ReadEnd:    &readEnd,
			Err:        errExecuteFailed,
		}, errExecuteFailed
	}

	r, err := c.Handler(a)
	if r == nil {
		r = &Result{ActionName: a.Name}
	}
	r.Start = &start
	r.ConnectEnd = &connectEnd
	r.WriteEnd = &writeEnd
	readEnd := time.Now()
	r.ReadEnd = &readEnd
	return r, err
}

func (c *FakeClient) Close() error { return nil }

var errExecuteFailed = fakeError("action: simulated execution failure")

type fakeError string

func (e fakeError) Error() string { return string(e) }
