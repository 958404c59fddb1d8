package action

import (
	"net/http"
	"time"
)

// Result carries the monotonic timestamps, response metadata, and
// derived timings for one action invocation.
type Result struct {
	ActionName string

	WaitStart  *time.Time
	Start      *time.Time
	ConnectEnd *time.Time
	WriteEnd   *time.Time
	ReadEnd    *time.Time

	Status  int
	Headers http.Header
	Body    []byte

	Err error
}

// Waiting is the duration between WaitStart and Start, or nil if either
// stamp is missing.
func (r *Result) Waiting() *time.Duration { return diff(r.WaitStart, r.Start) }

// Connecting is the duration between Start and ConnectEnd.
func (r *Result) Connecting() *time.Duration { return diff(r.Start, r.ConnectEnd) }

// Writing is the duration between ConnectEnd and WriteEnd.
func (r *Result) Writing() *time.Duration { return diff(r.ConnectEnd, r.WriteEnd) }

// Reading is the duration between WriteEnd and ReadEnd.
func (r *Result) Reading() *time.Duration { return diff(r.WriteEnd, r.ReadEnd) }

// Total is the duration between WaitStart and ReadEnd.
func (r *Result) Total() *time.Duration { return diff(r.WaitStart, r.ReadEnd) }

func diff(start, end *time.Time) *time.Duration {
	if start == nil || end == nil {
		return nil
	}
	d := end.Sub(*start)
	if d < 0 {
		d = 0
	}
	return &d
}
