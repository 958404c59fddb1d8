package action

import (
	"context"
	"sync"
	"time"

	graphErrors "github.com/mercurysync/graphrunner/errors"
)

// Executor drives a prepared set of actions under a Persona until the
// stage's time budget elapses, yielding a stream of Results.
type Executor struct {
	Client  Client
	Persona Persona

	// TotalTime bounds the Execute stage; 0 means unbounded (admission
	// stops only when Run's context is canceled).
	TotalTime time.Duration
	// GracefulStop is how long Run waits for in-flight actions to
	// finish after TotalTime expires before returning.
	GracefulStop time.Duration

	pools map[string]*Pool
	mu    sync.Mutex
}

// Prepare resolves and registers one action by name: DNS/socket
// resolution, SSL context attachment, user setup, and pool allocation.
// Failures here are fatal to the stage.
func (e *Executor) Prepare(ctx context.Context, a *Action) error {
	prepared, err := e.Client.Prepare(ctx, a)
	if err != nil {
		return graphErrors.PrepareError(a.Name, err)
	}

	pool, err := NewPool(ctx, e.Client, prepared, e.Persona.Concurrency())
	if err != nil {
		return graphErrors.PrepareError(a.Name, err)
	}

	e.mu.Lock()
	if e.pools == nil {
		e.pools = make(map[string]*Pool)
	}
	e.pools[a.Name] = pool
	e.mu.Unlock()

	return nil
}

// Run executes one action repeatedly under the persona's admission
// policy until ctx is canceled or TotalTime elapses, sending each
// Result to out. Run closes out before returning.
func (e *Executor) Run(ctx context.Context, a *Action, out chan<- *Result) {
	defer close(out)

	e.mu.Lock()
	pool := e.pools[a.Name]
	e.mu.Unlock()
	if pool == nil {
		return
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if e.TotalTime > 0 {
		runCtx, cancel = context.WithTimeout(ctx, e.TotalTime)
		defer cancel()
	}

	sem := make(chan struct{}, e.Persona.Concurrency())
	var wg sync.WaitGroup

admit:
	for {
		select {
		case <-runCtx.Done():
			break admit
		default:
		}

		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			r := e.executeOne(ctx, a, pool)
			select {
			case out <- r:
			case <-ctx.Done():
			}
		}()

		if d := e.Persona.NextDelay(); d > 0 {
			select {
			case <-time.After(d):
			case <-runCtx.Done():
				break admit
			}
		}
	}

	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()

	if e.GracefulStop > 0 {
		select {
		case <-waitDone:
		case <-time.After(e.GracefulStop):
		}
	} else {
		<-waitDone
	}
}

// executeOne runs the 9-step per-action pipeline described by the
// specification: allocate+wait_start, acquire a pooled connection,
// re-run Before/setup, stamp start/connect/write/read, return-or-replace
// the connection, then After and Check hooks.
func (e *Executor) executeOne(ctx context.Context, a *Action, pool *Pool) *Result {
	r := &Result{ActionName: a.Name}
	now := time.Now()
	r.WaitStart = &now

	conn, err := pool.Pop(ctx)
	if err != nil {
		r.Err = graphErrors.ActionError(a.Name, err)
		return r
	}

	current := a
	if len(a.Before) > 0 {
		mutated := a.Clone()
		for _, h := range a.Before {
			if err := h(ctx, mutated, r); err != nil {
				r.Err = graphErrors.ActionError(a.Name, err)
				_ = pool.Replace(ctx, conn)
				return r
			}
		}
		if reprepared, err := e.Client.Prepare(ctx, mutated); err == nil {
			current = reprepared
		} else {
			current = mutated
		}
	}

	start := time.Now()
	r.Start = &start

	result, err := e.Client.ExecutePrepared(ctx, current, conn)
	if err != nil {
		end := time.Now()
		if result == nil {
			result = &Result{ActionName: a.Name}
		}
		result.ReadEnd = &end
		result.Err = graphErrors.ActionError(a.Name, err)

		if replaceErr := pool.Replace(ctx, conn); replaceErr != nil && result.Err == nil {
			result.Err = replaceErr
		}
		return mergeTimestamps(r, result)
	}

	pool.Return(conn)
	merged := mergeTimestamps(r, result)

	for _, h := range current.After {
		if err := h(ctx, current, merged); err != nil {
			merged.Err = graphErrors.ActionError(a.Name, err)
		}
	}
	for _, h := range current.Checks {
		if err := h(ctx, current, merged); err != nil {
			merged.Err = graphErrors.CheckError(a.Name, err.Error())
		}
	}

	return merged
}

func mergeTimestamps(base, result *Result) *Result {
	if result.WaitStart == nil {
		result.WaitStart = base.WaitStart
	}
	if result.Start == nil {
		result.Start = base.Start
	}
	return result
}

// Close releases every pool the executor has prepared.
func (e *Executor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range e.pools {
		p.Close()
	}
}
