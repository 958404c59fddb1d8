package graphctx

import "sync"

// Context is a process-local, per-graph key/value store. Stages write to
// it on completion and read from it at the start of a later stage.
type Context struct {
	mu   sync.RWMutex
	data map[string]any

	// written tracks, per key, which (generationID, executionStageID)
	// last won a merge so MergeFrom can apply the deterministic
	// smaller-wins rule across repeated merges.
	written map[string]writer
}

type writer struct {
	generationID     int
	executionStageID int
}

// New creates an empty Context.
func New() *Context {
	return &Context{
		data:    make(map[string]any),
		written: make(map[string]writer),
	}
}

// Get reads a value. Returns false if the key was never written.
func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[key]
	return v, ok
}

// Set writes a value unconditionally. Used by a stage writing its own,
// not-yet-merged context.
func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

// Snapshot returns a shallow copy of all current key/value pairs.
func (c *Context) Snapshot() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]any, len(c.data))
	for k, v := range c.data {
		out[k] = v
	}
	return out
}

// Conflict describes a key that two concurrent writers in the same
// generation both attempted to set, and which write won.
type Conflict struct {
	Key            string
	WinningStageID int
	LosingStageID  int
}

// MergeFrom applies values produced by a stage finishing at
// (generationID, executionStageID) into the shared context. When two
// writers in the same generation write the same key, the writer with
// the smaller executionStageID wins deterministically, per the
// generation_id-then-execution_stage_id tie-break rule; conflicts are
// returned so the caller can log them.
func (c *Context) MergeFrom(generationID, executionStageID int, values map[string]any) []Conflict {
	c.mu.Lock()
	defer c.mu.Unlock()

	var conflicts []Conflict
	for k, v := range values {
		prev, hasPrev := c.written[k]
		if !hasPrev {
			c.data[k] = v
			c.written[k] = writer{generationID, executionStageID}
			continue
		}

		switch {
		case generationID < prev.generationID:
			c.data[k] = v
			c.written[k] = writer{generationID, executionStageID}
		case generationID > prev.generationID:
			conflicts = append(conflicts, Conflict{Key: k, WinningStageID: prev.executionStageID, LosingStageID: executionStageID})
		case executionStageID < prev.executionStageID:
			c.data[k] = v
			c.written[k] = writer{generationID, executionStageID}
			conflicts = append(conflicts, Conflict{Key: k, WinningStageID: executionStageID, LosingStageID: prev.executionStageID})
		default:
			conflicts = append(conflicts, Conflict{Key: k, WinningStageID: prev.executionStageID, LosingStageID: executionStageID})
		}
	}
	return conflicts
}
