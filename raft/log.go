package raft

import (
	"fmt"
	"sort"
	"sync"
)

// Log is a single-writer-many-reader append-only queue of LogEntry
// values, ordered by EntryID. The leader is the sole writer of its own
// log; followers serialize appends received from append_entries.
type Log struct {
	mu      sync.RWMutex
	entries []LogEntry
	seen    map[uint64]Term
}

// NewLog returns an empty Log.
func NewLog() *Log {
	return &Log{seen: make(map[uint64]Term)}
}

// Append adds entries assigned by the caller (the leader), in entry-id
// order. The leader never overwrites its own committed entries.
func (l *Log) Append(entries ...LogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range entries {
		if _, dup := l.seen[e.EntryID]; dup {
			continue
		}
		l.seen[e.EntryID] = e.Term
		l.entries = append(l.entries, e)
	}
	sort.Slice(l.entries, func(i, j int) bool { return l.entries[i].EntryID < l.entries[j].EntryID })
}

// Update appends a batch of entries received from a leader's
// append_entries call. Entries are sorted by EntryID (the Snowflake id
// is time-sortable, so this recovers send order) before they are
// appended; no contiguity check is made against the entries already
// held. A duplicate EntryID with a different Term is rejected with a
// "duplicate entry" error; a duplicate with the same Term is a harmless
// retransmit and is skipped.
func (l *Log) Update(entries []LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	sorted := append([]LogEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].EntryID < sorted[j].EntryID })

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range sorted {
		if prevTerm, dup := l.seen[e.EntryID]; dup {
			if prevTerm != e.Term {
				return fmt.Errorf("duplicate entry")
			}
			continue
		}
		l.seen[e.EntryID] = e.Term
		l.entries = append(l.entries, e)
	}
	sort.Slice(l.entries, func(i, j int) bool { return l.entries[i].EntryID < l.entries[j].EntryID })
	return nil
}

// Entries returns a snapshot of the log in EntryID order.
func (l *Log) Entries() []LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries currently held.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// IsPrefixOf reports whether l's entries are a prefix of other's
// entries (by EntryID, in order) — the RAFT log-prefix safety property
// checked between any two followers' committed logs.
func (l *Log) IsPrefixOf(other *Log) bool {
	a := l.Entries()
	b := other.Entries()
	if len(a) > len(b) {
		return false
	}
	for i := range a {
		if a[i].EntryID != b[i].EntryID || a[i].Term != b[i].Term {
			return false
		}
	}
	return true
}
