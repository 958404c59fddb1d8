package raft

import (
	"sync"
	"sync/atomic"
	"time"
)

// snowflakeEpoch anchors the timestamp component so generated ids stay
// well inside the 41-bit window for decades.
var snowflakeEpoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

const (
	snowflakeTimeBits = 41
	snowflakeNodeBits = 10
	snowflakeSeqBits  = 12

	snowflakeNodeMax = -1 ^ (-1 << snowflakeNodeBits)
	snowflakeSeqMax  = -1 ^ (-1 << snowflakeSeqBits)
)

// Snowflake generates time-sortable 64-bit ids for RAFT log entries, one
// per node. No pack repo implements a Snowflake generator, so this is a
// small stdlib helper in util's style (time + sync/atomic sequence
// counter) rather than a third-party dependency — see DESIGN.md.
type Snowflake struct {
	nodeID int64

	mu       sync.Mutex
	lastTime int64
	seq      int64
}

// NewSnowflake constructs a generator for the given node id, masked to
// the available node-bits range.
func NewSnowflake(nodeID int64) *Snowflake {
	return &Snowflake{nodeID: nodeID & snowflakeNodeMax}
}

// Generate returns the next id, guaranteed strictly increasing for this
// generator even across identical-millisecond calls.
func (s *Snowflake) Generate() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Since(snowflakeEpoch).Milliseconds()
	if now == s.lastTime {
		s.seq = (s.seq + 1) & snowflakeSeqMax
		if s.seq == 0 {
			for now <= s.lastTime {
				now = time.Since(snowflakeEpoch).Milliseconds()
			}
		}
	} else {
		s.seq = 0
	}
	s.lastTime = now

	id := (now << (snowflakeNodeBits + snowflakeSeqBits)) |
		(s.nodeID << snowflakeSeqBits) |
		s.seq
	return uint64(id)
}

// instanceSeq disambiguates node ids when a caller doesn't supply one
// (e.g. tests spinning up several in-process controllers).
var instanceSeq int64

// NextInstanceID returns a process-unique small integer suitable as a
// Snowflake node id when no stable host identity is available.
func NextInstanceID() int64 {
	return atomic.AddInt64(&instanceSeq, 1)
}
