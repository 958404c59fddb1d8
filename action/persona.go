package action

import (
	"sync/atomic"
	"time"
)

// Persona governs action dispatch policy (rate, concurrency, ordering)
// within an Execute stage.
type Persona interface {
	// Concurrency is the size of the admission semaphore (and pool).
	Concurrency() int
	// NextDelay returns how long to wait before admitting the next
	// action; constant-rate/ramp personas use it to shape throughput.
	NextDelay() time.Duration
}

// ConstantRate admits actions at a fixed concurrency with no
// inter-admission delay beyond semaphore availability.
type ConstantRate struct {
	Conc int
}

func (p *ConstantRate) Concurrency() int        { return p.Conc }
func (p *ConstantRate) NextDelay() time.Duration { return 0 }

// Ramp linearly increases concurrency from Start to End over Duration.
// NextDelay is always zero.
type Ramp struct {
	Start, End int
	Duration   time.Duration

	begun   int64 // unix nano, set on first Concurrency() call
	started int32
}

func (p *Ramp) Concurrency() int {
	now := time.Now().UnixNano()
	if atomic.CompareAndSwapInt32(&p.started, 0, 1) {
		atomic.StoreInt64(&p.begun, now)
	}
	begun := atomic.LoadInt64(&p.begun)
	if p.Duration <= 0 {
		return p.End
	}
	elapsed := time.Duration(now - begun)
	frac := float64(elapsed) / float64(p.Duration)
	if frac > 1 {
		frac = 1
	}
	if frac < 0 {
		frac = 0
	}
	span := p.End - p.Start
	return p.Start + int(float64(span)*frac)
}

func (p *Ramp) NextDelay() time.Duration { return 0 }

// Sequence runs actions one at a time, in declaration order.
type Sequence struct{}

func (p *Sequence) Concurrency() int        { return 1 }
func (p *Sequence) NextDelay() time.Duration { return 0 }

// Weighted admits actions at a fixed concurrency and spaces admissions
// by the fixed Interval. Action weights are not consulted: every
// admission waits the same Interval.
type Weighted struct {
	Conc     int
	Interval time.Duration
}

func (p *Weighted) Concurrency() int        { return p.Conc }
func (p *Weighted) NextDelay() time.Duration { return p.Interval }
