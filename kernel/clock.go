package kernel

import (
	"sync/atomic"
	"time"
)

// Clock is a monotonic time source measured from boot.
type Clock interface {
	Now() time.Duration
}

type monotonicClock struct {
	start time.Time
}

// NewMonotonicClock returns a clock that starts at zero now.
func NewMonotonicClock() Clock {
	return monotonicClock{start: time.Now()}
}

func (c monotonicClock) Now() time.Duration { return time.Since(c.start) }

// ManualClock only moves when advanced. It is used by tests and simulations
// that drive runtimes with Poll.
type ManualClock struct {
	now atomic.Int64
}

func (c *ManualClock) Now() time.Duration { return time.Duration(c.now.Load()) }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.now.Add(int64(d))
}
