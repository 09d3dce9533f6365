package kernel

import (
	"runtime"
	"sync/atomic"
)

// SpinLock is a mutual-exclusion lock that is safe to take from either core.
//
// Critical sections must be short and must not suspend.
type SpinLock struct {
	state atomic.Uint32
}

// Lock spins until the lock is acquired, yielding between attempts.
func (l *SpinLock) Lock() {
	for !l.state.CompareAndSwap(0, 1) {
		runtime.Gosched()
	}
}

// TryLock acquires the lock without spinning.
func (l *SpinLock) TryLock() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Unlock releases the lock.
func (l *SpinLock) Unlock() {
	l.state.Store(0)
}
