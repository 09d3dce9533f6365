package kernel

import "sync/atomic"

const (
	pendingIdle uint32 = iota
	pendingRunning
	pendingDone
)

// Pending runs one blocking peripheral call off the runtime goroutine.
//
// The owning task keeps a Pending value and calls Poll on every step until it
// reports done. While the call is in flight the task waits and sibling tasks
// on the same runtime keep running.
type Pending[T any] struct {
	state atomic.Uint32
	val   T
	err   error
}

// Poll starts fn on the first call and returns its result once it finished.
// Until then it suspends the task and returns done=false. fn is only used by
// the call that starts the operation.
func (p *Pending[T]) Poll(ctx *Context, fn func() (T, error)) (val T, done bool, err error) {
	switch p.state.Load() {
	case pendingIdle:
		p.state.Store(pendingRunning)
		rt := ctx.rt
		go func() {
			v, err := fn()
			p.val, p.err = v, err
			p.state.Store(pendingDone)
			rt.Wake()
		}()
		ctx.wait()
		return val, false, nil
	case pendingRunning:
		ctx.wait()
		return val, false, nil
	default:
		val, err = p.val, p.err
		var zero T
		p.val, p.err = zero, nil
		p.state.Store(pendingIdle)
		return val, true, err
	}
}

// Busy reports whether an operation is in flight.
func (p *Pending[T]) Busy() bool {
	return p.state.Load() == pendingRunning
}
