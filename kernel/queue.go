package kernel

import "sync/atomic"

const maxWaiters = 4

// Queue is a fixed-capacity FIFO shared between runtimes.
//
// It is multi-producer and meant for a single consumer. All state is guarded
// by a SpinLock so producers and the consumer may live on different cores.
// The slot array is allocated once by NewQueue and never resized.
type Queue[T any] struct {
	_ [0]func() // prevent accidental copying.

	lock  SpinLock
	slots []T
	head  int
	n     int

	sendWait waitSet
	recvWait waitSet

	stalls atomic.Uint32
}

// NewQueue allocates a queue with the given number of slots.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity <= 0 {
		panic("kernel: queue capacity must be positive")
	}
	return &Queue[T]{slots: make([]T, capacity)}
}

// Cap returns the number of slots.
func (q *Queue[T]) Cap() int { return len(q.slots) }

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.lock.Lock()
	n := q.n
	q.lock.Unlock()
	return n
}

// Stalls returns how many sends found the queue full and suspended.
func (q *Queue[T]) Stalls() uint32 { return q.stalls.Load() }

// TrySend enqueues v, returning false if the queue is full.
func (q *Queue[T]) TrySend(v T) bool {
	q.lock.Lock()
	ok := q.push(v)
	var wake waitSet
	if ok {
		wake = q.recvWait.take()
	}
	q.lock.Unlock()

	wake.wake()
	return ok
}

// Send enqueues v and returns true, or suspends the calling task and returns
// false when the queue is full. A suspended caller must return from Step and
// call Send again with the same value when it is next stepped.
func (q *Queue[T]) Send(ctx *Context, v T) bool {
	q.lock.Lock()
	ok := q.push(v)
	var wake waitSet
	registered := true
	if ok {
		wake = q.recvWait.take()
	} else {
		registered = q.sendWait.add(ctx.rt)
		q.stalls.Add(1)
	}
	q.lock.Unlock()

	wake.wake()
	if !ok {
		ctx.wait()
		if !registered {
			ctx.rt.Wake()
		}
	}
	return ok
}

// TryRecv dequeues one item, returning false if the queue is empty.
func (q *Queue[T]) TryRecv() (T, bool) {
	q.lock.Lock()
	v, ok := q.pop()
	var wake waitSet
	if ok {
		wake = q.sendWait.take()
	}
	q.lock.Unlock()

	wake.wake()
	return v, ok
}

// Recv dequeues one item, or suspends the calling task and returns false when
// the queue is empty.
func (q *Queue[T]) Recv(ctx *Context) (T, bool) {
	q.lock.Lock()
	v, ok := q.pop()
	var wake waitSet
	registered := true
	if ok {
		wake = q.sendWait.take()
	} else {
		registered = q.recvWait.add(ctx.rt)
	}
	q.lock.Unlock()

	wake.wake()
	if !ok {
		ctx.wait()
		if !registered {
			ctx.rt.Wake()
		}
	}
	return v, ok
}

func (q *Queue[T]) push(v T) bool {
	if q.n >= len(q.slots) {
		return false
	}
	q.slots[(q.head+q.n)%len(q.slots)] = v
	q.n++
	return true
}

func (q *Queue[T]) pop() (T, bool) {
	var zero T
	if q.n == 0 {
		return zero, false
	}
	v := q.slots[q.head]
	q.slots[q.head] = zero
	q.head = (q.head + 1) % len(q.slots)
	q.n--
	return v, true
}

// waitSet is a bounded set of runtimes to wake. Registration happens under
// the queue lock, together with the check that made the caller wait.
type waitSet struct {
	rts [maxWaiters]*Runtime
	n   int
}

func (w *waitSet) add(rt *Runtime) bool {
	for i := 0; i < w.n; i++ {
		if w.rts[i] == rt {
			return true
		}
	}
	if w.n >= maxWaiters {
		return false
	}
	w.rts[w.n] = rt
	w.n++
	return true
}

func (w *waitSet) take() waitSet {
	out := *w
	*w = waitSet{}
	return out
}

func (w *waitSet) wake() {
	for i := 0; i < w.n; i++ {
		w.rts[i].Wake()
	}
}
