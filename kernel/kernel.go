package kernel

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// MaxTasks is the size of the task pool of one runtime.
const MaxTasks = 8

// idleWait bounds how long Run parks when no timer is armed.
const idleWait = time.Hour

var (
	ErrNilTask       = errors.New("kernel: nil task")
	ErrPoolExhausted = errors.New("kernel: task pool exhausted")
)

type TaskID uint8

// Task is a cooperative unit of execution.
//
// Step runs until the task reaches a suspension point and then returns.
// A Step that calls no suspension method on the Context stays ready and is
// stepped again on the next round.
type Task interface {
	Step(*Context)
}

// TaskState is the scheduling state of a task.
type TaskState uint8

const (
	TaskReady TaskState = iota
	TaskSleeping
	TaskWaiting
	TaskParked
	TaskDone
	TaskHalted
)

func (s TaskState) String() string {
	switch s {
	case TaskReady:
		return "ready"
	case TaskSleeping:
		return "sleeping"
	case TaskWaiting:
		return "waiting"
	case TaskParked:
		return "parked"
	case TaskDone:
		return "done"
	case TaskHalted:
		return "halted"
	default:
		return "unknown"
	}
}

// HaltFunc is called on the runtime's goroutine when a task halts.
type HaltFunc func(rt *Runtime, id TaskID, name string, err error)

// TaskInfo is a snapshot of one task slot.
type TaskInfo struct {
	ID    TaskID
	Name  string
	State TaskState
	Err   error
}

type taskSlot struct {
	name  string
	task  Task
	state TaskState
	due   time.Duration
	err   error
}

// Runtime is a single-threaded cooperative scheduler bound to one core.
//
// Spawn, Poll, Run and the inspection methods must be called from the
// goroutine that drives the runtime. Wake is the only method that is safe to
// call from anywhere.
type Runtime struct {
	name  string
	clock Clock

	tasks [MaxTasks]taskSlot
	count TaskID
	rr    TaskID

	onHalt HaltFunc

	woken  atomic.Bool
	wakeCh chan struct{}

	steps uint64
}

// New creates a runtime. A nil clock selects the monotonic wall clock.
func New(name string, clock Clock) *Runtime {
	if clock == nil {
		clock = NewMonotonicClock()
	}
	return &Runtime{
		name:   name,
		clock:  clock,
		wakeCh: make(chan struct{}, 1),
	}
}

// Name returns the runtime name (for example "core0").
func (r *Runtime) Name() string { return r.name }

// Now returns the runtime clock.
func (r *Runtime) Now() time.Duration { return r.clock.Now() }

// OnHalt installs the halt hook.
func (r *Runtime) OnHalt(fn HaltFunc) { r.onHalt = fn }

// Spawn registers a task from the fixed pool and returns its ID.
func (r *Runtime) Spawn(name string, t Task) (TaskID, error) {
	if t == nil {
		return 0, ErrNilTask
	}
	if int(r.count) >= MaxTasks {
		return 0, fmt.Errorf("%w: %s: %s", ErrPoolExhausted, r.name, name)
	}
	id := r.count
	r.count++
	r.tasks[id] = taskSlot{name: name, task: t, state: TaskReady}
	return id, nil
}

// Wake reports that a condition some task may be waiting on has changed.
//
// It is safe to call from any core or goroutine.
func (r *Runtime) Wake() {
	r.woken.Store(true)
	select {
	case r.wakeCh <- struct{}{}:
	default:
	}
}

// Poll processes pending wake-ups, expires timers and steps every ready task
// once. It returns the number of steps run.
func (r *Runtime) Poll() int {
	if r.woken.Swap(false) {
		for i := TaskID(0); i < r.count; i++ {
			if r.tasks[i].state == TaskWaiting {
				r.tasks[i].state = TaskReady
			}
		}
	}

	now := r.clock.Now()
	for i := TaskID(0); i < r.count; i++ {
		st := &r.tasks[i]
		if st.state == TaskSleeping && st.due <= now {
			st.state = TaskReady
		}
	}

	if r.count == 0 {
		return 0
	}

	n := 0
	start := r.rr
	for i := TaskID(0); i < r.count; i++ {
		id := (start + i) % r.count
		if r.tasks[id].state != TaskReady {
			continue
		}
		r.step(id)
		n++
	}
	r.rr = (start + 1) % r.count
	return n
}

// Run drives the runtime until ctx is done. On device ctx is never done.
func (r *Runtime) Run(ctx context.Context) error {
	timer := time.NewTimer(idleWait)
	defer timer.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		for r.Poll() > 0 || r.woken.Load() {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		wait, ok := r.nextDeadline()
		if !ok {
			wait = idleWait
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.wakeCh:
		case <-timer.C:
		}
	}
}

// Steps returns the number of task steps run so far.
func (r *Runtime) Steps() uint64 { return r.steps }

// TaskState returns the state of a task, or TaskDone for an unknown ID.
func (r *Runtime) TaskState(id TaskID) TaskState {
	if id >= r.count {
		return TaskDone
	}
	return r.tasks[id].state
}

// Tasks returns a snapshot of all spawned tasks.
func (r *Runtime) Tasks() []TaskInfo {
	out := make([]TaskInfo, 0, r.count)
	for i := TaskID(0); i < r.count; i++ {
		st := &r.tasks[i]
		out = append(out, TaskInfo{ID: i, Name: st.name, State: st.state, Err: st.err})
	}
	return out
}

func (r *Runtime) nextDeadline() (time.Duration, bool) {
	var (
		due   time.Duration
		armed bool
	)
	for i := TaskID(0); i < r.count; i++ {
		st := &r.tasks[i]
		if st.state != TaskSleeping {
			continue
		}
		if !armed || st.due < due {
			due = st.due
			armed = true
		}
	}
	if !armed {
		return 0, false
	}
	wait := due - r.clock.Now()
	if wait < 0 {
		wait = 0
	}
	return wait, true
}

func (r *Runtime) step(id TaskID) {
	st := &r.tasks[id]
	ctx := Context{rt: r, id: id}

	r.runStep(st, &ctx)
	r.steps++

	switch ctx.next {
	case TaskSleeping:
		st.state = TaskSleeping
		st.due = ctx.due
	case TaskWaiting, TaskParked, TaskDone:
		st.state = ctx.next
	case TaskHalted:
		st.state = TaskHalted
		st.err = ctx.err
		if r.onHalt != nil {
			r.onHalt(r, id, st.name, ctx.err)
		}
	default:
		st.state = TaskReady
	}
}

func (r *Runtime) runStep(st *taskSlot, ctx *Context) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		triggerPanic(PanicInfo{Runtime: r.name, TaskID: ctx.id, Task: st.name, Value: v})
		ctx.next = TaskHalted
		ctx.err = fmt.Errorf("kernel: task %s panicked: %v", st.name, v)
	}()
	st.task.Step(ctx)
}
