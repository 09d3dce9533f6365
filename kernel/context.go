package kernel

import "time"

// Context provides task-local access to the runtime during one Step.
//
// The suspension methods record what the task waits for; they take effect
// when Step returns. Exit and Halt are final and cannot be overridden by a
// later call in the same step.
type Context struct {
	rt   *Runtime
	id   TaskID
	next TaskState
	due  time.Duration
	err  error
}

// TaskID returns the current task ID.
func (c *Context) TaskID() TaskID { return c.id }

// TaskName returns the name the task was spawned with.
func (c *Context) TaskName() string { return c.rt.tasks[c.id].name }

// Runtime returns the runtime the task runs on.
func (c *Context) Runtime() *Runtime { return c.rt }

// Now returns the runtime clock.
func (c *Context) Now() time.Duration { return c.rt.clock.Now() }

// Sleep suspends the task for at least d. Sleep(0) yields.
func (c *Context) Sleep(d time.Duration) {
	if c.final() {
		return
	}
	if d < 0 {
		d = 0
	}
	c.next = TaskSleeping
	c.due = c.Now() + d
}

// Park holds the task forever. Unlike Exit, the task keeps the peripherals
// it owns; it is simply never stepped again.
func (c *Context) Park() {
	if c.final() {
		return
	}
	c.next = TaskParked
}

// Exit ends the task. It is never stepped again.
func (c *Context) Exit() {
	if c.final() {
		return
	}
	c.next = TaskDone
}

// Halt stops the task after a fatal error and reports it to the halt hook.
// Sibling tasks keep running.
func (c *Context) Halt(err error) {
	if c.final() {
		return
	}
	c.next = TaskHalted
	c.err = err
}

// Suspended reports whether the task is leaving the ready state.
func (c *Context) Suspended() bool { return c.next != TaskReady }

func (c *Context) wait() {
	if c.final() {
		return
	}
	c.next = TaskWaiting
}

func (c *Context) final() bool {
	return c.next == TaskDone || c.next == TaskHalted
}
