package kernel

import (
	"sync/atomic"
)

// PanicInfo contains details about a panic recovered from a task step.
type PanicInfo struct {
	Runtime string
	TaskID  TaskID
	Task    string
	Value   any
	Stack   []byte
}

var (
	panicCount atomic.Uint32

	panicHandler atomic.Value // func(PanicInfo)
)

// InPanicMode reports whether any task has panicked.
func InPanicMode() bool {
	return panicCount.Load() > 0
}

// SetPanicHandler installs a process-wide panic handler.
//
// The handler runs on the goroutine of the runtime whose task panicked, once
// per panic. It must not panic.
func SetPanicHandler(fn func(PanicInfo)) {
	panicHandler.Store(fn)
}

func triggerPanic(info PanicInfo) {
	panicCount.Add(1)
	info.Stack = captureStack()
	if v := panicHandler.Load(); v != nil {
		if fn, ok := v.(func(PanicInfo)); ok && fn != nil {
			fn(info)
		}
	}
}
