//go:build !tinygo

package kernel

import "runtime"

// maxStackBytes bounds the trace handed to the panic handler; the log sink
// is a serial line on the device build.
const maxStackBytes = 4 << 10

func captureStack() []byte {
	buf := make([]byte, maxStackBytes)
	return buf[:runtime.Stack(buf, false)]
}
