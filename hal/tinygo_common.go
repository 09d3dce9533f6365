//go:build tinygo && baremetal

package hal

import (
	"fmt"
	"machine"
	"sync"
)

// uartLogger is shared by both cores; a line is written under the lock so
// lines never interleave.
type uartLogger struct {
	mu   sync.Mutex
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := 0; i < len(b); i++ {
		l.uart.WriteByte(b[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

// pinButton is a button on an RP2040 GPIO, read as an input.
type pinButton struct {
	name string
	pin  machine.Pin
}

func (p *pinButton) Name() string { return p.name }

func (p *pinButton) Configure(pull GPIOPull) error {
	mode := machine.PinInput
	switch pull {
	case GPIOPullNone:
	case GPIOPullUp:
		mode = machine.PinInputPullup
	case GPIOPullDown:
		mode = machine.PinInputPulldown
	default:
		return fmt.Errorf("gpio %s: %v", p.name, pull)
	}
	p.pin.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (p *pinButton) Read() (bool, error) { return p.pin.Get(), nil }
