package hal

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// GPIOPull selects the pull resistor of a button input.
type GPIOPull uint8

const (
	GPIOPullNone GPIOPull = iota
	GPIOPullUp
	GPIOPullDown
)

func (p GPIOPull) String() string {
	switch p {
	case GPIOPullNone:
		return "none"
	case GPIOPullUp:
		return "up"
	case GPIOPullDown:
		return "down"
	default:
		return fmt.Sprintf("pull(%d)", uint8(p))
	}
}

// GPIOPin is one active-high button line. Buttons are inputs only; there is
// no output path on this board.
type GPIOPin interface {
	Name() string
	Configure(pull GPIOPull) error
	Read() (level bool, err error)
}

var ErrPinNotConfigured = errors.New("gpio: pin not configured")

func checkPull(name string, pull GPIOPull) error {
	if pull > GPIOPullDown {
		return fmt.Errorf("gpio %s: %v", name, pull)
	}
	return nil
}

// hostButton is a simulated button. The keyboard and tests move its level
// with set; the sampling task only reads it.
type hostButton struct {
	name       string
	configured atomic.Bool
	down       atomic.Bool
}

func newHostButton(name string) *hostButton { return &hostButton{name: name} }

func (b *hostButton) Name() string { return b.name }

func (b *hostButton) Configure(pull GPIOPull) error {
	if err := checkPull(b.name, pull); err != nil {
		return err
	}
	b.configured.Store(true)
	return nil
}

func (b *hostButton) Read() (bool, error) {
	if !b.configured.Load() {
		return false, fmt.Errorf("gpio %s: %w", b.name, ErrPinNotConfigured)
	}
	return b.down.Load(), nil
}

func (b *hostButton) set(down bool) { b.down.Store(down) }

// demoButton presses itself for hold at the start of every period, so the
// simulator can run without a keyboard.
type demoButton struct {
	name       string
	configured atomic.Bool

	start  time.Time
	now    func() time.Time
	period time.Duration
	hold   time.Duration
}

func newDemoButton(name string, period, hold time.Duration) *demoButton {
	return newDemoButtonAt(name, period, hold, time.Now)
}

func newDemoButtonAt(name string, period, hold time.Duration, now func() time.Time) *demoButton {
	if period <= 0 {
		period = time.Second
	}
	hold = min(max(hold, 0), period)
	return &demoButton{name: name, start: now(), now: now, period: period, hold: hold}
}

func (b *demoButton) Name() string { return b.name }

func (b *demoButton) Configure(pull GPIOPull) error {
	if err := checkPull(b.name, pull); err != nil {
		return err
	}
	b.configured.Store(true)
	return nil
}

func (b *demoButton) Read() (bool, error) {
	if !b.configured.Load() {
		return false, fmt.Errorf("gpio %s: %w", b.name, ErrPinNotConfigured)
	}
	since := b.now().Sub(b.start)
	if since < 0 {
		return false, nil
	}
	return since%b.period < b.hold, nil
}
