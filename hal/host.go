//go:build !tinygo

package hal

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// HostConfig selects the simulator's peripherals.
type HostConfig struct {
	// SDImage is a raw FAT image file standing in for the SD card.
	// Empty means no card inserted.
	SDImage string
	// RadioPort is the serial device of an RYLR896-class LoRa modem.
	// Empty means no radio fitted.
	RadioPort string
	RadioBaud int
	// Demo drives the buttons from periodic signals instead of the keyboard.
	Demo bool
}

type hostHAL struct {
	logger  *hostLogger
	pins    []*hostButton
	buttons []GPIOPin
	panel   *hostPanel
	radio   RadioBoard
	card    Card
}

// NewHost returns a host HAL implementation.
func NewHost(cfg HostConfig) HAL {
	return newHostHAL(cfg)
}

func newHostHAL(cfg HostConfig) *hostHAL {
	logger := &hostLogger{w: os.Stdout}
	h := &hostHAL{
		logger: logger,
		panel:  newHostPanel(logger),
		radio:  nullRadio{},
		card:   nullCard{},
	}

	for i := 0; i < ButtonCount; i++ {
		name := fmt.Sprintf("BTN%d", i)
		if cfg.Demo {
			// Staggered presses so all three commands show up.
			period := time.Duration(3+i) * time.Second
			h.buttons = append(h.buttons, newDemoButton(name, period, 300*time.Millisecond))
			continue
		}
		p := newHostButton(name)
		h.pins = append(h.pins, p)
		h.buttons = append(h.buttons, p)
	}

	if cfg.RadioPort != "" {
		h.radio = newSerialRadio(cfg.RadioPort, cfg.RadioBaud)
	}
	if cfg.SDImage != "" {
		h.card = NewImageCard(cfg.SDImage)
	}
	return h
}

func (h *hostHAL) Logger() Logger     { return h.logger }
func (h *hostHAL) Buttons() []GPIOPin { return h.buttons }
func (h *hostHAL) Panel() Panel       { return h.panel }
func (h *hostHAL) Radio() RadioBoard  { return h.radio }
func (h *hostHAL) Card() Card         { return h.card }

// press sets the level of button i. Signal-driven buttons ignore it.
func (h *hostHAL) press(i int, down bool) {
	if i < 0 || i >= len(h.pins) {
		return
	}
	h.pins[i].set(down)
}

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}
