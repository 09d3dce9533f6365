package hal

import (
	"errors"
	"image/color"

	"tinygo.org/x/drivers"
)

// Panel geometry of the SSD1306 module.
const (
	PanelWidth  = 128
	PanelHeight = 64
)

var ErrPanelNotReady = errors.New("hal: panel not initialized")

// Brightness is an ordered panel brightness step.
type Brightness uint8

const (
	BrightnessDimmest Brightness = iota
	BrightnessDim
	BrightnessNormal
	BrightnessBright
	BrightnessBrightest
)

func (b Brightness) String() string {
	switch b {
	case BrightnessDimmest:
		return "dimmest"
	case BrightnessDim:
		return "dim"
	case BrightnessNormal:
		return "normal"
	case BrightnessBright:
		return "bright"
	case BrightnessBrightest:
		return "brightest"
	default:
		return "unknown"
	}
}

// Brighter returns the next step up, staying at BrightnessBrightest.
func (b Brightness) Brighter() Brightness {
	if b >= BrightnessBrightest {
		return BrightnessBrightest
	}
	return b + 1
}

// Dimmer returns the next step down, staying at BrightnessDimmest.
func (b Brightness) Dimmer() Brightness {
	if b == BrightnessDimmest || b > BrightnessBrightest {
		return BrightnessDimmest
	}
	return b - 1
}

// Registers returns the SSD1306 pre-charge period and contrast values for b.
func (b Brightness) Registers() (precharge, contrast uint8) {
	switch b {
	case BrightnessDimmest:
		return 0x1, 0x00
	case BrightnessDim:
		return 0x2, 0x2F
	case BrightnessBright:
		return 0x2, 0x9F
	case BrightnessBrightest:
		return 0x2, 0xFF
	default:
		return 0x2, 0x5F
	}
}

// Panel is a buffered monochrome display.
//
// Drawing goes to an off-screen buffer through drivers.Displayer; Display
// flushes the buffer to the glass.
type Panel interface {
	drivers.Displayer
	Init() error
	SetBrightness(Brightness) error
	SetInvert(inverted bool) error
	ClearBuffer()
}

// PixelOn reports whether c lights a monochrome pixel.
func PixelOn(c color.RGBA) bool {
	return c.R != 0 || c.G != 0 || c.B != 0
}

// MonoBuffer is a 1bpp frame buffer laid out like SSD1306 GDDRAM: one byte
// holds a vertical run of eight pixels.
type MonoBuffer struct {
	buf [PanelWidth * PanelHeight / 8]byte
}

func (m *MonoBuffer) Clear() {
	m.buf = [len(m.buf)]byte{}
}

func (m *MonoBuffer) Set(x, y int16, on bool) {
	if x < 0 || y < 0 || x >= PanelWidth || y >= PanelHeight {
		return
	}
	i := int(x) + int(y/8)*PanelWidth
	bit := byte(1) << uint(y%8)
	if on {
		m.buf[i] |= bit
	} else {
		m.buf[i] &^= bit
	}
}

func (m *MonoBuffer) Get(x, y int16) bool {
	if x < 0 || y < 0 || x >= PanelWidth || y >= PanelHeight {
		return false
	}
	return m.buf[int(x)+int(y/8)*PanelWidth]&(1<<uint(y%8)) != 0
}

// Count returns the number of lit pixels.
func (m *MonoBuffer) Count() int {
	n := 0
	for _, b := range m.buf {
		for ; b != 0; b &= b - 1 {
			n++
		}
	}
	return n
}
