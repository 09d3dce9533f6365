//go:build !tinygo

package hal

import (
	"fmt"
	"image/color"
	"sync"
)

// hostPanel emulates the SSD1306: drawing lands in front, Display copies it to
// shown, which is what the window renders.
type hostPanel struct {
	mu  sync.Mutex
	log Logger

	ready      bool
	front      MonoBuffer
	shown      MonoBuffer
	inverted   bool
	brightness Brightness
	flushes    int
}

func newHostPanel(log Logger) *hostPanel {
	return &hostPanel{log: log, brightness: BrightnessNormal}
}

func (p *hostPanel) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ready = true
	p.front.Clear()
	p.shown.Clear()
	return nil
}

func (p *hostPanel) Size() (x, y int16) { return PanelWidth, PanelHeight }

func (p *hostPanel) SetPixel(x, y int16, c color.RGBA) {
	p.mu.Lock()
	p.front.Set(x, y, PixelOn(c))
	p.mu.Unlock()
}

func (p *hostPanel) Display() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		return ErrPanelNotReady
	}
	p.shown = p.front
	p.flushes++
	return nil
}

func (p *hostPanel) ClearBuffer() {
	p.mu.Lock()
	p.front.Clear()
	p.mu.Unlock()
}

func (p *hostPanel) SetBrightness(b Brightness) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		return ErrPanelNotReady
	}
	p.brightness = b
	pre, contrast := b.Registers()
	p.log.WriteLineString(fmt.Sprintf("ssd1306: brightness %s (precharge=0x%X contrast=0x%02X)", b, pre, contrast))
	return nil
}

func (p *hostPanel) SetInvert(inverted bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		return ErrPanelNotReady
	}
	p.inverted = inverted
	p.log.WriteLineString(fmt.Sprintf("ssd1306: invert %t", inverted))
	return nil
}

// snapshot returns the flushed frame and the register state used to draw it.
func (p *hostPanel) snapshot() (MonoBuffer, bool, Brightness) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shown, p.inverted, p.brightness
}

// litColor is the colour of a lit pixel at brightness b in the window. The
// dimmest step stays visible on a monitor; SSD1306 modules of this kind glow
// blue-white.
func litColor(b Brightness) color.RGBA {
	_, contrast := b.Registers()
	v := 0x40 + int(contrast)*0xBF/0xFF
	return color.RGBA{R: byte(v * 7 / 8), G: byte(v * 15 / 16), B: byte(v), A: 0xFF}
}
