//go:build tinygo && baremetal

package hal

import (
	"fmt"
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ssd1306"
)

const ssd1306SetPrecharge = 0xD9

type oledPanel struct {
	bus      *machine.I2C
	scl, sda machine.Pin
	dev      *ssd1306.Device
}

func newOLEDPanel(bus *machine.I2C, scl, sda machine.Pin) *oledPanel {
	return &oledPanel{bus: bus, scl: scl, sda: sda}
}

func (p *oledPanel) Init() error {
	if err := p.bus.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SCL:       p.scl,
		SDA:       p.sda,
	}); err != nil {
		return err
	}
	d := ssd1306.NewI2C(p.bus)
	d.Configure(ssd1306.Config{
		Width:    PanelWidth,
		Height:   PanelHeight,
		Address:  ssd1306.Address_128_32,
		VccState: ssd1306.SWITCHCAPVCC,
	})
	p.dev = &d
	p.dev.ClearBuffer()
	return p.dev.Display()
}

func (p *oledPanel) Size() (x, y int16) { return PanelWidth, PanelHeight }

func (p *oledPanel) SetPixel(x, y int16, c color.RGBA) {
	if p.dev == nil {
		return
	}
	p.dev.SetPixel(x, y, c)
}

func (p *oledPanel) Display() error {
	if p.dev == nil {
		return ErrPanelNotReady
	}
	return p.dev.Display()
}

func (p *oledPanel) ClearBuffer() {
	if p.dev == nil {
		return
	}
	p.dev.ClearBuffer()
}

func (p *oledPanel) SetBrightness(b Brightness) error {
	if p.dev == nil {
		return ErrPanelNotReady
	}
	pre, contrast := b.Registers()
	// Phase 1 is one clock; pre sets phase 2 in the high nibble.
	return p.command(ssd1306SetPrecharge, pre<<4|0x1, ssd1306.SETCONTRAST, contrast)
}

func (p *oledPanel) SetInvert(inverted bool) error {
	if p.dev == nil {
		return ErrPanelNotReady
	}
	if inverted {
		return p.command(ssd1306.INVERTDISPLAY)
	}
	return p.command(ssd1306.NORMALDISPLAY)
}

// command sends each byte as its own command transfer. Device.Command drops
// the bus error, Tx returns it.
func (p *oledPanel) command(bs ...byte) error {
	for _, b := range bs {
		if err := p.dev.Tx([]byte{b}, true); err != nil {
			return fmt.Errorf("ssd1306 command %#02x: %w", b, err)
		}
	}
	return nil
}
