//go:build tinygo && baremetal

package hal

import (
	"machine"

	"tinygo.org/x/drivers/sdcard"
)

// sdCard brings the card up lazily; until Capacity succeeds every block
// access fails with ErrNoDevice.
type sdCard struct {
	dev   sdcard.Device
	ready bool
}

func newSDCard(bus *machine.SPI, sck, sdo, sdi, cs machine.Pin) *sdCard {
	return &sdCard{dev: sdcard.New(bus, sck, sdo, sdi, cs)}
}

func (c *sdCard) Capacity() (uint64, error) {
	if !c.ready {
		if err := c.dev.Configure(); err != nil {
			return 0, err
		}
		c.ready = true
	}
	return uint64(c.dev.Size()), nil
}

func (c *sdCard) ReadAt(p []byte, off int64) (int, error) {
	if !c.ready {
		return 0, ErrNoDevice
	}
	return c.dev.ReadAt(p, off)
}

func (c *sdCard) WriteAt(p []byte, off int64) (int, error) {
	if !c.ready {
		return 0, ErrNoDevice
	}
	return c.dev.WriteAt(p, off)
}

func (c *sdCard) Size() int64 {
	if !c.ready {
		return 0
	}
	return c.dev.Size()
}

func (c *sdCard) WriteBlockSize() int64 { return c.dev.WriteBlockSize() }
func (c *sdCard) EraseBlockSize() int64 { return c.dev.EraseBlockSize() }

func (c *sdCard) EraseBlocks(start, length int64) error {
	if !c.ready {
		return ErrNoDevice
	}
	return c.dev.EraseBlocks(start, length)
}
