//go:build tinygo && baremetal

package hal

import (
	"fmt"
	"machine"
	"time"

	"tinygo.org/x/drivers/lora"
	"tinygo.org/x/drivers/sx127x"
)

// sx127xBoard holds the SPI bus and control lines until Open hands them to
// the driver.
type sx127xBoard struct {
	spi                  *machine.SPI
	sck, sdo, sdi        machine.Pin
	nss, rst, dio0, dio1 machine.Pin
}

func (b *sx127xBoard) Variant() RadioVariant { return RadioSX1276 }

func (b *sx127xBoard) Open() (Transceiver, error) {
	if err := b.spi.Configure(machine.SPIConfig{
		Frequency: 500_000,
		SCK:       b.sck,
		SDO:       b.sdo,
		SDI:       b.sdi,
		Mode:      0,
	}); err != nil {
		return nil, err
	}

	dev := sx127x.New(b.spi, b.rst)
	if err := dev.SetRadioController(sx127x.NewRadioControl(b.nss, b.dio0, b.dio1)); err != nil {
		return nil, fmt.Errorf("sx127x radio control: %w", err)
	}
	dev.Reset()
	if !dev.DetectDevice() {
		return nil, ErrRadioNotFound
	}

	dev.LoraConfig(lora.Config{
		Freq:           LoRaFrequencyHz,
		Bw:             lora.Bandwidth_125_0,
		Sf:             lora.SpreadingFactor9,
		Cr:             lora.CodingRate4_7,
		HeaderType:     lora.HeaderExplicit,
		Preamble:       12,
		Ldr:            lora.LowDataRateOptimizeOff,
		Iq:             lora.IQStandard,
		Crc:            lora.CRCOn,
		SyncWord:       lora.SyncPublic,
		LoraTxPowerDBm: 17,
	})
	return &sx127xLink{dev: dev}, nil
}

type sx127xLink struct {
	dev *sx127x.Device
}

// Tx blocks until the chip raises TxDone on DIO0. The driver takes a
// timeout but does not enforce it.
func (l *sx127xLink) Tx(payload []byte, timeout time.Duration) error {
	return l.dev.Tx(payload, uint32(timeout/time.Millisecond))
}

func (l *sx127xLink) Rx(timeout time.Duration) ([]byte, error) {
	pkt, err := l.dev.Rx(uint32(timeout / time.Millisecond))
	if err != nil {
		return nil, ErrBadFrame
	}
	if pkt == nil {
		return nil, ErrRxTimeout
	}
	return pkt, nil
}
