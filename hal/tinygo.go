//go:build tinygo && baremetal

package hal

import (
	"machine"
)

type tinyGoHAL struct {
	logger  *uartLogger
	buttons []GPIOPin
	panel   *oledPanel
	radio   *sx127xBoard
	card    *sdCard
}

// New returns the RP2040 gateway board HAL.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
// Buttons: GP18, GP19, GP20, active high.
// OLED: SSD1306 on I2C0, SCL GP17 / SDA GP16.
// SD: SPI1, SCK GP10 / SDO GP11 / SDI GP12, CS GP13.
// LoRa: SX127x on SPI0, SCK GP2 / SDO GP3 / SDI GP4, NSS GP5, RST GP14,
// DIO0 GP15, DIO1 GP8.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})
	logger := &uartLogger{uart: uart}

	return &tinyGoHAL{
		logger: logger,
		buttons: []GPIOPin{
			&pinButton{name: "BTN0", pin: machine.GP18},
			&pinButton{name: "BTN1", pin: machine.GP19},
			&pinButton{name: "BTN2", pin: machine.GP20},
		},
		panel: newOLEDPanel(machine.I2C0, machine.GP17, machine.GP16),
		radio: &sx127xBoard{
			spi:  machine.SPI0,
			sck:  machine.GP2,
			sdo:  machine.GP3,
			sdi:  machine.GP4,
			nss:  machine.GP5,
			rst:  machine.GP14,
			dio0: machine.GP15,
			dio1: machine.GP8,
		},
		card: newSDCard(machine.SPI1, machine.GP10, machine.GP11, machine.GP12, machine.GP13),
	}
}

func (h *tinyGoHAL) Logger() Logger     { return h.logger }
func (h *tinyGoHAL) Buttons() []GPIOPin { return h.buttons }
func (h *tinyGoHAL) Panel() Panel       { return h.panel }
func (h *tinyGoHAL) Radio() RadioBoard  { return h.radio }
func (h *tinyGoHAL) Card() Card         { return h.card }
