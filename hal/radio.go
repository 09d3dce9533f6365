package hal

import (
	"errors"
	"time"
)

// LoRaFrequencyHz is the carrier frequency. Set this for the region.
const LoRaFrequencyHz = 915_000_000

// MaxFrameBytes is the largest payload a transceiver accepts.
const MaxFrameBytes = 255

var (
	// ErrRxTimeout is returned by Transceiver.Rx when no frame arrived in time.
	ErrRxTimeout = errors.New("hal: radio rx timeout")
	// ErrBadFrame is returned by Transceiver.Rx for a frame that failed
	// integrity checks or could not be parsed.
	ErrBadFrame = errors.New("hal: radio bad frame")
	// ErrRadioNotFound is returned by RadioBoard.Open when the chip does not answer.
	ErrRadioNotFound = errors.New("hal: radio not detected")
)

// RadioVariant identifies the transceiver fitted to the board.
type RadioVariant uint8

const (
	RadioNone RadioVariant = iota
	RadioSX1276
	RadioRYLR896
)

func (v RadioVariant) String() string {
	switch v {
	case RadioNone:
		return "none"
	case RadioSX1276:
		return "sx1276"
	case RadioRYLR896:
		return "rylr896"
	default:
		return "unknown"
	}
}

// Transceiver is a live radio handle.
//
// Tx returns once the payload was handed to the chip or fails. Rx blocks until
// a frame arrives or the timeout elapses.
type Transceiver interface {
	Tx(payload []byte, timeout time.Duration) error
	Rx(timeout time.Duration) ([]byte, error)
}

// RadioBoard owns the bus and control lines of the radio until Open takes
// them over. Open blocks while the chip is reset, detected and configured.
type RadioBoard interface {
	Variant() RadioVariant
	Open() (Transceiver, error)
}

type nullRadio struct{}

func (nullRadio) Variant() RadioVariant { return RadioNone }

func (nullRadio) Open() (Transceiver, error) { return nil, ErrNoDevice }
