// Package radio owns the LoRa transceiver on core 1.
package radio

import (
	"errors"
	"fmt"
	"time"

	"receiver/hal"
	"receiver/kernel"
	"receiver/node/logger"
)

var (
	// ErrTransmit wraps every failed Send.
	ErrTransmit = errors.New("radio: transmit failed")
	// ErrNoFrame is returned by Receive when the timeout elapsed.
	ErrNoFrame = errors.New("radio: no frame")
	// ErrMalformedFrame is returned by Receive for a frame that arrived
	// corrupted.
	ErrMalformedFrame = errors.New("radio: malformed frame")
)

// TxTimeout is handed to the transceiver with every transmission. The host
// modem gives up on its AT reply after it; the sx127x driver ignores it and
// returns on TxDone.
const TxTimeout = 2 * time.Second

// Link is the send/receive handle held by the radio task once the
// transceiver is up. It must only be used from that task, and Logic keeps at
// most one Send or Receive in flight: the sx127x is in either TX or RX mode.
type Link struct {
	tr hal.Transceiver

	tx kernel.Pending[struct{}]
	rx kernel.Pending[[]byte]

	sent     uint32
	received uint32
}

func newLink(tr hal.Transceiver) *Link { return &Link{tr: tr} }

// Sent returns the number of completed transmissions.
func (l *Link) Sent() uint32 { return l.sent }

// Received returns the number of frames delivered by Receive.
func (l *Link) Received() uint32 { return l.received }

// Send hands payload to the transceiver. While the transmission is in flight
// it suspends the task and returns done=false; the caller returns from Step
// and calls Send again with the same payload. Errors wrap ErrTransmit.
func (l *Link) Send(ctx *kernel.Context, payload []byte) (done bool, err error) {
	if len(payload) == 0 || len(payload) > hal.MaxFrameBytes {
		return true, fmt.Errorf("%w: payload of %d bytes", ErrTransmit, len(payload))
	}
	_, done, err = l.tx.Poll(ctx, func() (struct{}, error) {
		return struct{}{}, l.tr.Tx(payload, TxTimeout)
	})
	if !done {
		return false, nil
	}
	if err != nil {
		return true, fmt.Errorf("%w: %w", ErrTransmit, err)
	}
	l.sent++
	return true, nil
}

// Receive waits up to timeout for one frame, suspending the task meanwhile.
// A timeout yields ErrNoFrame, a corrupted frame ErrMalformedFrame.
func (l *Link) Receive(ctx *kernel.Context, timeout time.Duration) (frame []byte, done bool, err error) {
	frame, done, err = l.rx.Poll(ctx, func() ([]byte, error) {
		return l.tr.Rx(timeout)
	})
	if !done {
		return nil, false, nil
	}
	switch {
	case err == nil:
		l.received++
		return frame, true, nil
	case errors.Is(err, hal.ErrRxTimeout):
		return nil, true, ErrNoFrame
	case errors.Is(err, hal.ErrBadFrame):
		return nil, true, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	default:
		return nil, true, fmt.Errorf("radio receive: %w", err)
	}
}

// Logic is the application protocol run on top of the link. Step follows the
// task contract: after a suspending Link call it returns at once.
type Logic interface {
	Step(ctx *kernel.Context, link *Link)
}

// Service brings the transceiver up and then runs Logic, or parks holding
// the radio when there is none. An init failure halts the task.
type Service struct {
	board hal.RadioBoard
	logic Logic
	log   *logger.Logger

	open kernel.Pending[hal.Transceiver]
	link *Link
}

func New(board hal.RadioBoard, logic Logic, log *logger.Logger) *Service {
	return &Service{board: board, logic: logic, log: log}
}

// Link returns the live link, or nil before init completed.
func (s *Service) Link() *Link { return s.link }

func (s *Service) Step(ctx *kernel.Context) {
	if s.link == nil {
		if s.board == nil {
			s.log.Errorf("radio init: %v", hal.ErrNoDevice)
			ctx.Halt(hal.ErrNoDevice)
			return
		}
		tr, done, err := s.open.Poll(ctx, s.board.Open)
		if !done {
			return
		}
		if err == nil && tr == nil {
			err = hal.ErrNoDevice
		}
		if err != nil {
			err = fmt.Errorf("radio init (%s): %w", s.board.Variant(), err)
			s.log.Errorf("%v", err)
			ctx.Halt(err)
			return
		}
		s.link = newLink(tr)
		s.log.Infof("radio ready (%s, %d Hz)", s.board.Variant(), hal.LoRaFrequencyHz)
	}

	if s.logic == nil {
		ctx.Park()
		return
	}
	s.logic.Step(ctx, s.link)
}
