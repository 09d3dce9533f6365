// Package input turns a button line into commands on the command channel.
package input

import (
	"time"

	"receiver/hal"
	"receiver/kernel"
	"receiver/node/logger"
	"receiver/node/proto"
)

const (
	// DebounceInterval is the quiet time after each press and release edge.
	DebounceInterval = 100 * time.Millisecond
	// PollInterval is the pin sampling period while waiting for an edge.
	PollInterval = 10 * time.Millisecond
	// StallWarning is how long a send may stay blocked before it is logged.
	StallWarning = 5 * time.Second
)

// State is the observable button state.
type State uint8

const (
	StateIdle State = iota
	StatePressed
)

func (s State) String() string {
	if s == StatePressed {
		return "pressed"
	}
	return "idle"
}

type phase uint8

const (
	phaseWaitHigh phase = iota
	phaseSend
	phaseDebouncePress
	phaseWaitLow
	phaseDebounceRelease
)

// Service watches one active-high button and sends its command once per
// press. Pin read errors are treated as no edge.
type Service struct {
	pin hal.GPIOPin
	cmd proto.Command
	out *kernel.Queue[proto.Command]
	log *logger.Logger

	configured bool
	phase      phase
	presses    uint32

	sendSince time.Duration
	warned    bool
}

func New(pin hal.GPIOPin, cmd proto.Command, out *kernel.Queue[proto.Command], log *logger.Logger) *Service {
	return &Service{pin: pin, cmd: cmd, out: out, log: log}
}

// State reports whether the button is currently held.
func (s *Service) State() State {
	switch s.phase {
	case phaseSend, phaseDebouncePress, phaseWaitLow:
		return StatePressed
	default:
		return StateIdle
	}
}

// Presses returns how many commands have been delivered to the channel.
func (s *Service) Presses() uint32 { return s.presses }

func (s *Service) Step(ctx *kernel.Context) {
	if !s.configured {
		if err := s.pin.Configure(hal.GPIOPullDown); err != nil {
			s.log.Errorf("configure %s: %v", s.pin.Name(), err)
			ctx.Halt(err)
			return
		}
		s.configured = true
		s.log.Debugf("watching %s for %s", s.pin.Name(), s.cmd)
	}

	for {
		switch s.phase {
		case phaseWaitHigh:
			if !s.level(true) {
				ctx.Sleep(PollInterval)
				return
			}
			s.phase = phaseSend
			s.sendSince = ctx.Now()

		case phaseSend:
			if !s.out.Send(ctx, s.cmd) {
				s.stalled(ctx)
				return
			}
			s.presses++
			s.warned = false
			s.log.Debugf("%s pressed, sent %s", s.pin.Name(), s.cmd)
			s.phase = phaseDebouncePress
			ctx.Sleep(DebounceInterval)
			return

		case phaseDebouncePress:
			s.phase = phaseWaitLow

		case phaseWaitLow:
			if !s.level(false) {
				ctx.Sleep(PollInterval)
				return
			}
			s.phase = phaseDebounceRelease
			ctx.Sleep(DebounceInterval)
			return

		case phaseDebounceRelease:
			s.phase = phaseWaitHigh
		}
	}
}

// level reports whether the pin reads want. A read error never matches.
func (s *Service) level(want bool) bool {
	v, err := s.pin.Read()
	if err != nil {
		return false
	}
	return v == want
}

// stalled runs after Send found the channel full. Until the warning is out
// the send is retried on a short timer so a stuck consumer gets noticed;
// after that the task only waits for the channel.
func (s *Service) stalled(ctx *kernel.Context) {
	if s.warned {
		return
	}
	elapsed := ctx.Now() - s.sendSince
	if elapsed >= StallWarning {
		s.warned = true
		s.log.Warnf("%s blocked for %v: command channel full (%d stalls)", s.cmd, elapsed, s.out.Stalls())
		return
	}
	retry := StallWarning - elapsed
	if retry > DebounceInterval {
		retry = DebounceInterval
	}
	ctx.Sleep(retry)
}
