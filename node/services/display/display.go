// Package display owns the OLED panel and applies commands from the
// command channel to it.
package display

import (
	"fmt"

	"receiver/hal"
	"receiver/internal/buildinfo"
	"receiver/kernel"
	"receiver/node/logger"
	"receiver/node/proto"
)

// State is the logical panel state. The zero value is not the boot state;
// use InitialState.
type State struct {
	Inverted   bool
	Brightness hal.Brightness
}

// InitialState is the state the panel is brought up in.
func InitialState() State {
	return State{Brightness: hal.BrightnessNormal}
}

// Apply returns the state after cmd. Unknown commands leave s unchanged.
func (s State) Apply(cmd proto.Command) State {
	switch cmd {
	case proto.Command0:
		s.Inverted = !s.Inverted
	case proto.Command1:
		s.Brightness = s.Brightness.Brighter()
	case proto.Command2:
		s.Brightness = s.Brightness.Dimmer()
	}
	return s
}

// Header is the title line drawn next to the splash mark.
func Header() string { return "RECEIVER v" + buildinfo.Short() }

// Service brings the panel up, draws the splash screen and then applies
// commands forever. An init failure halts the task; a failed apply is
// logged and counted, and the loop carries on.
type Service struct {
	panel hal.Panel
	in    *kernel.Queue[proto.Command]
	log   *logger.Logger

	ready bool
	state State

	processed   uint32
	applyErrors uint32
}

func New(panel hal.Panel, in *kernel.Queue[proto.Command], log *logger.Logger) *Service {
	return &Service{panel: panel, in: in, log: log, state: InitialState()}
}

// State returns a copy of the current logical state.
func (s *Service) State() State { return s.state }

// Processed returns the number of commands taken off the channel.
func (s *Service) Processed() uint32 { return s.processed }

// ApplyErrors returns how many commands failed to reach the panel.
func (s *Service) ApplyErrors() uint32 { return s.applyErrors }

// Splash returns the boot screen primitives.
func Splash() []Primitive {
	return []Primitive{
		Image{X: 0, Y: 0, Width: 16, Data: splashMark},
		Text{X: 24, Y: 4, Str: Header()},
	}
}

func (s *Service) Step(ctx *kernel.Context) {
	if !s.ready {
		s.log.Infof("Initializing SSD1306")
		if err := s.init(); err != nil {
			s.log.Errorf("%v", err)
			ctx.Halt(err)
			return
		}
		s.ready = true
		s.log.Infof("Display ready")
	}

	for {
		cmd, ok := s.in.Recv(ctx)
		if !ok {
			return
		}
		s.apply(cmd)
	}
}

func (s *Service) init() error {
	if err := s.panel.Init(); err != nil {
		return fmt.Errorf("display init: %w", err)
	}
	if err := s.panel.SetBrightness(s.state.Brightness); err != nil {
		return fmt.Errorf("display set brightness: %w", err)
	}
	s.panel.ClearBuffer()
	for _, p := range Splash() {
		if err := p.Draw(s.panel); err != nil {
			return fmt.Errorf("display splash: %w", err)
		}
	}
	if err := s.panel.Display(); err != nil {
		return fmt.Errorf("display flush: %w", err)
	}
	return nil
}

func (s *Service) apply(cmd proto.Command) {
	s.processed++
	if !cmd.Valid() {
		s.log.Warnf("ignoring command %d", uint8(cmd))
		return
	}

	s.state = s.state.Apply(cmd)

	var err error
	switch cmd {
	case proto.Command0:
		err = s.panel.SetInvert(s.state.Inverted)
	default:
		err = s.panel.SetBrightness(s.state.Brightness)
	}
	if err != nil {
		s.applyErrors++
		s.log.Errorf("apply %s: %v", cmd, err)
		return
	}
	s.log.Debugf("%s: inverted=%t brightness=%s", cmd, s.state.Inverted, s.state.Brightness)
}
