// Package app wires the peripherals to their tasks and starts both cores.
package app

import (
	"context"
	"errors"
	"fmt"

	"receiver/hal"
	"receiver/internal/buildinfo"
	"receiver/kernel"
	"receiver/node/logger"
	"receiver/node/proto"
	"receiver/node/services/display"
	"receiver/node/services/input"
	"receiver/node/services/radio"
	"receiver/node/services/storage"
)

const (
	// CommandQueueSlots is the capacity of the input to display channel.
	CommandQueueSlots = 4
	// JournalSlots is the capacity of the radio to storage journal.
	JournalSlots = 4
)

var ErrButtonCount = errors.New("app: wrong number of buttons")

type Config struct {
	Debug bool
	// Listen keeps the radio receiver armed and logs incoming frames.
	Listen bool
	// Journal appends every received frame to the card. Implies Listen.
	Journal bool
	// Volumes builds the filesystem over the card; nil selects FAT.
	Volumes func(hal.Card) storage.VolumeManager
}

// System is a booted, not yet running, receiver.
type System struct {
	Core0 *kernel.Runtime
	Core1 *kernel.Runtime

	Commands *kernel.Queue[proto.Command]
	Journal  *kernel.Queue[storage.Entry]

	Display *display.Service
	Inputs  [hal.ButtonCount]*input.Service
	Radio   *radio.Service
	Storage *storage.Service

	log *logger.Logger
}

// Boot takes every peripheral from h, hands each to the task that owns it
// from then on, and spawns the tasks on their cores. Nothing runs until
// Run or Poll is called. A nil clock selects the wall clock.
func Boot(h hal.HAL, cfg Config, clock kernel.Clock) (*System, error) {
	base := logger.New(h.Logger(), "")
	if cfg.Debug {
		base = base.WithLevel(logger.LevelDebug)
	}
	base.Infof("Receiver v%s", buildinfo.Short())
	installPanicHandler(base.With("panic"))

	// Peripheral handles, taken once.
	panel := h.Panel()
	buttons := h.Buttons()
	board := h.Radio()
	card := h.Card()
	if len(buttons) != hal.ButtonCount {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrButtonCount, len(buttons), hal.ButtonCount)
	}

	newVolumes := cfg.Volumes
	if newVolumes == nil {
		newVolumes = func(c hal.Card) storage.VolumeManager { return storage.NewFAT(c) }
	}

	if clock == nil {
		clock = kernel.NewMonotonicClock()
	}
	s := &System{
		Core0:    kernel.New("core0", clock),
		Core1:    kernel.New("core1", clock),
		Commands: kernel.NewQueue[proto.Command](CommandQueueSlots),
		log:      base,
	}
	s.Core0.OnHalt(s.halted)
	s.Core1.OnHalt(s.halted)

	log0 := base.With("core0")
	s.Display = display.New(panel, s.Commands, log0.With("display"))
	if _, err := s.Core0.Spawn("display", s.Display); err != nil {
		return nil, err
	}
	for i, pin := range buttons {
		cmd, _ := proto.ButtonCommand(i)
		name := fmt.Sprintf("input%d", i)
		s.Inputs[i] = input.New(pin, cmd, s.Commands, log0.With(name))
		if _, err := s.Core0.Spawn(name, s.Inputs[i]); err != nil {
			return nil, err
		}
	}

	log1 := base.With("core1")
	var logic radio.Logic
	if cfg.Listen || cfg.Journal {
		l := radio.NewListener(log1.With("radio"))
		if cfg.Journal {
			s.Journal = kernel.NewQueue[storage.Entry](JournalSlots)
			l.OnFrame = s.journalFrame
		}
		logic = l
	}
	s.Radio = radio.New(board, logic, log1.With("radio"))
	if _, err := s.Core1.Spawn("radio", s.Radio); err != nil {
		return nil, err
	}
	s.Storage = storage.New(newVolumes(card), s.Journal, log1.With("storage"))
	if _, err := s.Core1.Spawn("storage", s.Storage); err != nil {
		return nil, err
	}

	base.Debugf("core0: %d tasks, core1: %d tasks", len(s.Core0.Tasks()), len(s.Core1.Tasks()))
	return s, nil
}

// Run drives core 1 on its own goroutine and core 0 on the caller's until
// ctx is done.
func (s *System) Run(ctx context.Context) error {
	s.log.Infof("Running on Core 0!")
	done := make(chan error, 1)
	go func() {
		s.log.Infof("Running on Core 1!")
		done <- s.Core1.Run(ctx)
	}()
	err := s.Core0.Run(ctx)
	if err1 := <-done; err == nil {
		err = err1
	}
	return err
}

// Poll steps both cores once from the caller's goroutine.
func (s *System) Poll() int {
	return s.Core0.Poll() + s.Core1.Poll()
}

func (s *System) journalFrame(frame []byte) {
	if !s.Journal.TrySend(storage.NewEntry(frame)) {
		s.log.Warnf("journal full, dropped %d byte frame", len(frame))
	}
}

func (s *System) halted(rt *kernel.Runtime, id kernel.TaskID, name string, err error) {
	s.log.Errorf("%s: task %s (%d) halted: %v", rt.Name(), name, id, err)
	if name == "display" {
		s.log.Warnf("%s: command channel has no consumer; inputs stall after %d presses", rt.Name(), CommandQueueSlots)
	}
}

// Run boots the receiver on h and runs it forever (device entrypoint).
func Run(h hal.HAL, cfg Config) {
	s, err := Boot(h, cfg, nil)
	if err != nil {
		logger.New(h.Logger(), "").Errorf("boot: %v", err)
		select {}
	}
	_ = s.Run(context.Background())
	select {}
}
