package radio

import (
	"errors"
	"time"

	"receiver/kernel"
	"receiver/node/logger"
)

// ListenWindow is how long one receive waits before it is re-armed.
const ListenWindow = 5 * time.Second

// Listener is a Logic that keeps the receiver armed and logs every frame.
type Listener struct {
	log *logger.Logger

	// OnFrame, if set, is called with each frame from the radio task.
	OnFrame func(frame []byte)

	malformed uint32
}

func NewListener(log *logger.Logger) *Listener {
	return &Listener{log: log}
}

// Malformed returns the number of corrupted frames seen.
func (l *Listener) Malformed() uint32 { return l.malformed }

func (l *Listener) Step(ctx *kernel.Context, link *Link) {
	for {
		frame, done, err := link.Receive(ctx, ListenWindow)
		if !done {
			return
		}
		switch {
		case err == nil:
			l.log.Infof("rx %d bytes: %q", len(frame), frame)
			if l.OnFrame != nil {
				l.OnFrame(frame)
			}
		case errors.Is(err, ErrNoFrame):
			l.log.Debugf("rx window elapsed")
		case errors.Is(err, ErrMalformedFrame):
			l.malformed++
			l.log.Warnf("%v", err)
		default:
			l.log.Errorf("%v", err)
			// Back off on bus errors.
			ctx.Sleep(ListenWindow)
			return
		}
	}
}
