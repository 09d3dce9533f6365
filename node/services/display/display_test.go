package display

import (
	"errors"
	"image/color"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"receiver/hal"
	"receiver/kernel"
	"receiver/node/logger"
	"receiver/node/proto"
)

type fakePanel struct {
	calls []string
	buf   hal.MonoBuffer

	inverted   bool
	brightness hal.Brightness

	initErr       error
	brightnessErr error
	invertErr     error
}

func (p *fakePanel) Size() (x, y int16) { return hal.PanelWidth, hal.PanelHeight }

func (p *fakePanel) SetPixel(x, y int16, c color.RGBA) { p.buf.Set(x, y, hal.PixelOn(c)) }

func (p *fakePanel) Display() error {
	p.calls = append(p.calls, "display")
	return nil
}

func (p *fakePanel) Init() error {
	p.calls = append(p.calls, "init")
	return p.initErr
}

func (p *fakePanel) SetBrightness(b hal.Brightness) error {
	p.calls = append(p.calls, "brightness:"+b.String())
	if p.brightnessErr != nil {
		return p.brightnessErr
	}
	p.brightness = b
	return nil
}

func (p *fakePanel) SetInvert(inv bool) error {
	if inv {
		p.calls = append(p.calls, "invert:on")
	} else {
		p.calls = append(p.calls, "invert:off")
	}
	if p.invertErr != nil {
		return p.invertErr
	}
	p.inverted = inv
	return nil
}

func (p *fakePanel) ClearBuffer() {
	p.calls = append(p.calls, "clear")
	p.buf.Clear()
}

type sink struct{ lines []string }

func (s *sink) WriteLineString(v string) { s.lines = append(s.lines, v) }
func (s *sink) WriteLineBytes(b []byte)  { s.lines = append(s.lines, string(b)) }

func (s *sink) has(substr string) bool {
	for _, l := range s.lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

type stepFunc func(*kernel.Context)

func (f stepFunc) Step(ctx *kernel.Context) { f(ctx) }

type rig struct {
	rt    *kernel.Runtime
	q     *kernel.Queue[proto.Command]
	panel *fakePanel
	svc   *Service
	id    kernel.TaskID
	log   *sink
}

func newRig(t *testing.T) *rig {
	t.Helper()
	r := &rig{
		rt:    kernel.New("core0", &kernel.ManualClock{}),
		q:     kernel.NewQueue[proto.Command](4),
		panel: &fakePanel{},
		log:   &sink{},
	}
	r.svc = New(r.panel, r.q, logger.New(r.log, "core0/display"))
	id, err := r.rt.Spawn("display", r.svc)
	require.NoError(t, err)
	r.id = id
	return r
}

func (r *rig) send(t *testing.T, cmds ...proto.Command) {
	t.Helper()
	for _, c := range cmds {
		require.True(t, r.q.TrySend(c))
		r.rt.Poll()
	}
}

func TestInitSequence(t *testing.T) {
	r := newRig(t)
	r.rt.Poll()

	require.Equal(t, []string{"init", "brightness:normal", "clear", "display"}, r.panel.calls)
	require.Equal(t, kernel.TaskWaiting, r.rt.TaskState(r.id))
	require.True(t, r.log.has("INFO core0/display: Display ready"))
	require.Equal(t, InitialState(), r.svc.State())

	// Splash mark corners and the header text.
	require.True(t, r.panel.buf.Get(0, 0))
	require.True(t, r.panel.buf.Get(15, 15))
	require.False(t, r.panel.buf.Get(7, 1))
	lit := 0
	for x := int16(24); x < hal.PanelWidth; x++ {
		for y := int16(0); y < 16; y++ {
			if r.panel.buf.Get(x, y) {
				lit++
			}
		}
	}
	require.NotZero(t, lit, "header text not drawn")
}

func TestInitFailureHaltsOnlyDisplay(t *testing.T) {
	r := newRig(t)
	r.panel.initErr = errors.New("i2c nack")

	siblingSteps := 0
	sib, err := r.rt.Spawn("input0", stepFunc(func(ctx *kernel.Context) {
		siblingSteps++
		ctx.Sleep(0)
	}))
	require.NoError(t, err)

	var halted error
	r.rt.OnHalt(func(_ *kernel.Runtime, _ kernel.TaskID, _ string, err error) { halted = err })

	r.rt.Poll()
	r.rt.Poll()
	r.rt.Poll()

	require.Equal(t, kernel.TaskHalted, r.rt.TaskState(r.id))
	require.ErrorContains(t, halted, "i2c nack")
	require.True(t, r.log.has("display init: i2c nack"))
	require.Equal(t, []string{"init"}, r.panel.calls)
	require.NotEqual(t, kernel.TaskHalted, r.rt.TaskState(sib))
	require.Equal(t, 3, siblingSteps)
}

func TestCommandsReachPanel(t *testing.T) {
	r := newRig(t)
	r.rt.Poll()
	r.panel.calls = nil

	r.send(t, proto.Command0, proto.Command1, proto.Command1, proto.Command2, proto.Command0)

	require.Equal(t, []string{
		"invert:on",
		"brightness:bright",
		"brightness:brightest",
		"brightness:bright",
		"invert:off",
	}, r.panel.calls)
	require.Equal(t, State{Inverted: false, Brightness: hal.BrightnessBright}, r.svc.State())
	require.Equal(t, uint32(5), r.svc.Processed())
}

func TestBrightnessClampsAtEnds(t *testing.T) {
	r := newRig(t)
	r.rt.Poll()

	for i := 0; i < 10; i++ {
		r.send(t, proto.Command1)
	}
	require.Equal(t, hal.BrightnessBrightest, r.svc.State().Brightness)

	for i := 0; i < 10; i++ {
		r.send(t, proto.Command2)
	}
	require.Equal(t, hal.BrightnessDimmest, r.svc.State().Brightness)
	require.Equal(t, hal.BrightnessDimmest, r.panel.brightness)
}

func TestApplyFailureKeepsLoopAlive(t *testing.T) {
	r := newRig(t)
	r.rt.Poll()

	r.panel.brightnessErr = errors.New("bus busy")
	r.send(t, proto.Command1)
	require.Equal(t, uint32(1), r.svc.ApplyErrors())
	require.Equal(t, hal.BrightnessBright, r.svc.State().Brightness)
	require.True(t, r.log.has("apply COMMAND1: bus busy"))
	require.Equal(t, kernel.TaskWaiting, r.rt.TaskState(r.id))

	r.panel.brightnessErr = nil
	r.send(t, proto.Command0)
	require.True(t, r.panel.inverted)
	require.Equal(t, uint32(1), r.svc.ApplyErrors())
	require.Equal(t, uint32(2), r.svc.Processed())
}

func TestStateApplyProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 200; trial++ {
		s := InitialState()
		level := int(hal.BrightnessNormal)
		toggles := 0
		n := rng.Intn(64)
		for i := 0; i < n; i++ {
			cmd := proto.Command(rng.Intn(proto.CommandCount))
			s = s.Apply(cmd)
			switch cmd {
			case proto.Command0:
				toggles++
			case proto.Command1:
				level = min(level+1, int(hal.BrightnessBrightest))
			case proto.Command2:
				level = max(level-1, int(hal.BrightnessDimmest))
			}
			require.LessOrEqual(t, s.Brightness, hal.BrightnessBrightest)
			require.GreaterOrEqual(t, s.Brightness, hal.BrightnessDimmest)
		}
		require.Equal(t, toggles%2 == 1, s.Inverted)
		require.Equal(t, hal.Brightness(level), s.Brightness)
	}
}

func TestUnknownCommandIgnored(t *testing.T) {
	s := InitialState()
	require.Equal(t, s, s.Apply(proto.Command(9)))
}

func TestPrimitiveBounds(t *testing.T) {
	p := &fakePanel{}
	require.ErrorIs(t, Image{X: 120, Y: 0, Width: 16, Data: splashMark}.Draw(p), ErrOutOfBounds)
	require.ErrorIs(t, Image{Width: 0, Data: splashMark}.Draw(p), ErrOutOfBounds)
	require.ErrorIs(t, Text{X: 0, Y: 60, Str: "x"}.Draw(p), ErrOutOfBounds)
	require.NoError(t, Image{X: 112, Y: 48, Width: 16, Data: splashMark}.Draw(p))
	require.Equal(t, int16(16), Image{Width: 16, Data: splashMark}.Height())
}
