//go:build !tinygo && cgo

package hal

import (
	"context"
	"errors"
	"image/color"

	"receiver/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

const windowScale = 4

var errWindowClosed = errors.New("window closed")

// RunWindow starts a desktop window that shows the OLED panel and maps keys
// 1, 2 and 3 to the buttons. It blocks until the window closes or run returns.
func RunWindow(cfg HostConfig, run func(ctx context.Context, h HAL) error) error {
	h := newHostHAL(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- run(ctx, h) }()

	g := &hostGame{h: h, done: done}
	ebiten.SetWindowTitle("Receiver " + buildinfo.String())
	ebiten.SetWindowSize(PanelWidth*windowScale, PanelHeight*windowScale)
	ebiten.SetTPS(60)
	err := ebiten.RunGame(g)
	cancel()
	if errors.Is(err, errWindowClosed) {
		return g.runErr
	}
	return err
}

type hostGame struct {
	h      *hostHAL
	done   <-chan error
	runErr error
	pix    []byte
	img    *ebiten.Image
}

func (g *hostGame) Update() error {
	select {
	case err := <-g.done:
		g.runErr = err
		return errWindowClosed
	default:
	}
	pollButtons(g.h)
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	if g.img == nil {
		g.img = ebiten.NewImage(PanelWidth, PanelHeight)
		g.pix = make([]byte, PanelWidth*PanelHeight*4)
	}

	buf, inverted, b := g.h.panel.snapshot()
	lit := litColor(b)

	for y := int16(0); y < PanelHeight; y++ {
		for x := int16(0); x < PanelWidth; x++ {
			on := buf.Get(x, y) != inverted
			j := (int(y)*PanelWidth + int(x)) * 4
			c := color.RGBA{A: 0xFF}
			if on {
				c = lit
			}
			g.pix[j+0] = c.R
			g.pix[j+1] = c.G
			g.pix[j+2] = c.B
			g.pix[j+3] = c.A
		}
	}
	g.img.WritePixels(g.pix)
	screen.DrawImage(g.img, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return PanelWidth, PanelHeight
}
