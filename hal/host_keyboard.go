//go:build !tinygo && cgo

package hal

import "github.com/hajimehoshi/ebiten/v2"

var buttonKeys = [ButtonCount]ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3}

// pollButtons holds a button pin high while its key is down.
func pollButtons(h *hostHAL) {
	for i, k := range buttonKeys {
		h.press(i, ebiten.IsKeyPressed(k))
	}
}
