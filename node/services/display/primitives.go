package display

import (
	"errors"
	"fmt"
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var ErrOutOfBounds = errors.New("display: primitive out of bounds")

var (
	On  = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	Off = color.RGBA{A: 0xFF}
)

// textAscent is the distance from the top of a proggy TinySZ8pt7b line to
// its baseline.
const textAscent = 8

// Primitive is something that can be drawn into a panel buffer.
type Primitive interface {
	Draw(dst drivers.Displayer) error
}

// Image is a 1bpp bitmap, rows packed MSB first and padded to whole bytes.
// Set bits draw On, clear bits draw Off.
type Image struct {
	X, Y  int16
	Width int16
	Data  []byte
}

func (im Image) stride() int { return (int(im.Width) + 7) / 8 }

// Height returns the number of complete rows in Data.
func (im Image) Height() int16 {
	if im.Width <= 0 {
		return 0
	}
	return int16(len(im.Data) / im.stride())
}

func (im Image) Draw(dst drivers.Displayer) error {
	w, h := dst.Size()
	rows := im.Height()
	if im.Width <= 0 || rows == 0 {
		return fmt.Errorf("image %dx%d: %w", im.Width, rows, ErrOutOfBounds)
	}
	if im.X < 0 || im.Y < 0 || im.X+im.Width > w || im.Y+rows > h {
		return fmt.Errorf("image at (%d,%d): %w", im.X, im.Y, ErrOutOfBounds)
	}
	stride := im.stride()
	for y := int16(0); y < rows; y++ {
		row := im.Data[int(y)*stride:]
		for x := int16(0); x < im.Width; x++ {
			c := Off
			if row[x/8]&(0x80>>uint(x%8)) != 0 {
				c = On
			}
			dst.SetPixel(im.X+x, im.Y+y, c)
		}
	}
	return nil
}

// Text is a single line whose top-left corner is at (X, Y).
type Text struct {
	X, Y int16
	Str  string
}

func (t Text) Draw(dst drivers.Displayer) error {
	w, h := dst.Size()
	if t.X < 0 || t.Y < 0 || t.X >= w || t.Y+textAscent > h {
		return fmt.Errorf("text at (%d,%d): %w", t.X, t.Y, ErrOutOfBounds)
	}
	tinyfont.WriteLine(dst, &proggy.TinySZ8pt7b, t.X, t.Y+textAscent, t.Str, On)
	return nil
}

// splashMark is the 16x16 crossed box shown in the top-left corner.
var splashMark = []byte{
	0b11111111, 0b11111111,
	0b11000000, 0b00000011,
	0b10100000, 0b00000101,
	0b10010000, 0b00001001,
	0b10001000, 0b00010001,
	0b10000100, 0b00100001,
	0b10000010, 0b01000001,
	0b10000001, 0b10000001,
	0b10000001, 0b10000001,
	0b10000010, 0b01000001,
	0b10000100, 0b00100001,
	0b10001000, 0b00010001,
	0b10010000, 0b00001001,
	0b10100000, 0b00000101,
	0b11000000, 0b00000011,
	0b11111111, 0b11111111,
}
