package hal

import "errors"

// Logger writes newline-delimited log lines.
//
// Implementations must be safe to call from both cores.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// ErrNoDevice indicates that a peripheral is not fitted or not wired up.
var ErrNoDevice = errors.New("hal: device not present")

// ButtonCount is the number of user buttons on the board.
const ButtonCount = 3

// HAL provides the only contact point between the firmware and the board.
//
// Each accessor hands out a peripheral handle that the caller then owns. The
// boot code calls every accessor exactly once.
type HAL interface {
	Logger() Logger
	Buttons() []GPIOPin
	Panel() Panel
	Radio() RadioBoard
	Card() Card
}
