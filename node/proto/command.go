package proto

// Command is a control code carried from the input tasks to the display task.
type Command uint8

const (
	// Command0 toggles display inversion.
	Command0 Command = iota
	// Command1 raises display brightness one step.
	Command1
	// Command2 lowers display brightness one step.
	Command2
)

// CommandCount is the number of defined commands, one per button.
const CommandCount = 3

func (c Command) String() string {
	switch c {
	case Command0:
		return "COMMAND0"
	case Command1:
		return "COMMAND1"
	case Command2:
		return "COMMAND2"
	default:
		return "unknown"
	}
}

// Valid reports whether c is one of the defined commands.
func (c Command) Valid() bool { return c < CommandCount }

// ButtonCommand returns the command bound to button i.
func ButtonCommand(i int) (Command, bool) {
	if i < 0 || i >= CommandCount {
		return 0, false
	}
	return Command(i), true
}
