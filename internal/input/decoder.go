package input

// Command is a logical player command.
type Command int

const (
	None Command = iota
	Left
	Right
	Rotate
	Down
	Drop
	Quit
	ToggleHelp
	ToggleNext
	ToggleColor
)

var commandNames = [...]string{"none", "left", "right", "rotate", "down", "drop", "quit", "toggle-help", "toggle-next", "toggle-color"}

func (c Command) String() string {
	if c < 0 || int(c) >= len(commandNames) {
		return "unknown"
	}
	return commandNames[c]
}

const (
	keyEscape = 0x1b
	keyCtrlC  = 0x03
)

// arrows maps the final byte of an ESC [ X sequence. Other final bytes are
// looked up in keys as they are, without lower-casing.
var arrows = map[byte]Command{
	'A': Rotate,
	'B': Down,
	'C': Right,
	'D': Left,
}

// keys maps single (lower-cased) bytes.
var keys = map[byte]Command{
	keyCtrlC: Quit,
	'q':      Quit,
	'a':      Left,
	'd':      Right,
	's':      Rotate,
	' ':      Drop,
	'h':      ToggleHelp,
	'n':      ToggleNext,
	'c':      ToggleColor,
}

// Decoder turns a byte stream into commands. It remembers the last three
// bytes so that arrow keys (ESC [ A..D) decode to the same commands as the
// letter keys. The zero value is ready to use.
type Decoder struct {
	window [3]byte // window[0] is the newest byte
}

// Feed consumes one byte and returns the command it completes, or None.
func (d *Decoder) Feed(b byte) Command {
	d.window[2] = d.window[1]
	d.window[1] = d.window[0]
	d.window[0] = b

	if d.window[2] == keyEscape && d.window[1] == '[' {
		// Consume the sequence so its tail cannot start another one.
		d.window = [3]byte{}
		if cmd, ok := arrows[b]; ok {
			return cmd
		}
		return keys[b]
	}
	return keys[toLower(b)]
}

func toLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}
