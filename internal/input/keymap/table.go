package keymap

import "github.com/dshills/stormux/internal/input/key"

// Control bytes with a fixed meaning for the session.
var (
	// InterruptBytes is sent when leaving command mode and for the Cancel key.
	InterruptBytes = []byte{0x03}

	// SuspendBytes is forwarded when the suspend signal arrives.
	SuspendBytes = []byte{0x1a}
)

// sequences maps every named key that reaches a session to the xterm
// sequence a program running under TERM=xterm expects.
var sequences = map[key.Key]string{
	key.KeyEscape:    "\x1b",
	key.KeyEnter:     "\r",
	key.KeyTab:       "\t",
	key.KeyBackspace: "\x7f",
	key.KeyDelete:    "\x1b[3~",
	key.KeyInsert:    "\x1b[2~",
	key.KeyHome:      "\x1b[H",
	key.KeyEnd:       "\x1b[F",
	key.KeyPageUp:    "\x1b[5~",
	key.KeyPageDown:  "\x1b[6~",
	key.KeyUp:        "\x1b[A",
	key.KeyDown:      "\x1b[B",
	key.KeyRight:     "\x1b[C",
	key.KeyLeft:      "\x1b[D",
	key.KeyF1:        "\x1bOP",
	key.KeyF2:        "\x1bOQ",
	key.KeyF3:        "\x1bOR",
	key.KeyF4:        "\x1bOS",
	key.KeyF5:        "\x1b[15~",
	key.KeyF6:        "\x1b[17~",
	key.KeyF7:        "\x1b[18~",
	key.KeyF8:        "\x1b[19~",
	key.KeyF9:        "\x1b[20~",
	key.KeyF10:       "\x1b[21~",
	key.KeyF11:       "\x1b[23~",
	key.KeyF12:       "\x1b[24~",
	key.KeyCancel:    string(InterruptBytes),
	key.KeyClear:     "\x0c",
}

// Sequence returns the byte sequence for a named key.
func Sequence(k key.Key) ([]byte, bool) {
	seq, ok := sequences[k]
	if !ok {
		return nil, false
	}
	return []byte(seq), true
}
