package keymap

import "github.com/dshills/stormux/internal/input/key"

// Command is a multiplexer command token.
type Command uint8

const (
	CmdNone Command = iota
	CmdNew
	CmdSelect
	CmdCloseAll
	CmdFocusNext
	CmdFocusPrevious
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case CmdNew:
		return "new"
	case CmdSelect:
		return "select"
	case CmdCloseAll:
		return "close-all"
	case CmdFocusNext:
		return "focus-next"
	case CmdFocusPrevious:
		return "focus-previous"
	default:
		return "none"
	}
}

var runeCommands = map[rune]Command{
	'n': CmdNew,
	'i': CmdSelect,
	'e': CmdCloseAll,
	'q': CmdCloseAll,
}

// CommandFor maps a key event to the command it triggers in command mode.
func CommandFor(ev key.Event) Command {
	switch ev.Key {
	case key.KeyRight:
		return CmdFocusNext
	case key.KeyLeft:
		return CmdFocusPrevious
	case key.KeyRune:
		return runeCommands[ev.Rune]
	}
	return CmdNone
}
