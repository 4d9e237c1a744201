package mode

// Mode is the active input mode.
type Mode uint8

const (
	// Passthrough forwards input to the focused session.
	Passthrough Mode = iota

	// Command interprets input as multiplexer commands.
	Command
)

// String returns the mode name shown in logs and the status line.
func (m Mode) String() string {
	switch m {
	case Passthrough:
		return "passthrough"
	case Command:
		return "command"
	default:
		return "unknown"
	}
}

// Effect is the side effect a transition asks the caller to perform.
type Effect uint8

const (
	// EffectNone requires nothing.
	EffectNone Effect = iota

	// EffectInterrupt requires one interrupt byte sequence to be written to
	// the focused session.
	EffectInterrupt
)

// Transition describes one edge of the cancel table.
type Transition struct {
	From   Mode
	To     Mode
	Effect Effect
}

var cancelTable = map[Mode]Transition{
	Passthrough: {From: Passthrough, To: Command, Effect: EffectNone},
	Command:     {From: Command, To: Passthrough, Effect: EffectInterrupt},
}

// CancelFrom returns the transition the cancel event takes from m.
func CancelFrom(m Mode) Transition {
	if tr, ok := cancelTable[m]; ok {
		return tr
	}
	return Transition{From: m, To: Passthrough, Effect: EffectNone}
}
