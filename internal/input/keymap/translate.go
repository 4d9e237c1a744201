package keymap

import (
	"unicode/utf8"

	"github.com/dshills/stormux/internal/input/key"
)

// DefaultScrollStep is the number of rows one scroll key moves the view.
const DefaultScrollStep = 5

// ActionKind identifies what a translated key asks for.
type ActionKind uint8

const (
	// ActionNone means the event carries nothing to act on.
	ActionNone ActionKind = iota

	// ActionBytes carries bytes for the focused session.
	ActionBytes

	// ActionScroll carries a scrollback delta.
	ActionScroll
)

// Action is the result of translating one key event.
type Action struct {
	Kind  ActionKind
	Bytes []byte
	Delta int
}

// Translator maps key events to actions.
type Translator struct {
	step int
}

// NewTranslator creates a translator that scrolls by step rows.
// A non-positive step selects DefaultScrollStep.
func NewTranslator(step int) *Translator {
	if step <= 0 {
		step = DefaultScrollStep
	}
	return &Translator{step: step}
}

// ScrollStep returns the rows moved per scroll key.
func (t *Translator) ScrollStep() int {
	return t.step
}

// Translate maps a key event to an action. Scroll keys always produce a
// delta and never bytes.
func (t *Translator) Translate(ev key.Event) Action {
	switch ev.Key {
	case key.KeyNone:
		return Action{Kind: ActionNone}
	case key.KeyScrollBack:
		return Action{Kind: ActionScroll, Delta: t.step}
	case key.KeyScrollForward:
		return Action{Kind: ActionScroll, Delta: -t.step}
	case key.KeyRune:
		if !utf8.ValidRune(ev.Rune) {
			return Action{Kind: ActionNone}
		}
		return Action{Kind: ActionBytes, Bytes: utf8.AppendRune(nil, ev.Rune)}
	}

	if seq, ok := Sequence(ev.Key); ok {
		return Action{Kind: ActionBytes, Bytes: seq}
	}
	return Action{Kind: ActionNone}
}
