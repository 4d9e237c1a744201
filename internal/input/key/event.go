package key

import (
	"fmt"
	"time"
	"unicode"
)

// Event represents a single key press event.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// NewEvent creates a key event with the current timestamp.
func NewEvent(key Key, r rune, mods Modifier) Event {
	return Event{
		Key:       key,
		Rune:      r,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// NewRuneEvent creates a key event for a character.
func NewRuneEvent(r rune) Event {
	return NewEvent(KeyRune, r, ModNone)
}

// NewSpecialEvent creates a key event for a named key.
func NewSpecialEvent(key Key) Event {
	return NewEvent(key, 0, ModNone)
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune
}

// IsChar returns true if this is a printable character.
func (e Event) IsChar() bool {
	return e.IsRune() && unicode.IsPrint(e.Rune)
}

// Equals returns true if two events represent the same key press.
// Timestamps are not compared.
func (e Event) Equals(other Event) bool {
	return e.Key == other.Key &&
		e.Rune == other.Rune &&
		e.Modifiers == other.Modifiers
}

// String returns a short representation such as "a", "Ctrl+Up" or "U+0003".
func (e Event) String() string {
	var name string
	switch {
	case e.IsChar():
		name = string(e.Rune)
	case e.IsRune():
		name = fmt.Sprintf("U+%04X", e.Rune)
	default:
		name = e.Key.String()
	}
	if mods := e.Modifiers.String(); mods != "" {
		return mods + "+" + name
	}
	return name
}
