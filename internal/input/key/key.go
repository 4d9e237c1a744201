package key

import "fmt"

// Key represents a keyboard key.
// For character keys, use KeyRune and set the Rune field in Event.
type Key uint16

const (
	// KeyNone represents no key.
	KeyNone Key = iota

	// Editing keys
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyInsert

	// Navigation keys
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	// Arrow keys
	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	// Function keys
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	// KeyCancel is a dedicated cancel/interrupt key.
	KeyCancel
	// KeyClear is a dedicated clear-screen key.
	KeyClear

	// KeyScrollBack and KeyScrollForward move the local scrollback view.
	// They never reach a session.
	KeyScrollBack
	KeyScrollForward

	// KeyRune is used for character keys (letters, numbers, punctuation,
	// control characters). The actual character is stored in Event.Rune.
	KeyRune
)

var keyNames = map[Key]string{
	KeyNone:          "None",
	KeyEscape:        "Escape",
	KeyEnter:         "Enter",
	KeyTab:           "Tab",
	KeyBackspace:     "Backspace",
	KeyDelete:        "Delete",
	KeyInsert:        "Insert",
	KeyHome:          "Home",
	KeyEnd:           "End",
	KeyPageUp:        "PageUp",
	KeyPageDown:      "PageDown",
	KeyUp:            "Up",
	KeyDown:          "Down",
	KeyLeft:          "Left",
	KeyRight:         "Right",
	KeyF1:            "F1",
	KeyF2:            "F2",
	KeyF3:            "F3",
	KeyF4:            "F4",
	KeyF5:            "F5",
	KeyF6:            "F6",
	KeyF7:            "F7",
	KeyF8:            "F8",
	KeyF9:            "F9",
	KeyF10:           "F10",
	KeyF11:           "F11",
	KeyF12:           "F12",
	KeyCancel:        "Cancel",
	KeyClear:         "Clear",
	KeyScrollBack:    "ScrollBack",
	KeyScrollForward: "ScrollForward",
	KeyRune:          "Rune",
}

// String returns a human-readable name for the key.
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", k)
}

// IsFunctionKey returns true if this is a function key (F1-F12).
func (k Key) IsFunctionKey() bool {
	return k >= KeyF1 && k <= KeyF12
}

// IsArrowKey returns true if this is an arrow key.
func (k Key) IsArrowKey() bool {
	return k >= KeyUp && k <= KeyRight
}

// IsScroll returns true for the local scrollback keys.
func (k Key) IsScroll() bool {
	return k == KeyScrollBack || k == KeyScrollForward
}

// Named returns every named key, in declaration order.
func Named() []Key {
	keys := make([]Key, 0, int(KeyRune)-1)
	for k := KeyEscape; k < KeyRune; k++ {
		keys = append(keys, k)
	}
	return keys
}
