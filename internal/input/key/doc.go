// Package key provides key event types for the input system.
//
// This package defines the fundamental types for representing keyboard input:
//
//   - Key: a closed enumeration of named keys, plus KeyRune for characters
//   - Modifier: modifier keys (Ctrl, Alt, Shift, Meta)
//   - Event: a single key press with modifiers and timestamp
//
// Named keys cover everything a terminal-connected program distinguishes
// beyond plain characters: arrows, function keys, navigation keys, editing
// keys and the two local-only scrollback keys. Anything else arrives as a
// KeyRune event carrying the character.
package key
