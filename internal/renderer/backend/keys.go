package backend

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/stormux/internal/input/key"
)

// namedKeys maps tcell keys onto the closed key enumeration. Control codes
// that are not listed here reach the session as control runes. tcell folds
// KeyBackspace2 (DEL) into KeyBackspace, so only the latter is listed.
var namedKeys = map[tcell.Key]key.Key{
	tcell.KeyEscape:    key.KeyEscape,
	tcell.KeyEnter:     key.KeyEnter,
	tcell.KeyTab:       key.KeyTab,
	tcell.KeyBackspace: key.KeyBackspace,
	tcell.KeyDelete:     key.KeyDelete,
	tcell.KeyInsert:     key.KeyInsert,
	tcell.KeyHome:       key.KeyHome,
	tcell.KeyEnd:        key.KeyEnd,
	tcell.KeyPgUp:       key.KeyPageUp,
	tcell.KeyPgDn:       key.KeyPageDown,
	tcell.KeyUp:         key.KeyUp,
	tcell.KeyDown:       key.KeyDown,
	tcell.KeyLeft:       key.KeyLeft,
	tcell.KeyRight:      key.KeyRight,
	tcell.KeyF1:         key.KeyF1,
	tcell.KeyF2:         key.KeyF2,
	tcell.KeyF3:         key.KeyF3,
	tcell.KeyF4:         key.KeyF4,
	tcell.KeyF5:         key.KeyF5,
	tcell.KeyF6:         key.KeyF6,
	tcell.KeyF7:         key.KeyF7,
	tcell.KeyF8:         key.KeyF8,
	tcell.KeyF9:         key.KeyF9,
	tcell.KeyF10:        key.KeyF10,
	tcell.KeyF11:        key.KeyF11,
	tcell.KeyF12:        key.KeyF12,
	tcell.KeyCancel:     key.KeyCancel,
	tcell.KeyClear:      key.KeyClear,
}

var tcellKeys = func() map[key.Key]tcell.Key {
	m := make(map[key.Key]tcell.Key, len(namedKeys))
	for tk, k := range namedKeys {
		m[k] = tk
	}
	return m
}()

// convertKey converts a tcell key event. Shift+PageUp and Shift+PageDown
// become the scrollback keys.
func convertKey(ev *tcell.EventKey) key.Event {
	mods := convertMod(ev.Modifiers())
	k := ev.Key()
	if k == tcell.KeyBackspace2 {
		k = tcell.KeyBackspace
	}

	switch {
	case k == tcell.KeyRune:
		return key.NewEvent(key.KeyRune, controlRune(ev.Rune(), mods), mods)
	case k == tcell.KeyPgUp && mods.Has(key.ModShift):
		return key.NewEvent(key.KeyScrollBack, 0, mods)
	case k == tcell.KeyPgDn && mods.Has(key.ModShift):
		return key.NewEvent(key.KeyScrollForward, 0, mods)
	}

	if named, ok := namedKeys[k]; ok {
		return key.NewEvent(named, 0, mods)
	}
	switch {
	case k >= tcell.KeyCtrlSpace && k <= tcell.KeyCtrlUnderscore:
		// A tty reports Ctrl+C as KeyCtrlC, which sits KeyCtrlSpace above 0x03.
		return key.NewEvent(key.KeyRune, rune(k-tcell.KeyCtrlSpace), mods)
	case k >= tcell.KeyNUL && k <= tcell.KeyUS:
		return key.NewEvent(key.KeyRune, rune(k), mods)
	}
	return key.NewEvent(key.KeyNone, 0, mods)
}

// controlRune folds Ctrl+letter reported as a plain rune into its control
// code.
func controlRune(r rune, mods key.Modifier) rune {
	if !mods.Has(key.ModCtrl) {
		return r
	}
	switch {
	case r >= 'a' && r <= 'z':
		return r - 'a' + 1
	case r >= 'A' && r <= 'Z':
		return r - 'A' + 1
	}
	return r
}

// toTcellKey is the inverse of convertKey.
func toTcellKey(ev key.Event) (tcell.Key, rune, tcell.ModMask) {
	mods := convertToTcellMod(ev.Modifiers)
	switch ev.Key {
	case key.KeyRune:
		if ev.Rune >= 0 && ev.Rune < ' ' {
			return tcell.KeyCtrlSpace + tcell.Key(ev.Rune), 0, mods | tcell.ModCtrl
		}
		return tcell.KeyRune, ev.Rune, mods
	case key.KeyScrollBack:
		return tcell.KeyPgUp, 0, mods | tcell.ModShift
	case key.KeyScrollForward:
		return tcell.KeyPgDn, 0, mods | tcell.ModShift
	}
	if tk, ok := tcellKeys[ev.Key]; ok {
		return tk, 0, mods
	}
	return tcell.KeyNUL, 0, mods
}

// convertMod converts tcell modifier mask to key modifiers.
func convertMod(m tcell.ModMask) key.Modifier {
	var result key.Modifier
	if m&tcell.ModShift != 0 {
		result |= key.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		result |= key.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		result |= key.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		result |= key.ModMeta
	}
	return result
}

// convertToTcellMod converts key modifiers to tcell.ModMask.
func convertToTcellMod(m key.Modifier) tcell.ModMask {
	var result tcell.ModMask
	if m.Has(key.ModShift) {
		result |= tcell.ModShift
	}
	if m.Has(key.ModCtrl) {
		result |= tcell.ModCtrl
	}
	if m.Has(key.ModAlt) {
		result |= tcell.ModAlt
	}
	if m.Has(key.ModMeta) {
		result |= tcell.ModMeta
	}
	return result
}
