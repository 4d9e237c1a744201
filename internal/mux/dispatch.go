package mux

import (
	"strconv"
	"strings"

	"github.com/dshills/stormux/internal/input/key"
	"github.com/dshills/stormux/internal/input/keymap"
	"github.com/dshills/stormux/internal/input/mode"
)

// Dispatch routes one key event. Scroll keys move the view in either mode.
// In passthrough mode other keys go to the focused session and return the
// view to live. In command mode they select a command. Only a failure to
// start a session is returned.
func (m *Multiplexer) Dispatch(ev key.Event) error {
	action := m.translator.Translate(ev)
	if action.Kind == keymap.ActionScroll {
		m.Scroll(action.Delta)
		return nil
	}

	if m.mode.Current() == mode.Command {
		return m.Execute(keymap.CommandFor(ev))
	}

	if action.Kind == keymap.ActionBytes {
		m.write(action.Bytes)
		m.offset = 0
	}
	return nil
}

// Scroll moves the scrollback offset by delta rows, never below zero.
func (m *Multiplexer) Scroll(delta int) {
	m.offset = max(m.offset+delta, 0)
}

// Execute runs a command. Every command forces a title recompute.
func (m *Multiplexer) Execute(cmd keymap.Command) error {
	if cmd == keymap.CmdNone {
		return nil
	}
	m.log.Debug("command %s", cmd)
	m.ResetTitleThrottle()

	switch cmd {
	case keymap.CmdNew:
		if _, err := m.AddSession(); err != nil {
			return err
		}
	case keymap.CmdSelect:
		m.selectByIndex()
	case keymap.CmdCloseAll:
		m.factory.CloseAll()
	case keymap.CmdFocusNext:
		m.Focus(0, 1)
	case keymap.CmdFocusPrevious:
		m.Focus(0, -1)
	}
	return nil
}

// selectByIndex asks for a session index. Cancelled prompts and input that
// is not a number are ignored.
func (m *Multiplexer) selectByIndex() {
	if m.prompter == nil {
		return
	}
	text, ok := m.prompter.Prompt("enter index:")
	if !ok {
		return
	}
	index, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		m.log.Debug("select: %v", err)
		return
	}
	m.Focus(index, 0)
}
