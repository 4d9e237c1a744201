package mux

import (
	"github.com/dshills/stormux/internal/input/mode"
	"github.com/dshills/stormux/internal/integration/terminal"
)

// HelpLines is the text shown in command mode.
var HelpLines = []string{
	"COMMAND MODE",
	"============",
	"ctrl+c: send ctrl+c (cancel) to focused session",
	"right/left: focus next/previous session",
	"n: create new session and focus it",
	"i: focus session by index",
	"e/q: exit",
	"shift+pgup/pgdn: scroll back/forward",
}

// CurrentFrame returns what should be drawn for the focused session: the
// help screen in command mode, the live screen when the offset is zero, and
// otherwise the history view, computed once per session and offset.
func (m *Multiplexer) CurrentFrame() terminal.Frame {
	if m.mode.Current() == mode.Command {
		return m.HelpFrame()
	}
	s := m.Current()
	if s == nil {
		return terminal.Frame{}
	}
	if m.offset == 0 {
		m.cache = historyCache{}
		return s.Dump()
	}
	if !m.cache.valid || m.cache.offset != m.offset || m.cache.session != s.ID() {
		m.cache = historyCache{
			valid:   true,
			session: s.ID(),
			offset:  m.offset,
			frame:   s.DumpHistory(m.offset),
		}
	}
	return m.cache.frame
}

// HelpFrame renders HelpLines at the session size without a cursor.
func (m *Multiplexer) HelpFrame() terminal.Frame {
	frame := terminal.Frame{Rows: make([][]terminal.Cell, 0, len(HelpLines))}
	for i, line := range HelpLines {
		if m.height > 0 && i >= m.height {
			break
		}
		row := make([]terminal.Cell, 0, len(line))
		for _, r := range line {
			row = append(row, terminal.Cell{Rune: r, Width: 1})
		}
		frame.Rows = append(frame.Rows, row)
	}
	return frame
}
