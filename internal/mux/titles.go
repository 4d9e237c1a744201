package mux

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Titles returns one label per session. It is meant to be called once per
// rendered frame: labels are recomputed on the first call after
// ResetTitleThrottle and then once every title refresh interval.
func (m *Multiplexer) Titles() []string {
	if m.titleCounter <= 0 || len(m.labels) != len(m.sessions) {
		m.refreshTitles()
		m.titleCounter = m.titleRefresh
	}
	m.titleCounter--
	return append([]string(nil), m.labels...)
}

// ResetTitleThrottle forces the next Titles call to recompute.
func (m *Multiplexer) ResetTitleThrottle() {
	m.titleCounter = 0
}

func (m *Multiplexer) refreshTitles() {
	m.labels = m.labels[:0]
	if m.titles == nil {
		for _, s := range m.sessions {
			m.labels = append(m.labels, strconv.Itoa(s.PID()))
		}
		return
	}
	if err := m.titles.Refresh(); err != nil {
		m.log.Warn("process snapshot: %v", err)
	}
	for i, s := range m.sessions {
		m.labels = append(m.labels, m.titles.Resolve(s.PID(), i == m.focused))
	}
}

// StatusLine renders the session list as "_0:label_ 1:label", the focused
// entry wrapped in underscores, padded or cut to width display cells.
func (m *Multiplexer) StatusLine(width int) string {
	var b strings.Builder
	for i, label := range m.Titles() {
		if i > 0 {
			b.WriteByte(' ')
		}
		entry := strconv.Itoa(i) + ":" + label
		if i == m.focused {
			entry = "_" + entry + "_"
		}
		b.WriteString(entry)
	}
	if width <= 0 {
		return ""
	}
	line := runewidth.Truncate(b.String(), width, "")
	return runewidth.FillRight(line, width)
}
