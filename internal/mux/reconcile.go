package mux

// Reconcile drops every session whose process has exited. If the focused
// session was among them, focus moves to the first remaining session. The
// input mode is left alone. It reports whether any session remains.
func (m *Multiplexer) Reconcile() bool {
	current := m.Current()
	focusedLost := false
	kept := m.sessions[:0]
	for _, s := range m.sessions {
		if s.IsAlive() {
			kept = append(kept, s)
			continue
		}
		if s == current {
			focusedLost = true
		}
		m.log.Debug("session %s exited pid=%d", s.ID(), s.PID())
	}
	removed := len(m.sessions) - len(kept)
	clear(m.sessions[len(kept):])
	m.sessions = kept

	if removed == 0 {
		return len(m.sessions) > 0
	}
	m.ResetTitleThrottle()
	if focusedLost || len(m.sessions) == 0 {
		m.focused = 0
		m.offset = 0
		m.cache = historyCache{}
		return len(m.sessions) > 0
	}
	for i, s := range m.sessions {
		if s == current {
			m.focused = i
			break
		}
	}
	return true
}
