package mode

// ChangeCallback is called after the mode changes.
type ChangeCallback func(from, to Mode)

// Machine holds the current mode.
type Machine struct {
	current   Mode
	callbacks []ChangeCallback
}

// NewMachine creates a machine in Passthrough mode.
func NewMachine() *Machine {
	return &Machine{current: Passthrough}
}

// Current returns the active mode.
func (m *Machine) Current() Mode {
	return m.current
}

// OnChange registers a callback for mode changes.
func (m *Machine) OnChange(cb ChangeCallback) {
	m.callbacks = append(m.callbacks, cb)
}

// Cancel applies the cancel transition and returns it so the caller can
// perform its effect.
func (m *Machine) Cancel() Transition {
	tr := CancelFrom(m.current)
	m.set(tr.To)
	return tr
}

// Reset returns to Passthrough without any side effect.
func (m *Machine) Reset() {
	m.set(Passthrough)
}

func (m *Machine) set(to Mode) {
	from := m.current
	if from == to {
		return
	}
	m.current = to
	for _, cb := range m.callbacks {
		cb(from, to)
	}
}
