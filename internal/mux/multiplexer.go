package mux

import (
	"errors"
	"fmt"

	"github.com/dshills/stormux/internal/input/keymap"
	"github.com/dshills/stormux/internal/input/mode"
	"github.com/dshills/stormux/internal/integration/process"
	"github.com/dshills/stormux/internal/integration/terminal"
)

// DefaultTitleRefresh is the number of frames between title recomputes.
const DefaultTitleRefresh = 60

// ErrSessionCreate wraps a failure to start a session. It is fatal.
var ErrSessionCreate = errors.New("mux: create session")

// Option configures a Multiplexer.
type Option func(*Multiplexer)

// WithScrollStep sets the rows moved per scroll key.
func WithScrollStep(step int) Option {
	return func(m *Multiplexer) {
		m.translator = keymap.NewTranslator(step)
	}
}

// WithTitleRefresh sets the number of frames between title recomputes.
func WithTitleRefresh(frames int) Option {
	return func(m *Multiplexer) {
		m.SetTitleRefresh(frames)
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l Logger) Option {
	return func(m *Multiplexer) {
		if l != nil {
			m.log = l
		}
	}
}

// historyCache is the frame computed for one session at one offset.
type historyCache struct {
	valid   bool
	session string
	offset  int
	frame   terminal.Frame
}

// Multiplexer owns the sessions and the input state machine.
type Multiplexer struct {
	factory  Factory
	titles   process.TitleResolver
	prompter Prompter
	log      Logger

	width  int
	height int

	sessions []Session
	focused  int

	mode       *mode.Machine
	translator *keymap.Translator

	offset int
	cache  historyCache

	labels       []string
	titleRefresh int
	titleCounter int
}

// New creates an empty multiplexer whose sessions are width by height.
func New(factory Factory, titles process.TitleResolver, prompter Prompter, width, height int, opts ...Option) *Multiplexer {
	m := &Multiplexer{
		factory:      factory,
		titles:       titles,
		prompter:     prompter,
		log:          nopLogger{},
		width:        width,
		height:       height,
		mode:         mode.NewMachine(),
		translator:   keymap.NewTranslator(keymap.DefaultScrollStep),
		titleRefresh: DefaultTitleRefresh,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.mode.OnChange(func(from, to mode.Mode) {
		m.log.Debug("mode %s -> %s", from, to)
	})
	return m
}

// Size returns the size sessions are created with.
func (m *Multiplexer) Size() (width, height int) {
	return m.width, m.height
}

// AddSession starts a session, appends it and focuses it.
func (m *Multiplexer) AddSession() (Session, error) {
	s, err := m.factory.New(m.width, m.height)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionCreate, err)
	}
	if err := s.Keepalive(); err != nil {
		m.log.Warn("keepalive %d: %v", s.PID(), err)
	}
	m.sessions = append(m.sessions, s)
	m.setFocus(len(m.sessions) - 1)
	m.log.Debug("session %s started pid=%d count=%d", s.ID(), s.PID(), len(m.sessions))
	return s, nil
}

// Current returns the focused session, or nil when there are none.
func (m *Multiplexer) Current() Session {
	if len(m.sessions) == 0 {
		return nil
	}
	return m.sessions[m.focused]
}

// FocusedIndex returns the position of the focused session.
func (m *Multiplexer) FocusedIndex() int {
	return m.focused
}

// Sessions returns the sessions in order.
func (m *Multiplexer) Sessions() []Session {
	return append([]Session(nil), m.sessions...)
}

// Len returns the number of sessions.
func (m *Multiplexer) Len() int {
	return len(m.sessions)
}

// Mode returns the active input mode.
func (m *Multiplexer) Mode() mode.Mode {
	return m.mode.Current()
}

// Offset returns the scrollback offset.
func (m *Multiplexer) Offset() int {
	return m.offset
}

// ScrollStep returns the rows moved per scroll key.
func (m *Multiplexer) ScrollStep() int {
	return m.translator.ScrollStep()
}

// SetScrollStep changes the rows moved per scroll key.
func (m *Multiplexer) SetScrollStep(step int) {
	m.translator = keymap.NewTranslator(step)
}

// SetTitleRefresh changes the number of frames between title recomputes.
func (m *Multiplexer) SetTitleRefresh(frames int) {
	if frames <= 0 {
		frames = DefaultTitleRefresh
	}
	m.titleRefresh = frames
}

// Focus moves focus to index, or to the current position plus relative when
// relative is non-zero. The index wraps in both directions. Focus returns to
// passthrough mode and the live view.
func (m *Multiplexer) Focus(index, relative int) {
	n := len(m.sessions)
	if n == 0 {
		return
	}
	if relative != 0 {
		index = m.focused + relative
	}
	m.setFocus(((index % n) + n) % n)
}

func (m *Multiplexer) setFocus(i int) {
	m.focused = i
	m.offset = 0
	m.cache = historyCache{}
	m.mode.Reset()
}

// ToggleCancel applies the cancel transition. Leaving command mode sends one
// interrupt to the focused session.
func (m *Multiplexer) ToggleCancel() {
	tr := m.mode.Cancel()
	if tr.Effect == mode.EffectInterrupt {
		m.write(keymap.InterruptBytes)
	}
}

// Forward writes b to the focused session regardless of mode.
func (m *Multiplexer) Forward(b []byte) {
	m.write(b)
}

func (m *Multiplexer) write(b []byte) {
	s := m.Current()
	if s == nil {
		return
	}
	if err := s.Write(b); err != nil {
		m.log.Debug("write to %d: %v", s.PID(), err)
	}
}
