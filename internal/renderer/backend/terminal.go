package backend

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/stormux/internal/integration/terminal"
)

// Terminal implements Backend using tcell.
type Terminal struct {
	screen tcell.Screen
	mu     sync.Mutex
}

// NewTerminal creates a backend on the controlling terminal.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{screen: screen}, nil
}

// NewTerminalWithScreen creates a backend on an existing screen, such as a
// tcell.SimulationScreen.
func NewTerminalWithScreen(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.SetStyle(tcell.StyleDefault)
	t.screen.Clear()
	return nil
}

func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Fini()
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

// SetCell draws one cell. Continuation cells of wide runes are skipped;
// tcell lays out the wide rune itself.
func (t *Terminal) SetCell(x, y int, cell terminal.Cell) {
	if cell.Width == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	r := cell.Rune
	if r == 0 || cell.Attrs.Has(terminal.AttrHidden) {
		r = ' '
	}
	t.screen.SetContent(x, y, r, nil, convertStyle(cell))
}

func (t *Terminal) GetCell(x, y int) terminal.Cell {
	t.mu.Lock()
	defer t.mu.Unlock()

	mainc, _, style, width := t.screen.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
	cell := convertTcellStyle(style)
	cell.Rune = mainc
	cell.Width = width
	return cell
}

func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
}

func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Show()
}

func (t *Terminal) Sync() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Sync()
}

func (t *Terminal) ShowCursor(x, y int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.ShowCursor(x, y)
}

func (t *Terminal) HideCursor() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.HideCursor()
}

// PollEvent blocks for the next tcell event. It returns EventClosed once
// the screen has been finalized.
func (t *Terminal) PollEvent() Event {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return Event{Type: EventClosed}
		}
		if out := convertEvent(ev); out.Type != EventNone {
			return out
		}
	}
}

func (t *Terminal) PostEvent(event Event) {
	// Only key events can be posted
	if event.Type != EventKey {
		return
	}
	k, r, mods := toTcellKey(event.Key)
	_ = t.screen.PostEvent(tcell.NewEventKey(k, r, mods)) // best-effort; event queue may be full
}

// convertEvent converts tcell events to our Event type.
func convertEvent(ev tcell.Event) Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return KeyEvent(convertKey(e))
	case *tcell.EventResize:
		w, h := e.Size()
		return Event{Type: EventResize, Width: w, Height: h}
	default:
		return Event{Type: EventNone}
	}
}
