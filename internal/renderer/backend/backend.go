// Package backend is the drawing and input boundary of the multiplexer.
//
// A Backend owns the physical terminal: it draws cells and delivers key and
// resize events. Terminal is the tcell implementation; NullBackend keeps
// everything in memory for tests.
package backend

import (
	"strings"
	"sync"

	"github.com/dshills/stormux/internal/input/key"
	"github.com/dshills/stormux/internal/integration/terminal"
)

// EventType identifies the type of backend event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventResize
	// EventClosed is returned forever once the backend has shut down.
	EventClosed
)

// Event represents a backend event.
type Event struct {
	Type EventType

	// Key event fields
	Key key.Event

	// Resize event fields
	Width, Height int
}

// KeyEvent wraps a key event.
func KeyEvent(ev key.Event) Event {
	return Event{Type: EventKey, Key: ev}
}

// Backend defines the interface for display backends.
type Backend interface {
	// Init takes over the terminal. Must be called before any other method.
	Init() error

	// Shutdown restores the terminal. PollEvent returns EventClosed afterwards.
	Shutdown()

	// Size returns the current terminal dimensions.
	Size() (width, height int)

	// SetCell sets a single cell. Positions outside the terminal are ignored.
	SetCell(x, y int, cell terminal.Cell)

	// GetCell returns the cell at the given position, or a blank cell.
	GetCell(x, y int) terminal.Cell

	// Clear blanks the whole screen.
	Clear()

	// Show flushes pending changes to the display.
	Show()

	// Sync repaints the whole display, for use after a resize.
	Sync()

	// ShowCursor positions and displays the cursor.
	ShowCursor(x, y int)

	// HideCursor hides the cursor.
	HideCursor()

	// PollEvent waits for and returns the next event.
	PollEvent() Event

	// PostEvent queues a synthetic event. It never blocks.
	PostEvent(event Event)
}

// NullBackend is an in-memory backend for testing.
type NullBackend struct {
	mu            sync.Mutex
	width, height int
	cells         [][]terminal.Cell
	cursorX       int
	cursorY       int
	cursorVisible bool
	shows         int
	events        chan Event
	done          chan struct{}
	closeOnce     sync.Once
}

// NewNullBackend creates a null backend with the given dimensions.
func NewNullBackend(width, height int) *NullBackend {
	b := &NullBackend{
		width:  width,
		height: height,
		events: make(chan Event, 100),
		done:   make(chan struct{}),
	}
	b.cells = blankGrid(width, height)
	return b
}

func blankGrid(width, height int) [][]terminal.Cell {
	cells := make([][]terminal.Cell, height)
	for y := range cells {
		cells[y] = make([]terminal.Cell, width)
		for x := range cells[y] {
			cells[y][x] = terminal.BlankCell
		}
	}
	return cells
}

func (b *NullBackend) Init() error { return nil }

func (b *NullBackend) Shutdown() {
	b.closeOnce.Do(func() { close(b.done) })
}

func (b *NullBackend) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

func (b *NullBackend) SetCell(x, y int, cell terminal.Cell) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if x >= 0 && x < b.width && y >= 0 && y < b.height {
		b.cells[y][x] = cell
	}
}

func (b *NullBackend) GetCell(x, y int) terminal.Cell {
	b.mu.Lock()
	defer b.mu.Unlock()
	if x >= 0 && x < b.width && y >= 0 && y < b.height {
		return b.cells[y][x]
	}
	return terminal.BlankCell
}

func (b *NullBackend) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cells = blankGrid(b.width, b.height)
}

func (b *NullBackend) Show() {
	b.mu.Lock()
	b.shows++
	b.mu.Unlock()
}

func (b *NullBackend) Sync() { b.Show() }

func (b *NullBackend) ShowCursor(x, y int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursorX = x
	b.cursorY = y
	b.cursorVisible = true
}

func (b *NullBackend) HideCursor() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursorVisible = false
}

func (b *NullBackend) PollEvent() Event {
	select {
	case <-b.done:
		return Event{Type: EventClosed}
	default:
	}
	select {
	case ev := <-b.events:
		return ev
	case <-b.done:
		return Event{Type: EventClosed}
	}
}

func (b *NullBackend) PostEvent(event Event) {
	select {
	case <-b.done:
		return
	default:
	}
	select {
	case b.events <- event:
	default:
		// Event dropped if queue is full (non-blocking for testing)
	}
}

// CursorPosition returns the current cursor position for testing.
func (b *NullBackend) CursorPosition() (x, y int, visible bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursorX, b.cursorY, b.cursorVisible
}

// Shows returns how many times the display was flushed.
func (b *NullBackend) Shows() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shows
}

// Line returns row y as text with trailing blanks removed.
func (b *NullBackend) Line(y int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if y < 0 || y >= b.height {
		return ""
	}
	var sb strings.Builder
	for _, c := range b.cells[y] {
		if c.Width == 0 {
			continue
		}
		sb.WriteRune(c.Rune)
	}
	return strings.TrimRight(sb.String(), " ")
}

// Resize simulates a terminal resize and queues the resize event.
func (b *NullBackend) Resize(width, height int) {
	b.mu.Lock()
	b.width = width
	b.height = height
	b.cells = blankGrid(width, height)
	b.mu.Unlock()
	b.PostEvent(Event{Type: EventResize, Width: width, Height: height})
}
