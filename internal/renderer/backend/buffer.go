package backend

import (
	"github.com/mattn/go-runewidth"

	"github.com/dshills/stormux/internal/integration/terminal"
)

// ScreenBuffer provides double-buffered rendering with change tracking.
// It maintains two buffers: front (displayed) and back (drawing).
// On flush, only cells that differ from the front buffer are sent.
type ScreenBuffer struct {
	width, height int
	front         [][]terminal.Cell
	back          [][]terminal.Cell
	fullRedraw    bool
}

// NewScreenBuffer creates a screen buffer with the given dimensions.
func NewScreenBuffer(width, height int) *ScreenBuffer {
	sb := &ScreenBuffer{}
	sb.Resize(width, height)
	return sb
}

// Resize reallocates both buffers and forces a full redraw.
func (sb *ScreenBuffer) Resize(width, height int) {
	sb.width = max(width, 0)
	sb.height = max(height, 0)
	sb.front = blankGrid(sb.width, sb.height)
	sb.back = blankGrid(sb.width, sb.height)
	sb.fullRedraw = true
}

// Size returns the buffer dimensions.
func (sb *ScreenBuffer) Size() (width, height int) {
	return sb.width, sb.height
}

// SetCell sets a cell in the back buffer.
func (sb *ScreenBuffer) SetCell(x, y int, cell terminal.Cell) {
	if x < 0 || x >= sb.width || y < 0 || y >= sb.height {
		return
	}
	sb.back[y][x] = cell
}

// GetCell returns a cell from the back buffer.
func (sb *ScreenBuffer) GetCell(x, y int) terminal.Cell {
	if x < 0 || x >= sb.width || y < 0 || y >= sb.height {
		return terminal.BlankCell
	}
	return sb.back[y][x]
}

// Clear blanks the back buffer.
func (sb *ScreenBuffer) Clear() {
	for y := range sb.back {
		for x := range sb.back[y] {
			sb.back[y][x] = terminal.BlankCell
		}
	}
}

// SetLine copies a row of cells starting at column x and blanks the rest of
// the row.
func (sb *ScreenBuffer) SetLine(x, y int, cells []terminal.Cell) {
	if y < 0 || y >= sb.height {
		return
	}
	row := sb.back[y]
	for col := range row {
		i := col - x
		if i >= 0 && i < len(cells) {
			row[col] = cells[i]
		} else if col >= x {
			row[col] = terminal.BlankCell
		}
	}
}

// SetString writes s at (x, y) in the colours and attributes of pen and
// returns the column after the last cell written.
func (sb *ScreenBuffer) SetString(x, y int, s string, pen terminal.Cell) int {
	if y < 0 || y >= sb.height {
		return x
	}
	col := x
	for _, r := range s {
		width := runewidth.RuneWidth(r)
		if width == 0 {
			continue
		}
		if col+width > sb.width {
			break
		}
		if col >= 0 {
			cell := pen
			cell.Rune = r
			cell.Width = width
			sb.back[y][col] = cell
			if width == 2 {
				cont := pen
				cont.Rune = 0
				cont.Width = 0
				sb.back[y][col+1] = cont
			}
		}
		col += width
	}
	return col
}

// DiffChange represents a cell change for synchronization.
type DiffChange struct {
	X, Y int
	Cell terminal.Cell
}

// ComputeDiff returns the changes needed to update the display.
// Returns nil if no changes are needed.
func (sb *ScreenBuffer) ComputeDiff() []DiffChange {
	var changes []DiffChange
	for y := 0; y < sb.height; y++ {
		for x := 0; x < sb.width; x++ {
			if sb.fullRedraw || sb.back[y][x] != sb.front[y][x] {
				changes = append(changes, DiffChange{X: x, Y: y, Cell: sb.back[y][x]})
			}
		}
	}
	return changes
}

// Sync copies the back buffer to the front buffer.
// Call this after applying changes to the backend.
func (sb *ScreenBuffer) Sync() {
	for y := range sb.back {
		copy(sb.front[y], sb.back[y])
	}
	sb.fullRedraw = false
}

// MarkFullRedraw forces a complete redraw on next sync.
func (sb *ScreenBuffer) MarkFullRedraw() {
	sb.fullRedraw = true
}

// IsDirty returns true if there are pending changes.
func (sb *ScreenBuffer) IsDirty() bool {
	if sb.fullRedraw {
		return true
	}
	for y := range sb.back {
		for x := range sb.back[y] {
			if sb.back[y][x] != sb.front[y][x] {
				return true
			}
		}
	}
	return false
}

// BufferedBackend wraps a Backend with double-buffered rendering. Drawing
// methods must be called from one goroutine; PollEvent may run on another.
type BufferedBackend struct {
	backend Backend
	buffer  *ScreenBuffer
}

// NewBufferedBackend creates a buffered wrapper around a backend.
func NewBufferedBackend(backend Backend) *BufferedBackend {
	width, height := backend.Size()
	return &BufferedBackend{
		backend: backend,
		buffer:  NewScreenBuffer(width, height),
	}
}

func (b *BufferedBackend) Init() error {
	if err := b.backend.Init(); err != nil {
		return err
	}
	b.buffer.Resize(b.backend.Size())
	return nil
}

func (b *BufferedBackend) Shutdown() {
	b.backend.Shutdown()
}

func (b *BufferedBackend) Size() (int, int) {
	return b.buffer.Size()
}

// Resize adopts the backend's current size and schedules a full repaint.
func (b *BufferedBackend) Resize() {
	b.buffer.Resize(b.backend.Size())
	b.backend.Clear()
}

func (b *BufferedBackend) SetCell(x, y int, cell terminal.Cell) {
	b.buffer.SetCell(x, y, cell)
}

func (b *BufferedBackend) GetCell(x, y int) terminal.Cell {
	return b.buffer.GetCell(x, y)
}

func (b *BufferedBackend) Clear() {
	b.buffer.Clear()
}

// Show applies only changed cells to the backend.
func (b *BufferedBackend) Show() {
	for _, ch := range b.buffer.ComputeDiff() {
		b.backend.SetCell(ch.X, ch.Y, ch.Cell)
	}
	b.buffer.Sync()
	b.backend.Show()
}

// Sync repaints everything.
func (b *BufferedBackend) Sync() {
	b.buffer.MarkFullRedraw()
	for _, ch := range b.buffer.ComputeDiff() {
		b.backend.SetCell(ch.X, ch.Y, ch.Cell)
	}
	b.buffer.Sync()
	b.backend.Sync()
}

func (b *BufferedBackend) ShowCursor(x, y int) {
	b.backend.ShowCursor(x, y)
}

func (b *BufferedBackend) HideCursor() {
	b.backend.HideCursor()
}

func (b *BufferedBackend) PollEvent() Event {
	return b.backend.PollEvent()
}

func (b *BufferedBackend) PostEvent(event Event) {
	b.backend.PostEvent(event)
}

// Buffer returns the underlying screen buffer for direct access.
func (b *BufferedBackend) Buffer() *ScreenBuffer {
	return b.buffer
}

// SetString is a convenience method to write a string.
func (b *BufferedBackend) SetString(x, y int, s string, pen terminal.Cell) int {
	return b.buffer.SetString(x, y, s, pen)
}

// SetLine is a convenience method to write a line of cells.
func (b *BufferedBackend) SetLine(x, y int, cells []terminal.Cell) {
	b.buffer.SetLine(x, y, cells)
}
