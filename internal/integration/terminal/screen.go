package terminal

import "sync"

const tabWidth = 8

// Pen holds the attributes applied to newly written cells.
type Pen struct {
	Fg    Color
	Bg    Color
	Attrs Attr
}

type savedCursor struct {
	x, y int
	pen  Pen
}

// Screen is a fixed-size cell grid driven by a Parser.
type Screen struct {
	mu sync.RWMutex

	width  int
	height int
	rows   [][]Cell

	// primary holds the main buffer while the alternate screen is active.
	primary [][]Cell
	alt     bool
	history *History

	cx, cy   int
	wrapNext bool

	top    int
	bottom int

	pen    Pen
	saved  savedCursor
	hidden bool
	noWrap bool
	title  string
}

// NewScreen creates a blank screen. Rows scrolled off the top of the primary
// buffer are pushed into history.
func NewScreen(width, height int, history *History) *Screen {
	if width < 1 {
		width = 80
	}
	if height < 1 {
		height = 24
	}
	if history == nil {
		history = NewHistory(0)
	}
	s := &Screen{
		width:   width,
		height:  height,
		history: history,
		bottom:  height - 1,
	}
	s.rows = s.blankRows()
	return s
}

func (s *Screen) blankRows() [][]Cell {
	rows := make([][]Cell, s.height)
	for i := range rows {
		rows[i] = blankRow(s.width, Cell{})
	}
	return rows
}

func (s *Screen) penCell() Cell {
	return Cell{Fg: s.pen.Fg, Bg: s.pen.Bg, Attrs: s.pen.Attrs}
}

// Size returns the grid dimensions.
func (s *Screen) Size() (width, height int) {
	return s.width, s.height
}

// Cursor returns the cursor position.
func (s *Screen) Cursor() (x, y int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cx, s.cy
}

// Title returns the last title set through OSC 0 or 2.
func (s *Screen) Title() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.title
}

// SetTitle records the window title.
func (s *Screen) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
}

// Put writes r at the cursor and advances it, wrapping at the right margin
// when auto-wrap is on.
func (s *Screen) Put(r rune) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := runeWidth(r)
	if w == 0 {
		return
	}
	if s.wrapNext {
		s.cx = 0
		s.lineFeed()
		s.wrapNext = false
	}
	if w == 2 && s.cx == s.width-1 {
		if s.noWrap {
			return
		}
		s.rows[s.cy][s.cx] = BlankCell
		s.cx = 0
		s.lineFeed()
	}

	cell := s.penCell()
	cell.Rune = r
	cell.Width = w
	row := s.rows[s.cy]
	row[s.cx] = cell
	if w == 2 && s.cx+1 < s.width {
		row[s.cx+1] = Cell{Rune: ' ', Fg: cell.Fg, Bg: cell.Bg}
	}

	s.cx += w
	if s.cx >= s.width {
		s.cx = s.width - 1
		s.wrapNext = !s.noWrap
	}
}

// CarriageReturn moves the cursor to column 0.
func (s *Screen) CarriageReturn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cx = 0
	s.wrapNext = false
}

// LineFeed moves the cursor down, scrolling at the bottom margin.
func (s *Screen) LineFeed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wrapNext = false
	s.lineFeed()
}

func (s *Screen) lineFeed() {
	switch {
	case s.cy == s.bottom:
		s.scrollUp(1)
	case s.cy < s.height-1:
		s.cy++
	}
}

// ReverseIndex moves the cursor up, scrolling down at the top margin.
func (s *Screen) ReverseIndex() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wrapNext = false
	switch {
	case s.cy == s.top:
		s.scrollDown(1)
	case s.cy > 0:
		s.cy--
	}
}

// Backspace moves the cursor one column left.
func (s *Screen) Backspace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wrapNext = false
	if s.cx > 0 {
		s.cx--
	}
}

// Tab advances to the next tab stop.
func (s *Screen) Tab() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cx = min((s.cx/tabWidth+1)*tabWidth, s.width-1)
}

// MoveTo places the cursor at an absolute position, clamped to the grid.
func (s *Screen) MoveTo(x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveTo(x, y)
}

func (s *Screen) moveTo(x, y int) {
	s.cx = clamp(x, 0, s.width-1)
	s.cy = clamp(y, 0, s.height-1)
	s.wrapNext = false
}

// MoveBy moves the cursor relative to its position. Vertical movement stops
// at the scroll margins when starting inside them.
func (s *Screen) MoveBy(dx, dy int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	y := s.cy + dy
	if s.cy >= s.top && s.cy <= s.bottom {
		y = clamp(y, s.top, s.bottom)
	}
	s.moveTo(s.cx+dx, y)
}

// MoveToColumn sets the cursor column.
func (s *Screen) MoveToColumn(x int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveTo(x, s.cy)
}

// MoveToRow sets the cursor row.
func (s *Screen) MoveToRow(y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveTo(s.cx, y)
}

// scrollUp shifts the scroll region up by n rows. Rows leaving the top of
// the primary buffer go to history.
func (s *Screen) scrollUp(n int) {
	s.shiftUp(n, s.top == 0 && !s.alt)
}

func (s *Screen) shiftUp(n int, keep bool) {
	n = min(n, s.bottom-s.top+1)
	if n <= 0 {
		return
	}
	if keep {
		for _, row := range s.rows[:n] {
			s.history.Push(row)
		}
	}
	copy(s.rows[s.top:], s.rows[s.top+n:s.bottom+1])
	for y := s.bottom - n + 1; y <= s.bottom; y++ {
		s.rows[y] = blankRow(s.width, s.penCell())
	}
}

func (s *Screen) scrollDown(n int) {
	n = min(n, s.bottom-s.top+1)
	if n <= 0 {
		return
	}
	copy(s.rows[s.top+n:s.bottom+1], s.rows[s.top:s.bottom+1-n])
	for y := s.top; y < s.top+n; y++ {
		s.rows[y] = blankRow(s.width, s.penCell())
	}
}

// ScrollUp scrolls the region up by n rows.
func (s *Screen) ScrollUp(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrollUp(n)
}

// ScrollDown scrolls the region down by n rows.
func (s *Screen) ScrollDown(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrollDown(n)
}

// SetScrollRegion sets the zero-based inclusive scroll margins and homes
// the cursor. Invalid regions are ignored.
func (s *Screen) SetScrollRegion(top, bottom int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bottom = min(bottom, s.height-1)
	if top < 0 || top >= bottom {
		return
	}
	s.top, s.bottom = top, bottom
	s.moveTo(0, 0)
}

// EraseDisplay implements ED: 0 below, 1 above, 2 all, 3 all plus history.
func (s *Screen) EraseDisplay(mode int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pen := s.penCell()
	switch mode {
	case 0:
		fill(s.rows[s.cy][s.cx:], pen)
		for _, row := range s.rows[s.cy+1:] {
			fill(row, pen)
		}
	case 1:
		fill(s.rows[s.cy][:s.cx+1], pen)
		for _, row := range s.rows[:s.cy] {
			fill(row, pen)
		}
	case 2, 3:
		for _, row := range s.rows {
			fill(row, pen)
		}
		if mode == 3 {
			s.history.Clear()
		}
	}
}

// EraseLine implements EL: 0 right of cursor, 1 left, 2 whole line.
func (s *Screen) EraseLine(mode int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.rows[s.cy]
	switch mode {
	case 0:
		fill(row[s.cx:], s.penCell())
	case 1:
		fill(row[:s.cx+1], s.penCell())
	case 2:
		fill(row, s.penCell())
	}
}

// EraseChars blanks n cells from the cursor.
func (s *Screen) EraseChars(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	end := min(s.cx+max(n, 1), s.width)
	fill(s.rows[s.cy][s.cx:end], s.penCell())
}

// InsertBlanks shifts the rest of the line right by n blank cells.
func (s *Screen) InsertBlanks(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.rows[s.cy]
	n = min(max(n, 1), s.width-s.cx)
	copy(row[s.cx+n:], row[s.cx:])
	fill(row[s.cx:s.cx+n], s.penCell())
}

// DeleteChars removes n cells at the cursor, pulling the line left.
func (s *Screen) DeleteChars(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.rows[s.cy]
	n = min(max(n, 1), s.width-s.cx)
	copy(row[s.cx:], row[s.cx+n:])
	fill(row[s.width-n:], s.penCell())
}

// InsertLines inserts n blank rows at the cursor inside the scroll region.
func (s *Screen) InsertLines(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cy < s.top || s.cy > s.bottom {
		return
	}
	top := s.top
	s.top = s.cy
	s.scrollDown(max(n, 1))
	s.top = top
	s.cx = 0
}

// DeleteLines removes n rows at the cursor inside the scroll region.
func (s *Screen) DeleteLines(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cy < s.top || s.cy > s.bottom {
		return
	}
	top := s.top
	s.top = s.cy
	s.shiftUp(max(n, 1), false)
	s.top = top
	s.cx = 0
}

// UpdatePen applies fn to the current pen.
func (s *Screen) UpdatePen(fn func(*Pen)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.pen)
}

// SaveCursor stores the cursor position and pen.
func (s *Screen) SaveCursor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = savedCursor{x: s.cx, y: s.cy, pen: s.pen}
}

// RestoreCursor restores what SaveCursor stored.
func (s *Screen) RestoreCursor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pen = s.saved.pen
	s.moveTo(s.saved.x, s.saved.y)
}

// SetCursorVisible shows or hides the cursor (DECTCEM).
func (s *Screen) SetCursorVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hidden = !visible
}

// SetAutoWrap enables or disables wrapping at the right margin (DECAWM).
func (s *Screen) SetAutoWrap(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noWrap = !on
	if !on {
		s.wrapNext = false
	}
}

// SetAltScreen switches between the primary and alternate buffers. The
// alternate buffer starts blank and never feeds history.
func (s *Screen) SetAltScreen(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on == s.alt {
		return
	}
	if on {
		s.primary = s.rows
		s.rows = s.blankRows()
	} else {
		s.rows = s.primary
		s.primary = nil
	}
	s.alt = on
	s.top, s.bottom = 0, s.height-1
}

// Reset returns the screen to its initial state. History is kept.
func (s *Screen) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = s.blankRows()
	s.primary = nil
	s.alt = false
	s.cx, s.cy, s.wrapNext = 0, 0, false
	s.top, s.bottom = 0, s.height-1
	s.pen = Pen{}
	s.saved = savedCursor{}
	s.hidden, s.noWrap = false, false
}

// Snapshot returns a copy of the visible grid with the cursor, or without it
// when the cursor is hidden.
func (s *Screen) Snapshot() Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	frame := Frame{Rows: make([][]Cell, s.height)}
	for y, row := range s.rows {
		frame.Rows[y] = append([]Cell(nil), row...)
	}
	if !s.hidden {
		frame.Cursor = &Position{X: s.cx, Y: s.cy}
	}
	return frame
}

// HistoryLen returns the number of rows in history.
func (s *Screen) HistoryLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Len()
}

// HistoryFrame returns a screen-sized view ending offset rows above the live
// bottom. The offset is clamped to the history depth. The frame has no
// cursor.
func (s *Screen) HistoryFrame(offset int) Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()

	live := s.rows
	if s.alt {
		live = s.primary
	}
	depth := s.history.Len()
	offset = clamp(offset, 0, depth)
	start := depth - offset

	frame := Frame{Rows: make([][]Cell, s.height)}
	for y := range frame.Rows {
		i := start + y
		var src []Cell
		if i < depth {
			src = s.history.Row(i)
		} else {
			src = live[i-depth]
		}
		row := blankRow(s.width, Cell{})
		copy(row, src)
		frame.Rows[y] = row
	}
	return frame
}
