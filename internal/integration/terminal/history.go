package terminal

// DefaultHistoryLines is the scrollback depth used when none is configured.
const DefaultHistoryLines = 10000

// History stores rows scrolled off the top of a screen, oldest first.
// It is not safe for concurrent use; Screen guards it.
type History struct {
	rows     [][]Cell
	maxLines int
}

// NewHistory creates a history holding at most maxLines rows.
func NewHistory(maxLines int) *History {
	if maxLines <= 0 {
		maxLines = DefaultHistoryLines
	}
	return &History{maxLines: maxLines}
}

// Push appends a row. The slice is retained.
func (h *History) Push(row []Cell) {
	h.rows = append(h.rows, row)
	if over := len(h.rows) - h.maxLines; over > 0 {
		clear(h.rows[:over])
		h.rows = h.rows[over:]
	}
}

// Len returns the number of stored rows.
func (h *History) Len() int {
	return len(h.rows)
}

// Row returns row i, 0 being the oldest, or nil when out of range.
func (h *History) Row(i int) []Cell {
	if i < 0 || i >= len(h.rows) {
		return nil
	}
	return h.rows[i]
}

// Clear drops all rows.
func (h *History) Clear() {
	clear(h.rows)
	h.rows = h.rows[:0]
}
