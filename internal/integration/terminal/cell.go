package terminal

import "github.com/mattn/go-runewidth"

// ColorKind tells how a Color is encoded.
type ColorKind uint8

const (
	// ColorDefault is the terminal's default foreground or background.
	ColorDefault ColorKind = iota
	// ColorIndexed is one of the 256 palette entries.
	ColorIndexed
	// ColorRGB is a 24-bit colour.
	ColorRGB
)

// Color is a cell colour.
type Color struct {
	Kind    ColorKind
	Index   uint8
	R, G, B uint8
}

// DefaultColor is the zero Color.
var DefaultColor = Color{}

// IndexedColor returns palette entry i.
func IndexedColor(i int) Color {
	return Color{Kind: ColorIndexed, Index: uint8(clamp(i, 0, 255))}
}

// RGBColor returns a 24-bit colour.
func RGBColor(r, g, b int) Color {
	return Color{Kind: ColorRGB, R: uint8(clamp(r, 0, 255)), G: uint8(clamp(g, 0, 255)), B: uint8(clamp(b, 0, 255))}
}

// Attr is a set of text attributes.
type Attr uint16

const (
	AttrBold Attr = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrBlink
	AttrReverse
	AttrHidden
	AttrStrike
)

// Has reports whether all of a are set.
func (at Attr) Has(a Attr) bool {
	return at&a == a
}

// Cell is one character position of the grid. A wide rune occupies its cell
// and a following cell with Width 0.
type Cell struct {
	Rune  rune
	Width int
	Fg    Color
	Bg    Color
	Attrs Attr
}

// BlankCell is an empty cell with default colours.
var BlankCell = Cell{Rune: ' ', Width: 1}

func blankRow(width int, pen Cell) []Cell {
	row := make([]Cell, width)
	fill(row, pen)
	return row
}

func fill(row []Cell, pen Cell) {
	blank := Cell{Rune: ' ', Width: 1, Bg: pen.Bg}
	for i := range row {
		row[i] = blank
	}
}

func runeWidth(r rune) int {
	return runewidth.RuneWidth(r)
}

// Position is a zero-based column and row.
type Position struct {
	X, Y int
}

// Frame is a renderable copy of a screen. Cursor is nil when no cursor
// should be shown.
type Frame struct {
	Cursor *Position
	Rows   [][]Cell
}

// Text returns the frame's rows as plain text with trailing spaces removed.
func (f Frame) Text() []string {
	out := make([]string, len(f.Rows))
	for y, row := range f.Rows {
		rs := make([]rune, 0, len(row))
		for _, c := range row {
			if c.Width == 0 {
				continue
			}
			rs = append(rs, c.Rune)
		}
		end := len(rs)
		for end > 0 && rs[end-1] == ' ' {
			end--
		}
		out[y] = string(rs[:end])
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
