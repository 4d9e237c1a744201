package terminal

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

type parserState uint8

const (
	stateGround parserState = iota
	stateEscape
	stateEscapeInter
	stateCSI
	stateOSC
	stateOSCEscape
	stateString
	stateStringEscape
)

const maxParams = 16

// Parser interprets terminal output and applies it to a Screen.
type Parser struct {
	screen *Screen
	state  parserState

	params   []int
	hasDigit bool
	private  byte
	inter    []byte
	osc      []byte
	pending  []byte
}

// NewParser creates a parser writing to screen.
func NewParser(screen *Screen) *Parser {
	return &Parser{
		screen: screen,
		params: make([]int, 0, maxParams),
		osc:    make([]byte, 0, 128),
	}
}

// Parse feeds output bytes to the screen. Sequences may be split across
// calls.
func (p *Parser) Parse(data []byte) {
	for _, b := range data {
		p.step(b)
	}
}

func (p *Parser) step(b byte) {
	switch p.state {
	case stateGround:
		p.ground(b)
	case stateEscape:
		p.escape(b)
	case stateEscapeInter:
		if b < 0x20 || b > 0x2f {
			// charset designations and similar are ignored
			p.state = stateGround
		}
	case stateCSI:
		p.csi(b)
	case stateOSC:
		switch b {
		case 0x07:
			p.dispatchOSC()
			p.state = stateGround
		case 0x1b:
			p.state = stateOSCEscape
		default:
			p.osc = append(p.osc, b)
		}
	case stateOSCEscape:
		p.dispatchOSC()
		p.state = stateGround
		if b != '\\' {
			p.escape(b)
		}
	case stateString:
		if b == 0x1b {
			p.state = stateStringEscape
		} else if b == 0x07 {
			p.state = stateGround
		}
	case stateStringEscape:
		p.state = stateGround
		if b != '\\' {
			p.escape(b)
		}
	}
}

func (p *Parser) ground(b byte) {
	if len(p.pending) > 0 || b >= 0x80 {
		p.decode(b)
		return
	}
	switch b {
	case 0x1b:
		p.state = stateEscape
		p.inter = p.inter[:0]
	case '\r':
		p.screen.CarriageReturn()
	case '\n', 0x0b, 0x0c:
		p.screen.LineFeed()
	case '\b':
		p.screen.Backspace()
	case '\t':
		p.screen.Tab()
	default:
		if b >= 0x20 && b < 0x7f {
			p.screen.Put(rune(b))
		}
	}
}

// decode collects a multi-byte UTF-8 sequence. Invalid input is written as
// U+FFFD and the offending byte is reprocessed.
func (p *Parser) decode(b byte) {
	if len(p.pending) > 0 && (b < 0x80 || b >= 0xc0) {
		p.pending = p.pending[:0]
		p.screen.Put(utf8.RuneError)
		p.ground(b)
		return
	}
	p.pending = append(p.pending, b)
	if !utf8.FullRune(p.pending) {
		return
	}
	r, _ := utf8.DecodeRune(p.pending)
	p.pending = p.pending[:0]
	p.screen.Put(r)
}

func (p *Parser) escape(b byte) {
	p.state = stateGround
	switch b {
	case '[':
		p.state = stateCSI
		p.params = p.params[:0]
		p.hasDigit = false
		p.private = 0
		p.inter = p.inter[:0]
	case ']':
		p.state = stateOSC
		p.osc = p.osc[:0]
	case 'P', 'X', '^', '_':
		p.state = stateString
	case '7':
		p.screen.SaveCursor()
	case '8':
		p.screen.RestoreCursor()
	case 'D':
		p.screen.LineFeed()
	case 'E':
		p.screen.CarriageReturn()
		p.screen.LineFeed()
	case 'M':
		p.screen.ReverseIndex()
	case 'c':
		p.screen.Reset()
	default:
		if b >= 0x20 && b <= 0x2f {
			p.state = stateEscapeInter
		}
	}
}

func (p *Parser) csi(b byte) {
	switch {
	case b >= '0' && b <= '9':
		if !p.hasDigit {
			p.params = append(p.params, 0)
			p.hasDigit = true
		}
		if last := len(p.params) - 1; p.params[last] < 1<<16 {
			p.params[last] = p.params[last]*10 + int(b-'0')
		}
	case b == ';' || b == ':':
		if !p.hasDigit {
			p.params = append(p.params, 0)
		}
		p.hasDigit = false
	case b >= '<' && b <= '?':
		p.private = b
	case b >= 0x20 && b <= 0x2f:
		p.inter = append(p.inter, b)
	case b >= 0x40 && b <= 0x7e:
		if len(p.params) > maxParams {
			p.params = p.params[:maxParams]
		}
		p.dispatchCSI(b)
		p.state = stateGround
	case b == 0x1b:
		p.state = stateEscape
	case b < 0x20:
		// C0 controls execute inside CSI
		p.ground(b)
	}
}

// param returns parameter i, or def when it is missing or zero.
func (p *Parser) param(i, def int) int {
	if i < len(p.params) && p.params[i] > 0 {
		return p.params[i]
	}
	return def
}

func (p *Parser) dispatchCSI(final byte) {
	s := p.screen
	if len(p.inter) > 0 {
		return
	}
	if p.private == '?' {
		if final == 'h' || final == 'l' {
			p.privateMode(final == 'h')
		}
		return
	}
	if p.private != 0 {
		return
	}

	switch final {
	case 'A':
		s.MoveBy(0, -p.param(0, 1))
	case 'B', 'e':
		s.MoveBy(0, p.param(0, 1))
	case 'C', 'a':
		s.MoveBy(p.param(0, 1), 0)
	case 'D':
		s.MoveBy(-p.param(0, 1), 0)
	case 'E':
		s.MoveBy(0, p.param(0, 1))
		s.CarriageReturn()
	case 'F':
		s.MoveBy(0, -p.param(0, 1))
		s.CarriageReturn()
	case 'G', '`':
		s.MoveToColumn(p.param(0, 1) - 1)
	case 'd':
		s.MoveToRow(p.param(0, 1) - 1)
	case 'H', 'f':
		s.MoveTo(p.param(1, 1)-1, p.param(0, 1)-1)
	case 'J':
		s.EraseDisplay(p.param(0, 0))
	case 'K':
		s.EraseLine(p.param(0, 0))
	case 'L':
		s.InsertLines(p.param(0, 1))
	case 'M':
		s.DeleteLines(p.param(0, 1))
	case '@':
		s.InsertBlanks(p.param(0, 1))
	case 'P':
		s.DeleteChars(p.param(0, 1))
	case 'X':
		s.EraseChars(p.param(0, 1))
	case 'S':
		s.ScrollUp(p.param(0, 1))
	case 'T':
		s.ScrollDown(p.param(0, 1))
	case 'r':
		_, h := s.Size()
		s.SetScrollRegion(p.param(0, 1)-1, p.param(1, h)-1)
	case 's':
		s.SaveCursor()
	case 'u':
		s.RestoreCursor()
	case 'm':
		s.UpdatePen(p.sgr)
	}
}

func (p *Parser) privateMode(set bool) {
	for _, mode := range p.params {
		switch mode {
		case 7:
			p.screen.SetAutoWrap(set)
		case 25:
			p.screen.SetCursorVisible(set)
		case 47, 1047:
			p.screen.SetAltScreen(set)
		case 1049:
			if set {
				p.screen.SaveCursor()
				p.screen.SetAltScreen(true)
				p.screen.EraseDisplay(2)
			} else {
				p.screen.SetAltScreen(false)
				p.screen.RestoreCursor()
			}
		}
	}
}

// sgr applies Select Graphic Rendition parameters to pen.
func (p *Parser) sgr(pen *Pen) {
	if len(p.params) == 0 {
		*pen = Pen{}
		return
	}
	for i := 0; i < len(p.params); i++ {
		n := p.params[i]
		switch {
		case n == 0:
			*pen = Pen{}
		case n >= 1 && n <= 9:
			pen.Attrs |= sgrAttrs[n]
		case n == 21:
			pen.Attrs |= AttrUnderline
		case n == 22:
			pen.Attrs &^= AttrBold | AttrDim
		case n >= 23 && n <= 29:
			pen.Attrs &^= sgrAttrs[n-20]
		case n >= 30 && n <= 37:
			pen.Fg = IndexedColor(n - 30)
		case n == 38:
			pen.Fg, i = p.extendedColor(i, pen.Fg)
		case n == 39:
			pen.Fg = DefaultColor
		case n >= 40 && n <= 47:
			pen.Bg = IndexedColor(n - 40)
		case n == 48:
			pen.Bg, i = p.extendedColor(i, pen.Bg)
		case n == 49:
			pen.Bg = DefaultColor
		case n >= 90 && n <= 97:
			pen.Fg = IndexedColor(n - 90 + 8)
		case n >= 100 && n <= 107:
			pen.Bg = IndexedColor(n - 100 + 8)
		}
	}
}

var sgrAttrs = [10]Attr{
	1: AttrBold,
	2: AttrDim,
	3: AttrItalic,
	4: AttrUnderline,
	5: AttrBlink,
	7: AttrReverse,
	8: AttrHidden,
	9: AttrStrike,
}

// extendedColor parses "38;5;n" and "38;2;r;g;b" forms starting at index i.
// It returns the colour and the index of the last parameter consumed.
func (p *Parser) extendedColor(i int, cur Color) (Color, int) {
	if i+1 >= len(p.params) {
		return cur, i
	}
	switch p.params[i+1] {
	case 5:
		if i+2 < len(p.params) {
			return IndexedColor(p.params[i+2]), i + 2
		}
	case 2:
		if i+4 < len(p.params) {
			return RGBColor(p.params[i+2], p.params[i+3], p.params[i+4]), i + 4
		}
	}
	return cur, len(p.params)
}

func (p *Parser) dispatchOSC() {
	cmd, value, _ := strings.Cut(string(p.osc), ";")
	n, err := strconv.Atoi(cmd)
	if err != nil {
		return
	}
	if n == 0 || n == 2 {
		p.screen.SetTitle(value)
	}
}
