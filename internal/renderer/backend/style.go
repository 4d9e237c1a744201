package backend

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/stormux/internal/integration/terminal"
)

var attrMap = []struct {
	ours  terminal.Attr
	tcell tcell.AttrMask
}{
	{terminal.AttrBold, tcell.AttrBold},
	{terminal.AttrDim, tcell.AttrDim},
	{terminal.AttrItalic, tcell.AttrItalic},
	{terminal.AttrBlink, tcell.AttrBlink},
	{terminal.AttrReverse, tcell.AttrReverse},
	{terminal.AttrStrike, tcell.AttrStrikeThrough},
}

// convertStyle converts the colours and attributes of a cell to tcell.Style.
func convertStyle(c terminal.Cell) tcell.Style {
	style := tcell.StyleDefault.
		Foreground(convertColor(c.Fg)).
		Background(convertColor(c.Bg))

	var attrs tcell.AttrMask
	for _, a := range attrMap {
		if c.Attrs.Has(a.ours) {
			attrs |= a.tcell
		}
	}
	style = style.Attributes(attrs)
	if c.Attrs.Has(terminal.AttrUnderline) {
		style = style.Underline(true)
	}
	return style
}

// convertTcellStyle converts tcell.Style back to the colours and attributes
// of a cell.
func convertTcellStyle(ts tcell.Style) terminal.Cell {
	fg, bg, attrs := ts.Decompose()
	cell := terminal.Cell{
		Fg: convertTcellColor(fg),
		Bg: convertTcellColor(bg),
	}
	for _, a := range attrMap {
		if attrs&a.tcell != 0 {
			cell.Attrs |= a.ours
		}
	}
	if attrs&tcell.AttrUnderline != 0 {
		cell.Attrs |= terminal.AttrUnderline
	}
	return cell
}

func convertColor(c terminal.Color) tcell.Color {
	switch c.Kind {
	case terminal.ColorIndexed:
		return tcell.PaletteColor(int(c.Index))
	case terminal.ColorRGB:
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	default:
		return tcell.ColorDefault
	}
}

func convertTcellColor(tc tcell.Color) terminal.Color {
	if tc == tcell.ColorDefault || !tc.Valid() {
		return terminal.DefaultColor
	}
	if tc&tcell.ColorIsRGB == 0 {
		return terminal.IndexedColor(int(tc - tcell.ColorValid))
	}
	r, g, b := tc.RGB()
	return terminal.RGBColor(int(r), int(g), int(b))
}

// ParseColor resolves a colour name ("red", "white", "default") or a hex
// value ("#ff0000") the way tcell does.
func ParseColor(name string) (terminal.Color, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "default" {
		return terminal.DefaultColor, nil
	}
	tc := tcell.GetColor(name)
	if tc == tcell.ColorDefault {
		return terminal.DefaultColor, fmt.Errorf("unknown color %q", name)
	}
	return convertTcellColor(tc), nil
}
