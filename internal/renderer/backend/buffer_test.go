package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/stormux/internal/integration/terminal"
)

func TestScreenBufferDiff(t *testing.T) {
	sb := NewScreenBuffer(4, 2)
	assert.True(t, sb.IsDirty())
	assert.Len(t, sb.ComputeDiff(), 8, "first flush redraws everything")
	sb.Sync()
	assert.False(t, sb.IsDirty())
	assert.Nil(t, sb.ComputeDiff())

	sb.SetCell(1, 1, terminal.Cell{Rune: 'a', Width: 1})
	sb.SetCell(2, 0, terminal.BlankCell)
	changes := sb.ComputeDiff()
	assert.Equal(t, []DiffChange{{X: 1, Y: 1, Cell: terminal.Cell{Rune: 'a', Width: 1}}}, changes)

	sb.Sync()
	sb.MarkFullRedraw()
	assert.Len(t, sb.ComputeDiff(), 8)
}

func TestScreenBufferSetString(t *testing.T) {
	sb := NewScreenBuffer(6, 1)
	pen := terminal.Cell{Fg: terminal.IndexedColor(15), Bg: terminal.IndexedColor(9)}

	end := sb.SetString(0, 0, "a界bcd", pen)
	assert.Equal(t, 5, end)
	assert.Equal(t, 'a', sb.GetCell(0, 0).Rune)
	assert.Equal(t, '界', sb.GetCell(1, 0).Rune)
	assert.Equal(t, 2, sb.GetCell(1, 0).Width)
	assert.Equal(t, 0, sb.GetCell(2, 0).Width)
	assert.Equal(t, pen.Bg, sb.GetCell(3, 0).Bg)

	assert.Equal(t, 6, sb.SetString(4, 0, "xyz", pen), "clipped at the right edge")
	assert.Equal(t, 'y', sb.GetCell(5, 0).Rune)

	assert.Equal(t, 5, sb.SetString(5, 0, "界", pen), "wide rune does not fit")
}

func TestScreenBufferSetLine(t *testing.T) {
	sb := NewScreenBuffer(5, 1)
	sb.SetString(0, 0, "zzzzz", terminal.Cell{})
	sb.SetLine(1, 0, []terminal.Cell{{Rune: 'h', Width: 1}, {Rune: 'i', Width: 1}})

	var got []rune
	for x := range 5 {
		got = append(got, sb.GetCell(x, 0).Rune)
	}
	assert.Equal(t, []rune{'z', 'h', 'i', ' ', ' '}, got)
}

func TestScreenBufferOutOfRange(t *testing.T) {
	sb := NewScreenBuffer(2, 2)
	sb.SetCell(5, 5, terminal.Cell{Rune: 'x', Width: 1})
	sb.SetLine(0, 9, nil)
	assert.Equal(t, 0, sb.SetString(0, -1, "x", terminal.Cell{}))
	assert.Equal(t, terminal.BlankCell, sb.GetCell(5, 5))
}

func TestBufferedBackendFlushesChanges(t *testing.T) {
	null := NewNullBackend(8, 2)
	b := NewBufferedBackend(null)
	assert.NoError(t, b.Init())

	b.SetString(0, 0, "hello", terminal.Cell{})
	assert.Empty(t, null.Line(0), "nothing reaches the backend before Show")
	b.Show()
	assert.Equal(t, "hello", null.Line(0))
	assert.Equal(t, 1, null.Shows())

	null.SetCell(0, 0, terminal.Cell{Rune: '!', Width: 1})
	b.Show()
	assert.Equal(t, "!ello", null.Line(0), "unchanged cells are not resent")
	b.Sync()
	assert.Equal(t, "hello", null.Line(0))
}

func TestBufferedBackendResize(t *testing.T) {
	null := NewNullBackend(8, 2)
	b := NewBufferedBackend(null)
	null.Resize(4, 3)
	b.Resize()

	w, h := b.Size()
	assert.Equal(t, []int{4, 3}, []int{w, h})
	assert.True(t, b.Buffer().IsDirty())
}
