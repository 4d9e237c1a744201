package app

import (
	"github.com/dshills/stormux/internal/integration/terminal"
)

// render draws the focused session's frame above the status bar and
// flushes the changes.
func (app *Application) render() {
	start := app.clock.Now()
	width, height := app.backend.Size()
	body := height - 1

	frame := app.mux.CurrentFrame()
	for y := 0; y < body; y++ {
		var row []terminal.Cell
		if y < len(frame.Rows) {
			row = frame.Rows[y]
		}
		app.backend.SetLine(0, y, row)
	}
	if body >= 0 {
		app.drawStatus(body, app.mux.StatusLine(width))
	}

	if c := frame.Cursor; c != nil && c.Y >= 0 && c.Y < body && c.X >= 0 && c.X < width {
		app.backend.ShowCursor(c.X, c.Y)
	} else {
		app.backend.HideCursor()
	}
	app.backend.Show()
	app.metrics.RecordRender(app.clock.Since(start))
}

// drawStatus fills row y with text in the status bar colours and returns
// the column after the text.
func (app *Application) drawStatus(y int, text string) int {
	pen := terminal.Cell{Rune: ' ', Width: 1, Fg: app.statusFg, Bg: app.statusBg}
	width, _ := app.backend.Size()
	end := app.backend.SetString(0, y, text, pen)
	for x := end; x < width; x++ {
		app.backend.SetCell(x, y, pen)
	}
	return end
}
