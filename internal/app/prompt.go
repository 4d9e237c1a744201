package app

import (
	"unicode"

	"github.com/dshills/stormux/internal/input/key"
	"github.com/dshills/stormux/internal/renderer/backend"
)

// Prompt reads a line on the status row. It blocks the frame loop, taking
// key events from the input pump until Enter (accept) or Escape, Ctrl+C,
// a closed backend or a cancelled context (reject). Sessions keep running
// but are not drawn while the prompt is open.
func (app *Application) Prompt(label string) (string, bool) {
	var input []rune
	defer app.backend.HideCursor()

	for {
		app.drawPrompt(label, input)

		select {
		case <-app.ctx.Done():
			return "", false
		case <-app.pumpDone:
			return "", false
		case ev := <-app.events:
			switch ev.Type {
			case backend.EventClosed:
				return "", false
			case backend.EventResize:
				app.backend.Resize()
				app.render()
				app.backend.Sync()
			case backend.EventKey:
				app.metrics.RecordInput()
				k := ev.Key
				switch {
				case k.Key == key.KeyEnter:
					return string(input), true
				case k.Key == key.KeyEscape:
					return "", false
				case k.Key == key.KeyBackspace:
					if len(input) > 0 {
						input = input[:len(input)-1]
					}
				case k.Key == key.KeyRune && k.Rune == 0x03:
					return "", false
				case k.Key == key.KeyRune && unicode.IsPrint(k.Rune):
					input = append(input, k.Rune)
				}
			}
		}
	}
}

// drawPrompt shows label and the input typed so far on the status row with
// the cursor after it.
func (app *Application) drawPrompt(label string, input []rune) {
	width, height := app.backend.Size()
	if height <= 0 {
		return
	}
	y := height - 1
	x := app.drawStatus(y, label+" "+string(input))
	if x < width {
		app.backend.ShowCursor(x, y)
	} else {
		app.backend.HideCursor()
	}
	app.backend.Show()
}
