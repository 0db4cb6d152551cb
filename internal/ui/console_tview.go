package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

func runTViewConsole(c *Console) error {
	app := tview.NewApplication()

	view := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true)
	view.SetBorder(true).SetTitle(" " + c.Catalog.Console.Title + " ")

	redraw := func(last Reply, note string) {
		text := RenderDashboard(c.Dashboard(last), c.Catalog)
		if note = strings.TrimSpace(note); note != "" {
			text += "\n" + note
		}
		view.SetText(tview.TranslateANSI(text))
		view.ScrollToBeginning()
	}

	input := tview.NewInputField().
		SetLabel(c.Catalog.Console.Prompt).
		SetPlaceholder(c.Catalog.Console.Placeholder).
		SetFieldWidth(0)

	var last Reply
	input.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEscape:
			app.Stop()
		case tcell.KeyEnter:
			reply := c.Handle(input.GetText())
			input.SetText("")
			if reply.Quit {
				app.Stop()
				return
			}
			if reply.Reset {
				last = Reply{}
			}
			if reply.Outcome != nil {
				last = reply
				redraw(last, "")
				return
			}
			redraw(last, reply.Text)
		}
	})

	footer := tview.NewTextView().SetText(c.Catalog.Console.QuitHint)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(view, 0, 1, false).
		AddItem(input, 1, 0, true).
		AddItem(footer, 1, 0, false)

	redraw(last, "")
	return app.SetRoot(layout, true).SetFocus(input).Run()
}
