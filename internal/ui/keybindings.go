package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

func setupKeybindings(app *App) {
	app.processTable.table.SetSelectedFunc(func(row, _ int) {
		if p, ok := app.processTable.Selected(); ok {
			app.detailPanel.ShowProcess(p)
		}
	})

	app.tapp.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF5:
			app.mon.Refresh()
			app.detailPanel.ShowMessage("[yellow]Refreshing...")
			return nil

		case tcell.KeyF6:
			toggleAutoRefresh(app)
			return nil

		case tcell.KeyF7:
			app.rawView.Toggle()
			return nil

		case tcell.KeyEscape:
			if app.rawView.Visible() {
				app.rawView.Toggle()
				return nil
			}

		case tcell.KeyF10:
			app.stop()
			return nil

		case tcell.KeyRune:
			switch event.Rune() {
			case 'q', 'Q':
				app.stop()
				return nil
			case 's', 'S':
				app.processTable.CycleSort()
				if s := app.getSnapshot(); s != nil {
					app.processTable.Update(s.Processes)
				}
				app.detailPanel.ShowMessage(fmt.Sprintf("[yellow]Sorting by: %s", app.processTable.SortName()))
				return nil
			}
		}

		return event
	})
}

func toggleAutoRefresh(app *App) {
	paused := !app.mon.Paused()
	app.mon.SetPaused(paused)

	status := "ON"
	if paused {
		status = "OFF"
	}
	app.detailPanel.ShowMessage(fmt.Sprintf("[yellow]Auto-refresh: %s", status))
	app.dashboard.Update(app.getSnapshot())
}
