package ui

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/lxp-git/android-system-resource-monitor/internal/monitor"
	"github.com/lxp-git/android-system-resource-monitor/internal/notification"
	"github.com/lxp-git/android-system-resource-monitor/internal/output"
)

// RawView shows the unparsed top output of the latest capture. It is
// read-only.
type RawView struct {
	app  *App
	view *tview.TextView
}

// NewRawView creates the raw output viewer.
func NewRawView(app *App) *RawView {
	tv := tview.NewTextView().
		SetDynamicColors(false).
		SetScrollable(true).
		SetWrap(false)

	tv.SetBorder(true).
		SetTitle(" Raw output (Esc/F7 to close) ").
		SetBorderPadding(0, 0, 1, 1)
	tv.SetText("No capture yet.")

	return &RawView{app: app, view: tv}
}

// Update loads the raw text of s.
func (rv *RawView) Update(s *monitor.Snapshot) {
	if s == nil {
		return
	}
	rv.view.SetTitle(fmt.Sprintf(" Raw output @ %s (Esc/F7 to close) ", notification.FormatTimestamp(s.CapturedAt)))
	rv.view.SetText(output.SanitizeTerminal(s.Raw))
}

// Toggle switches between the process list and the raw viewer.
func (rv *RawView) Toggle() {
	name, _ := rv.app.pages.GetFrontPage()
	if name == pageRaw {
		rv.app.pages.SwitchToPage(pageMain)
		rv.app.tapp.SetFocus(rv.app.processTable.table)
		return
	}
	rv.Update(rv.app.getSnapshot())
	rv.view.ScrollToBeginning()
	rv.app.pages.SwitchToPage(pageRaw)
	rv.app.tapp.SetFocus(rv.view)
}

// Visible reports whether the raw viewer is showing.
func (rv *RawView) Visible() bool {
	name, _ := rv.app.pages.GetFrontPage()
	return name == pageRaw
}
