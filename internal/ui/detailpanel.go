package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/lxp-git/android-system-resource-monitor/internal/notification"
	"github.com/lxp-git/android-system-resource-monitor/internal/output"
)

// DetailPanel shows status messages and the selected process.
type DetailPanel struct {
	app  *App
	view *tview.TextView
}

// NewDetailPanel creates the detail panel.
func NewDetailPanel(app *App) *DetailPanel {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)

	tv.SetBorder(true).
		SetTitle(" Details ").
		SetBorderPadding(0, 0, 1, 1)

	return &DetailPanel{app: app, view: tv}
}

// ShowMessage replaces the panel text. Color tags are honored.
func (dp *DetailPanel) ShowMessage(msg string) {
	dp.view.SetText(msg)
}

// ShowError reports a failed capture.
func (dp *DetailPanel) ShowError(err error) {
	ts := notification.FormatTimestamp(dp.app.startTime)
	if s := dp.app.getSnapshot(); s != nil {
		ts = notification.FormatTimestamp(s.CapturedAt)
	}
	dp.view.SetText(fmt.Sprintf("[red]Error: %s\n[gray]Showing the capture from %s.",
		tview.Escape(output.SanitizeTerminal(err.Error())), ts))
}

// ShowProcess describes one process.
func (dp *DetailPanel) ShowProcess(p output.ProcessView) {
	var b strings.Builder
	esc := func(s string) string { return tview.Escape(output.SanitizeTerminal(s)) }

	if p.Label != "" {
		fmt.Fprintf(&b, "[yellow]%s[white] (%s)\n", esc(p.Label), esc(p.AppIdentifier))
	} else if p.AppIdentifier != "" {
		fmt.Fprintf(&b, "[yellow]%s[white]\n", esc(p.AppIdentifier))
	} else {
		fmt.Fprintf(&b, "[yellow]PID %d[white]\n", p.PID)
	}
	fmt.Fprintf(&b, "PID %d | User %s | State %s | PR %d | NI %d\n",
		p.PID, esc(p.Owner), esc(p.State), p.Priority, p.NiceValue)
	fmt.Fprintf(&b, "CPU %.1f%% | MEM %.1f%% | VIRT %s | RES %s | SHR %s | TIME+ %s\n",
		p.CPUPercent, p.MemPercent, esc(p.VirtualMemory), esc(p.ResidentMemory),
		esc(p.SharedMemory), esc(p.ElapsedTime))
	fmt.Fprintf(&b, "[gray]%s", esc(p.Command))

	dp.view.SetText(b.String())
}
