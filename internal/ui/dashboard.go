package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/rivo/tview"

	"github.com/lxp-git/android-system-resource-monitor/internal/monitor"
	"github.com/lxp-git/android-system-resource-monitor/internal/notification"
	"github.com/lxp-git/android-system-resource-monitor/internal/output"
)

// Dashboard is the summary header.
type Dashboard struct {
	app  *App
	view *tview.TextView
}

// NewDashboard creates the dashboard widget.
func NewDashboard(app *App) *Dashboard {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	tv.SetBorder(true).
		SetTitle(" System Resource Monitor ").
		SetBorderPadding(0, 0, 1, 1)

	return &Dashboard{app: app, view: tv}
}

// Update refreshes the dashboard display.
func (d *Dashboard) Update(s *monitor.Snapshot) {
	d.view.SetText(d.render(s))
}

func (d *Dashboard) render(s *monitor.Snapshot) string {
	var b strings.Builder

	refresh := "[green]ON"
	if d.app.mon.Paused() {
		refresh = "[red]OFF"
	}
	root := "[green]yes"
	if !d.app.opts.RootAvailable {
		root = "[red]no"
	}

	if s == nil {
		b.WriteString("[gray]Waiting for the first capture...\n")
	} else {
		fmt.Fprintf(&b, "[yellow]Tasks:[white] %d total, %d running   [yellow]Busy:[white] %d\n",
			s.Summary.TotalProcessCount, s.Summary.RunningProcessCount,
			d.app.opts.Classifier.Busy(s.Processes))
		fmt.Fprintf(&b, "[yellow]CPU:[white] %s\n", tview.Escape(output.SanitizeTerminal(s.Summary.CPUUsageLine)))
		fmt.Fprintf(&b, "[yellow]Mem:[white] %s\n", tview.Escape(output.SanitizeTerminal(s.Summary.MemoryUsageLine)))
	}

	updated := "never"
	if s != nil {
		updated = notification.FormatTimestamp(s.CapturedAt)
	}
	fmt.Fprintf(&b, "[yellow]Updated:[white] %s | [yellow]Auto-refresh:[white] %s[white] (%s) | [yellow]Root:[white] %s[white] | [yellow]Runtime:[white] %s",
		updated, refresh, d.app.mon.Interval(), root,
		time.Since(d.app.startTime).Truncate(time.Second))

	if d.app.getLastErr() != nil {
		b.WriteString(" | [red]last capture failed")
	}
	return b.String()
}
