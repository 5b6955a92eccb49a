// Package ui is the interactive terminal process list.
package ui

import (
	"context"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lxp-git/android-system-resource-monitor/internal/monitor"
	"github.com/lxp-git/android-system-resource-monitor/internal/notification"
	"github.com/lxp-git/android-system-resource-monitor/internal/output"
)

const (
	pageMain = "main"
	pageRaw  = "raw"
)

// Options tune the interactive view.
type Options struct {
	Display       output.DisplayFunc
	Classifier    *monitor.Classifier
	MaxRows       int
	RootAvailable bool
}

// App is the main TUI application.
type App struct {
	tapp     *tview.Application
	pages    *tview.Pages
	mon      *monitor.Monitor
	notifier *notification.Notifier
	journal  *notification.Journal
	opts     Options

	dashboard    *Dashboard
	processTable *ProcessTable
	detailPanel  *DetailPanel
	rawView      *RawView

	mu        sync.RWMutex
	lastErr   error
	startTime time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(mon *monitor.Monitor, notifier *notification.Notifier, journal *notification.Journal, opts Options) *App {
	if opts.Classifier == nil {
		opts.Classifier = monitor.NewClassifier(monitor.DefaultCPUWarn, monitor.DefaultCPUHigh)
	}

	app := &App{
		tapp:      tview.NewApplication(),
		pages:     tview.NewPages(),
		mon:       mon,
		notifier:  notifier,
		journal:   journal,
		opts:      opts,
		startTime: time.Now(),
	}

	app.ctx, app.cancel = context.WithCancel(context.Background())

	app.dashboard = NewDashboard(app)
	app.processTable = NewProcessTable(app)
	app.detailPanel = NewDetailPanel(app)
	app.rawView = NewRawView(app)

	return app
}

// Run starts the TUI.
func (a *App) Run() error {
	// Layout: summary + process table + detail panel
	mainFlex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.dashboard.view, 6, 0, false).
		AddItem(a.processTable.table, 0, 3, true).
		AddItem(a.detailPanel.view, 7, 0, false).
		AddItem(a.createFooter(), 1, 0, false)

	a.pages.AddPage(pageMain, mainFlex, true, true)
	a.pages.AddPage(pageRaw, a.rawView.view, true, false)

	a.tapp.SetRoot(a.pages, true)
	setupKeybindings(a)

	a.mon.OnUpdate(a.handleSnapshot)
	a.mon.OnError(a.handleError)

	if !a.opts.RootAvailable {
		a.detailPanel.ShowMessage("[yellow]Root access was not confirmed; top may only see this user's processes.")
	}

	go a.mon.Start(a.ctx)

	return a.tapp.Run()
}

func (a *App) handleSnapshot(s *monitor.Snapshot) {
	a.mu.Lock()
	a.lastErr = nil
	a.mu.Unlock()

	if a.journal != nil {
		a.journal.LogCapture(s)
	}
	if a.notifier != nil {
		a.notifier.Snapshot(s)
	}

	a.tapp.QueueUpdateDraw(func() {
		a.dashboard.Update(s)
		a.processTable.Update(s.Processes)
		a.rawView.Update(s)
	})
}

func (a *App) handleError(err error) {
	a.mu.Lock()
	a.lastErr = err
	a.mu.Unlock()

	if a.journal != nil {
		a.journal.LogCaptureFailed(err)
	}
	if a.notifier != nil {
		a.notifier.Error(err.Error())
	}

	a.tapp.QueueUpdateDraw(func() {
		a.detailPanel.ShowError(err)
		a.dashboard.Update(a.getSnapshot())
	})
}

func (a *App) createFooter() *tview.TextView {
	footer := tview.NewTextView().
		SetDynamicColors(true).
		SetText(" [yellow]Enter[white]:Details [yellow]F5[white]:Refresh [yellow]F6[white]:Auto-refresh [yellow]F7[white]:Raw output [yellow]S[white]:Sort [yellow]F10/Q[white]:Quit")
	footer.SetBackgroundColor(tcell.ColorDarkSlateGray)
	return footer
}

func (a *App) stop() {
	a.cancel()
	a.tapp.Stop()
}

func (a *App) getSnapshot() *monitor.Snapshot {
	return a.mon.Latest()
}

func (a *App) getLastErr() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastErr
}
