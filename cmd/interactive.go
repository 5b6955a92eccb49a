package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lxp-git/android-system-resource-monitor/internal/config"
	"github.com/lxp-git/android-system-resource-monitor/internal/notification"
	"github.com/lxp-git/android-system-resource-monitor/internal/ui"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Launch the interactive process list",
	Long: `Launches the terminal UI: summary header, CPU-sorted process list
with application labels, raw output viewer, and keyboard controls.`,
	RunE: runInteractive,
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg := config.Global

	// The TUI owns the terminal, so the notifier only writes the log file.
	notifier, err := notification.NewNotifierTo(nil, cfg.Notifications.LogFile, cfg.Notifications.ColorEnabled, cfg.Notifications.Verbose)
	if err != nil {
		return err
	}
	defer notifier.Close()

	journal, err := notification.NewJournal(cfg.Notifications.JournalFile)
	if err != nil {
		return err
	}
	defer journal.Close()

	ctx := context.Background()
	p := newPipeline(ctx, cfg, notifier)

	rootOK := p.executor.RootAvailable(ctx)
	if !rootOK {
		notifier.Warn("Root access not available; capture may be limited")
	}

	app := ui.NewApp(p.monitor, notifier, journal, ui.Options{
		Display:       p.display(),
		Classifier:    p.classifier,
		MaxRows:       cfg.Display.MaxRows,
		RootAvailable: rootOK,
	})
	return app.Run()
}
