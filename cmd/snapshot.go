package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lxp-git/android-system-resource-monitor/internal/config"
	"github.com/lxp-git/android-system-resource-monitor/internal/monitor"
	"github.com/lxp-git/android-system-resource-monitor/internal/notification"
	"github.com/lxp-git/android-system-resource-monitor/internal/output"
)

var (
	snapshotFile   string
	snapshotFormat string
	snapshotLimit  int
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Capture once and print the summary and process list",
	Long: `Runs top once through the configured shell, or parses saved top output
given with --file ("-" reads standard input), and prints the result as a
table, JSON, or YAML.`,
	RunE: runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotFile, "file", "f", "", "parse saved top output instead of capturing (- for stdin)")
	snapshotCmd.Flags().StringVarP(&snapshotFormat, "output", "o", "", "output format: table, json, yaml (default from config)")
	snapshotCmd.Flags().IntVarP(&snapshotLimit, "limit", "n", -1, "maximum process rows (default display.max_rows, 0 for all)")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg := config.Global

	format := cfg.Display.Output
	if snapshotFormat != "" {
		format = snapshotFormat
	}
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}

	limit := cfg.Display.MaxRows
	if snapshotLimit >= 0 {
		limit = snapshotLimit
	}

	// Diagnostics go to stderr so JSON and YAML stay machine readable.
	notifier, err := notification.NewNotifierTo(os.Stderr, cfg.Notifications.LogFile, cfg.Notifications.ColorEnabled, cfg.Notifications.Verbose)
	if err != nil {
		return fmt.Errorf("creating notifier: %w", err)
	}
	defer notifier.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := newPipeline(ctx, cfg, notifier)

	snap, err := takeSnapshot(ctx, p.monitor, cmd.InOrStdin(), snapshotFile)
	if err != nil {
		notifier.Error(err.Error())
		return err
	}
	notifier.Snapshot(snap)

	return output.Render(cmd.OutOrStdout(), snap, f, output.Options{
		Limit:   limit,
		Display: p.display(),
	})
}

// takeSnapshot captures live output, or parses path when one is given.
func takeSnapshot(ctx context.Context, mon *monitor.Monitor, stdin io.Reader, path string) (*monitor.Snapshot, error) {
	if path == "" {
		return mon.Capture(ctx)
	}

	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading top output: %w", err)
	}
	return mon.FromText(string(raw)), nil
}
