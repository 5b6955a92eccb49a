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
	"github.com/lxp-git/android-system-resource-monitor/internal/notification"
	"github.com/lxp-git/android-system-resource-monitor/internal/output"
)

var rawFile string

var rawCmd = &cobra.Command{
	Use:   "raw",
	Short: "Print the unparsed top output",
	Long:  `Captures once and prints the raw top text with terminal control characters escaped.`,
	RunE:  runRaw,
}

func init() {
	rawCmd.Flags().StringVarP(&rawFile, "file", "f", "", "read saved top output instead of capturing (- for stdin)")
}

func runRaw(cmd *cobra.Command, args []string) error {
	cfg := config.Global

	notifier, err := notification.NewNotifierTo(os.Stderr, cfg.Notifications.LogFile, cfg.Notifications.ColorEnabled, cfg.Notifications.Verbose)
	if err != nil {
		return fmt.Errorf("creating notifier: %w", err)
	}
	defer notifier.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Raw output needs no attribution.
	raw := *cfg
	raw.Identity.Enabled = false
	p := newPipeline(ctx, &raw, notifier)

	snap, err := takeSnapshot(ctx, p.monitor, cmd.InOrStdin(), rawFile)
	if err != nil {
		notifier.Error(err.Error())
		return err
	}

	_, err = io.WriteString(cmd.OutOrStdout(), output.SanitizeTerminal(snap.Raw))
	return err
}
