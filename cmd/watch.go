package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lxp-git/android-system-resource-monitor/internal/config"
	"github.com/lxp-git/android-system-resource-monitor/internal/daemon"
	"github.com/lxp-git/android-system-resource-monitor/internal/monitor"
	"github.com/lxp-git/android-system-resource-monitor/internal/notification"
	"github.com/lxp-git/android-system-resource-monitor/internal/output"
)

var (
	watchQuiet   bool
	watchPIDFile string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Foreground auto-refreshing text view",
	Long:  `Captures top at the configured interval and redraws the summary and the busiest processes.`,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchQuiet, "quiet", false, "do not draw; only log and journal captures")
	watchCmd.Flags().StringVar(&watchPIDFile, "pid-file", "", "hold this pid file while running")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := config.Global

	var console io.Writer = os.Stdout
	if watchQuiet {
		console = nil
	}
	notifier, err := notification.NewNotifierTo(console, cfg.Notifications.LogFile, cfg.Notifications.ColorEnabled, cfg.Notifications.Verbose)
	if err != nil {
		return fmt.Errorf("creating notifier: %w", err)
	}
	defer notifier.Close()

	journal, err := notification.NewJournal(cfg.Notifications.JournalFile)
	if err != nil {
		return err
	}
	defer journal.Close()

	if watchPIDFile != "" {
		if err := daemon.AcquirePID(watchPIDFile); err != nil {
			return err
		}
		defer daemon.ReleasePID(watchPIDFile)
		journal.LogEvent(notification.EventDaemonStart, fmt.Sprintf("pid %d", os.Getpid()))
		defer journal.LogEvent(notification.EventDaemonStop, fmt.Sprintf("pid %d", os.Getpid()))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			notifier.Info("Shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	notifier.Info("asrm watch starting...")
	p := newPipeline(ctx, cfg, notifier)

	p.monitor.OnUpdate(func(s *monitor.Snapshot) {
		journal.LogCapture(s)
		if watchQuiet {
			notifier.Snapshot(s)
			return
		}
		drawWatch(os.Stdout, s, cfg.Display.MaxRows, p.monitor)
	})
	p.monitor.OnError(func(err error) {
		journal.LogCaptureFailed(err)
		notifier.Error(fmt.Sprintf("Capture failed: %v", err))
	})

	return shutdownErr(p.monitor.Start(ctx))
}

// shutdownErr treats cancellation by a signal as a clean exit.
func shutdownErr(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func drawWatch(w io.Writer, s *monitor.Snapshot, maxRows int, mon *monitor.Monitor) {
	// Clear screen
	fmt.Fprint(w, "\033[H\033[2J")

	fmt.Fprintf(w, "\033[1mAndroid System Resource Monitor\033[0m | %s | took %s\n",
		notification.FormatTimestamp(s.CapturedAt), s.Duration.Round(time.Millisecond))
	output.WriteSummary(w, s.Summary)
	fmt.Fprintln(w, "─────────────────────────────────────────────────────────────────────────────────────────────────")
	fmt.Fprintf(w, "%7s %-10s %2s %7s %7s %7s %10s %s\n",
		"PID", "USER", "S", "CPU%", "MEM%", "RES", "TIME+", "APP / COMMAND")
	fmt.Fprintln(w, "─────────────────────────────────────────────────────────────────────────────────────────────────")

	procs := s.Processes
	if maxRows > 0 && len(procs) > maxRows {
		procs = procs[:maxRows]
	}
	for _, p := range procs {
		fmt.Fprintln(w, output.SanitizeTerminal(monitor.FormatProcessLine(p)))
	}

	fmt.Fprintf(w, "\nPress Ctrl+C to exit | Refresh interval: %s\n", mon.Interval())
}
