package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lxp-git/android-system-resource-monitor/internal/config"
	"github.com/lxp-git/android-system-resource-monitor/internal/notification"
	"github.com/lxp-git/android-system-resource-monitor/internal/output"
)

var (
	followLogs  bool
	showJournal bool
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View the asrm log or capture journal",
	RunE:  runLogs,
}

func init() {
	logsCmd.Flags().BoolVar(&followLogs, "follow", false, "follow log output (like tail -f)")
	logsCmd.Flags().BoolVar(&showJournal, "journal", false, "summarize the capture journal instead of the log")
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg := config.Global

	if showJournal {
		return printJournal(cmd.OutOrStdout(), cfg.Notifications.JournalFile)
	}

	logFile := cfg.Notifications.LogFile
	f, err := os.Open(logFile)
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", logFile, err)
	}
	defer f.Close()

	if !followLogs {
		// Print entire log file
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			fmt.Println(output.SanitizeTerminal(scanner.Text()))
		}
		return scanner.Err()
	}

	// Follow mode: read existing content then tail
	if _, err := io.Copy(os.Stdout, f); err != nil {
		return err
	}

	fmt.Println("--- Following log output (Ctrl+C to stop) ---")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	buf := make([]byte, 4096)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			os.Stdout.Write(buf[:n])
		}
		if err == nil {
			continue
		}
		select {
		case <-sigCh:
			return nil
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func printJournal(w io.Writer, path string) error {
	if path == "" {
		return fmt.Errorf("no journal file configured")
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening journal %s: %w", path, err)
	}
	defer f.Close()

	entries, err := notification.ReadJournal(f)
	if err != nil {
		return err
	}

	for _, e := range entries {
		ts := e.Timestamp.Format("2006-01-02 15:04:05")
		switch e.Event {
		case notification.EventCapture:
			fmt.Fprintf(w, "%s capture  %4d total %3d running %4d parsed  top %d %s %.1f%%\n",
				ts, e.Total, e.Running, e.Parsed, e.TopPID, output.SanitizeTerminal(e.TopName), e.TopCPU)
		default:
			fmt.Fprintf(w, "%s %-8s %s\n", ts, e.Event, output.SanitizeTerminal(e.Details))
		}
	}
	return nil
}
