// Package notification writes operator-facing messages and the capture
// journal.
package notification

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lxp-git/android-system-resource-monitor/internal/monitor"
)

// Notifier handles terminal output and file logging.
type Notifier struct {
	mu      sync.Mutex
	logFile *os.File
	logger  zerolog.Logger
	verbose bool
}

// NewNotifier creates a notifier printing to stdout.
func NewNotifier(logFilePath string, colorEnabled, verbose bool) (*Notifier, error) {
	return NewNotifierTo(os.Stdout, logFilePath, colorEnabled, verbose)
}

// NewNotifierTo creates a notifier printing to console. A nil console logs
// to the file only.
func NewNotifierTo(console io.Writer, logFilePath string, colorEnabled, verbose bool) (*Notifier, error) {
	n := &Notifier{verbose: verbose}

	var writers []io.Writer
	if console != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        console,
			NoColor:    !colorEnabled,
			TimeFormat: "15:04:05",
		})
	}

	if logFilePath != "" {
		f, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		n.logFile = f
		writers = append(writers, f)
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	var out io.Writer = io.Discard
	if len(writers) > 0 {
		out = zerolog.MultiLevelWriter(writers...)
	}
	n.logger = zerolog.New(out).Level(level).With().Timestamp().Logger()

	return n, nil
}

// Close closes the log file.
func (n *Notifier) Close() {
	if n.logFile != nil {
		n.logFile.Close()
	}
}

// Logger exposes the underlying logger for structured fields.
func (n *Notifier) Logger() *zerolog.Logger {
	return &n.logger
}

// Info logs an informational message.
func (n *Notifier) Info(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.logger.Info().Msg(msg)
}

// Warn logs a warning message.
func (n *Notifier) Warn(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.logger.Warn().Msg(msg)
}

// Error logs an error message.
func (n *Notifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.logger.Error().Msg(msg)
}

// Debug logs a debug message (only if verbose).
func (n *Notifier) Debug(msg string) {
	if !n.verbose {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.logger.Debug().Msg(msg)
}

// Snapshot logs a one-line digest of a capture.
func (n *Notifier) Snapshot(s *monitor.Snapshot) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ev := n.logger.Info().
		Int("total", s.Summary.TotalProcessCount).
		Int("running", s.Summary.RunningProcessCount).
		Int("parsed", len(s.Processes)).
		Dur("took", s.Duration)
	if len(s.Processes) > 0 {
		top := s.Processes[0]
		name := top.AppIdentifier
		if name == "" {
			name = top.Command
		}
		ev = ev.Int("top_pid", top.PID).Str("top_name", name).Float64("top_cpu", top.CPUPercent)
	}
	ev.Msg("captured snapshot")
}

// FormatTimestamp formats a time for display.
func FormatTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}
