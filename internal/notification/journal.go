package notification

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/lxp-git/android-system-resource-monitor/internal/monitor"
)

// Journal events.
const (
	EventCapture       = "capture"
	EventCaptureFailed = "capture_failed"
	EventDaemonStart   = "daemon_start"
	EventDaemonStop    = "daemon_stop"
)

// JournalEntry is a single journal line.
type JournalEntry struct {
	Timestamp time.Time     `json:"timestamp"`
	Event     string        `json:"event"`
	Total     int           `json:"total,omitempty"`
	Running   int           `json:"running,omitempty"`
	Parsed    int           `json:"parsed,omitempty"`
	TopPID    int           `json:"top_pid,omitempty"`
	TopName   string        `json:"top_name,omitempty"`
	TopCPU    float64       `json:"top_cpu,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Details   string        `json:"details,omitempty"`
}

// Journal writes an append-only record of captures.
type Journal struct {
	mu   sync.Mutex
	file *os.File
	now  func() time.Time
}

// NewJournal opens filePath for appending. An empty path gives a journal
// that drops every entry.
func NewJournal(filePath string) (*Journal, error) {
	if filePath == "" {
		return &Journal{now: time.Now}, nil
	}

	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening journal file: %w", err)
	}

	return &Journal{file: f, now: time.Now}, nil
}

// Close closes the journal file.
func (j *Journal) Close() {
	if j.file != nil {
		j.file.Close()
	}
}

// LogCapture records a successful capture.
func (j *Journal) LogCapture(s *monitor.Snapshot) {
	e := JournalEntry{
		Timestamp: s.CapturedAt,
		Event:     EventCapture,
		Total:     s.Summary.TotalProcessCount,
		Running:   s.Summary.RunningProcessCount,
		Parsed:    len(s.Processes),
		Duration:  s.Duration,
	}
	if len(s.Processes) > 0 {
		top := s.Processes[0]
		e.TopPID, e.TopCPU = top.PID, top.CPUPercent
		e.TopName = top.AppIdentifier
		if e.TopName == "" {
			e.TopName = top.Command
		}
	}
	j.log(e)
}

// LogCaptureFailed records a capture that produced no snapshot.
func (j *Journal) LogCaptureFailed(err error) {
	j.LogEvent(EventCaptureFailed, err.Error())
}

// LogEvent records a general event.
func (j *Journal) LogEvent(event, details string) {
	j.log(JournalEntry{
		Timestamp: j.now(),
		Event:     event,
		Details:   details,
	})
}

func (j *Journal) log(entry JournalEntry) {
	if j.file == nil {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	j.file.Write(append(data, '\n'))
}

// ReadJournal decodes every entry in r. Lines that are not valid entries
// are skipped.
func ReadJournal(r io.Reader) ([]JournalEntry, error) {
	var entries []JournalEntry
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		var e JournalEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil || e.Event == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, sc.Err()
}
