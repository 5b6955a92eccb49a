package notification

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lxp-git/android-system-resource-monitor/internal/monitor"
	"github.com/lxp-git/android-system-resource-monitor/internal/topparse"
)

func testSnapshot() *monitor.Snapshot {
	return &monitor.Snapshot{
		Summary: topparse.SnapshotSummary{TotalProcessCount: 672, RunningProcessCount: 1},
		Processes: []topparse.ProcessRecord{
			{PID: 10776, Owner: "shell", CPUPercent: 44.4, Command: "top -b -n 1"},
			{PID: 9207, Owner: "u0_a189", CPUPercent: 2.7, AppIdentifier: "com.google.android.gms"},
		},
		CapturedAt: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
		Duration:   120 * time.Millisecond,
	}
}

func TestNotifierConsole(t *testing.T) {
	var buf bytes.Buffer
	n, err := NewNotifierTo(&buf, "", false, false)
	if err != nil {
		t.Fatal(err)
	}
	defer n.Close()

	n.Info("capture started")
	n.Warn("package list unreadable")
	n.Error("su failed")
	n.Debug("hidden")

	out := buf.String()
	for _, want := range []string{"INF", "capture started", "WRN", "package list unreadable", "ERR", "su failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug output should be suppressed without verbose")
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("colors should be disabled")
	}
}

func TestNotifierVerbose(t *testing.T) {
	var buf bytes.Buffer
	n, err := NewNotifierTo(&buf, "", false, true)
	if err != nil {
		t.Fatal(err)
	}
	n.Debug("resolver ready")
	if !strings.Contains(buf.String(), "resolver ready") {
		t.Errorf("expected debug output, got %q", buf.String())
	}
}

func TestNotifierFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asrm.log")
	n, err := NewNotifierTo(nil, path, true, false)
	if err != nil {
		t.Fatal(err)
	}
	n.Info("hello file")
	n.Snapshot(testSnapshot())
	n.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d:\n%s", len(lines), data)
	}
	if !strings.Contains(lines[0], `"level":"info"`) || !strings.Contains(lines[0], `"message":"hello file"`) {
		t.Errorf("unexpected first line: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"top_pid":10776`) || !strings.Contains(lines[1], `"total":672`) {
		t.Errorf("unexpected snapshot line: %s", lines[1])
	}
}

func TestNotifierBadPath(t *testing.T) {
	if _, err := NewNotifier(filepath.Join(t.TempDir(), "missing", "dir", "x.log"), false, false); err == nil {
		t.Error("expected an error for an unwritable log path")
	}
}

func TestJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.log")
	j, err := NewJournal(path)
	if err != nil {
		t.Fatal(err)
	}

	j.LogEvent(EventDaemonStart, "pid=42")
	j.LogCapture(testSnapshot())
	j.LogCaptureFailed(errors.New("su: not found"))
	j.Close()

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	entries, err := ReadJournal(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	if entries[0].Event != EventDaemonStart || entries[0].Details != "pid=42" {
		t.Errorf("first entry: %+v", entries[0])
	}

	c := entries[1]
	if c.Event != EventCapture || c.Total != 672 || c.Parsed != 2 || c.TopPID != 10776 || c.TopName != "top -b -n 1" {
		t.Errorf("capture entry: %+v", c)
	}
	if !c.Timestamp.Equal(testSnapshot().CapturedAt) {
		t.Errorf("capture timestamp: got %s", c.Timestamp)
	}

	if entries[2].Event != EventCaptureFailed || entries[2].Details != "su: not found" {
		t.Errorf("failure entry: %+v", entries[2])
	}
}

func TestJournalWithoutFile(t *testing.T) {
	j, err := NewJournal("")
	if err != nil {
		t.Fatal(err)
	}
	j.LogCapture(testSnapshot())
	j.Close()
}

func TestReadJournalSkipsGarbage(t *testing.T) {
	in := "not json\n{\"event\":\"capture\",\"total\":3}\n{}\n"
	entries, err := ReadJournal(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Total != 3 {
		t.Errorf("got %+v", entries)
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := FormatTimestamp(ts); got != "03:04:05" {
		t.Errorf("got %q, want 03:04:05", got)
	}
}

func TestNotifierLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	n, err := NewNotifierTo(&buf, "", false, true)
	if err != nil {
		t.Fatal(err)
	}
	defer n.Close()

	n.Logger().Debug().Int("apps", 3).Msg("registry loaded")

	out := buf.String()
	for _, want := range []string{"DBG", "registry loaded", "apps=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
