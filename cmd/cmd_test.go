package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lxp-git/android-system-resource-monitor/internal/monitor"
	"github.com/lxp-git/android-system-resource-monitor/internal/notification"
	"github.com/lxp-git/android-system-resource-monitor/internal/registry"
	"github.com/lxp-git/android-system-resource-monitor/internal/topparse"
)

const sampleTop = "Tasks: 3 total,   1 running,   2 sleeping\n" +
	"Mem:    11540M total,    10948M used\n" +
	"800%cpu  17%user   0%nice  42%sys 736%idle\n" +
	"PID USER         PR  NI VIRT  RES  SHR S[%CPU] %MEM     TIME+ ARGS\n" +
	"9207 u0_a189      20   0  18G 218M 138M S  2.7   1.8   3:32.73 com.google.android.gms.persistent\n" +
	"10776 shell        20   0  10G 4.8M 3.7M R 44.4   0.0   0:00.17 top -b -n 1\n"

var errSu = errors.New("su: not found")

type failingCapturer struct{}

func (failingCapturer) Top(context.Context, int) (string, error) {
	return "", errSu
}

func TestTakeSnapshotFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "top.txt")
	if err := os.WriteFile(path, []byte(sampleTop), 0o644); err != nil {
		t.Fatal(err)
	}
	mon := monitor.New(failingCapturer{}, nil, monitor.Config{})

	snap, err := takeSnapshot(context.Background(), mon, nil, path)
	if err != nil {
		t.Fatalf("takeSnapshot() error = %v", err)
	}
	if snap.Summary.TotalProcessCount != 3 {
		t.Errorf("total = %d, want 3", snap.Summary.TotalProcessCount)
	}
	if len(snap.Processes) != 2 || snap.Processes[0].PID != 10776 {
		t.Errorf("processes = %+v, want pid 10776 first", snap.Processes)
	}
}

func TestTakeSnapshotFromStdin(t *testing.T) {
	mon := monitor.New(failingCapturer{}, nil, monitor.Config{})

	snap, err := takeSnapshot(context.Background(), mon, strings.NewReader(sampleTop), "-")
	if err != nil {
		t.Fatalf("takeSnapshot() error = %v", err)
	}
	if snap.Raw != sampleTop {
		t.Error("raw text was not kept")
	}
}

func TestTakeSnapshotErrors(t *testing.T) {
	mon := monitor.New(failingCapturer{}, nil, monitor.Config{})

	if _, err := takeSnapshot(context.Background(), mon, nil, ""); err == nil {
		t.Error("expected the capture error")
	}
	if _, err := takeSnapshot(context.Background(), mon, nil, filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestDrawWatch(t *testing.T) {
	mon := monitor.New(failingCapturer{}, nil, monitor.Config{Interval: 2 * time.Second})
	snap := mon.FromText(sampleTop)

	var buf bytes.Buffer
	drawWatch(&buf, snap, 1, mon)
	got := buf.String()

	for _, want := range []string{"Tasks: 3 total, 1 running", "top -b -n 1", "Refresh interval: 2s"} {
		if !strings.Contains(got, want) {
			t.Errorf("watch output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "com.google.android.gms.persistent") {
		t.Error("row limit was not applied")
	}
}

func TestPrintJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.log")
	j, err := notification.NewJournal(path)
	if err != nil {
		t.Fatal(err)
	}
	j.LogEvent(notification.EventDaemonStart, "pid 42")
	j.LogCapture(&monitor.Snapshot{
		Summary:   topparse.SnapshotSummary{TotalProcessCount: 3, RunningProcessCount: 1},
		Processes: []topparse.ProcessRecord{{PID: 7, Command: "surfaceflinger", CPUPercent: 12.5}},
	})
	j.Close()

	var buf bytes.Buffer
	if err := printJournal(&buf, path); err != nil {
		t.Fatalf("printJournal() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "daemon_start") || !strings.Contains(lines[0], "pid 42") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "surfaceflinger 12.5%") {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestPrintJournalNotConfigured(t *testing.T) {
	if err := printJournal(&bytes.Buffer{}, ""); err == nil {
		t.Error("expected an error without a journal path")
	}
}

func TestShutdownErr(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"canceled", context.Canceled, nil},
		{"wrapped canceled", fmt.Errorf("watch: %w", context.Canceled), nil},
		{"other", errSu, errSu},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shutdownErr(tt.in); got != tt.want {
				t.Errorf("shutdownErr(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWatchStopsCleanlyOnCancel(t *testing.T) {
	mon := monitor.New(failingCapturer{}, nil, monitor.Config{Interval: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := shutdownErr(mon.Start(ctx)); err != nil {
		t.Errorf("Start after cancel = %v, want nil", err)
	}
}

func TestLabeled(t *testing.T) {
	apps := []registry.App{
		{ID: "com.example.a", Label: "A"},
		{ID: "com.example.b"},
		{ID: "com.example.c", Label: "C"},
	}
	if got := labeled(apps); got != 2 {
		t.Errorf("labeled() = %d, want 2", got)
	}
}
