package monitor_test

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lxp-git/android-system-resource-monitor/internal/monitor"
	"github.com/lxp-git/android-system-resource-monitor/internal/topparse"
)

const sample = "Tasks: 672 total,   1 running, 671 sleeping,   0 stopped,   0 zombie\n" +
	"Mem:    11540M total,    10948M used,      591M free,        5M buffers\n" +
	"800%cpu  17%user   0%nice  42%sys 736%idle   0%iow   3%irq   3%sirq   0%host\n" +
	"PID USER         PR  NI VIRT  RES  SHR S[%CPU] %MEM     TIME+ ARGS\n" +
	"9207 u0_a189      20   0  18G 218M 138M S  2.7   1.8   3:32.73 com.google.android.gms.persistent\n" +
	"10776 shell        20   0  10G 4.8M 3.7M R 44.4   0.0   0:00.17 top -b -n 1\n"

type fakeCapturer struct {
	mu         sync.Mutex
	out        string
	err        error
	calls      int
	iterations []int
}

func (f *fakeCapturer) Top(_ context.Context, iterations int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.iterations = append(f.iterations, iterations)
	return f.out, f.err
}

func (f *fakeCapturer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type upperEnricher struct{}

func (upperEnricher) Resolve(rec topparse.ProcessRecord) topparse.ProcessRecord {
	rec.AppIdentifier = strings.ToUpper(rec.Owner)
	return rec
}

func TestCapture(t *testing.T) {
	c := &fakeCapturer{out: sample}
	mon := monitor.New(c, upperEnricher{}, monitor.Config{Iterations: 2, Workers: 2})

	if mon.Latest() != nil {
		t.Fatal("expected no snapshot before the first capture")
	}

	snap, err := mon.Capture(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.iterations[0] != 2 {
		t.Errorf("iterations: got %d, want 2", c.iterations[0])
	}
	if snap.Summary.TotalProcessCount != 672 {
		t.Errorf("total: got %d, want 672", snap.Summary.TotalProcessCount)
	}
	if len(snap.Processes) != 2 || snap.Processes[0].PID != 10776 {
		t.Fatalf("unexpected processes: %+v", snap.Processes)
	}
	if snap.Processes[0].AppIdentifier != "SHELL" {
		t.Errorf("enricher not applied: %+v", snap.Processes[0])
	}
	if snap.Raw != sample {
		t.Error("raw output should be kept verbatim")
	}
	if mon.Latest() != snap {
		t.Error("Latest should return the captured snapshot")
	}
}

func TestCaptureErrorKeepsLatest(t *testing.T) {
	c := &fakeCapturer{out: sample}
	mon := monitor.New(c, nil, monitor.Config{})

	first, err := mon.Capture(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	c.err = errors.New("su: permission denied")
	snap, err := mon.Capture(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if snap != nil {
		t.Error("failed capture should yield no snapshot")
	}
	if !strings.Contains(err.Error(), "permission denied") {
		t.Errorf("error should wrap the cause, got %v", err)
	}
	if mon.Latest() != first {
		t.Error("failed capture must not replace the latest snapshot")
	}
}

func TestCaptureWithoutCapturer(t *testing.T) {
	mon := monitor.New(nil, nil, monitor.Config{})
	if _, err := mon.Capture(context.Background()); err == nil {
		t.Error("expected an error without a capturer")
	}
}

func TestFromText(t *testing.T) {
	mon := monitor.New(nil, nil, monitor.Config{})
	snap := mon.FromText(sample)

	if snap.Summary.RunningProcessCount != 1 {
		t.Errorf("running: got %d, want 1", snap.Summary.RunningProcessCount)
	}
	if snap.Processes[1].AppIdentifier != "" {
		t.Error("no enricher means no identifier")
	}
	if mon.Latest() != nil {
		t.Error("FromText must not set the latest snapshot")
	}
}

func TestStartInvokesCallbacks(t *testing.T) {
	c := &fakeCapturer{out: sample}
	mon := monitor.New(c, nil, monitor.Config{Interval: 10 * time.Millisecond})

	updates := make(chan *monitor.Snapshot, 16)
	mon.OnUpdate(func(s *monitor.Snapshot) {
		select {
		case updates <- s:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mon.Start(ctx) }()

	for i := 0; i < 2; i++ {
		select {
		case s := <-updates:
			if len(s.Processes) != 2 {
				t.Errorf("update %d: got %d processes", i, len(s.Processes))
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for an update")
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Start returned %v, want context.Canceled", err)
	}
}

func TestStartReportsErrors(t *testing.T) {
	c := &fakeCapturer{err: errors.New("no root")}
	mon := monitor.New(c, nil, monitor.Config{Interval: time.Hour})

	errs := make(chan error, 1)
	mon.OnError(func(err error) {
		select {
		case errs <- err:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = mon.Start(ctx) }()

	select {
	case err := <-errs:
		if !strings.Contains(err.Error(), "no root") {
			t.Errorf("got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the error callback")
	}
}

func TestPauseAndRefresh(t *testing.T) {
	c := &fakeCapturer{out: sample}
	mon := monitor.New(c, nil, monitor.Config{Interval: time.Hour})
	mon.SetPaused(true)
	if !mon.Paused() {
		t.Fatal("expected paused")
	}

	updates := make(chan struct{}, 4)
	mon.OnUpdate(func(*monitor.Snapshot) { updates <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = mon.Start(ctx) }()

	// initial capture happens even while paused
	waitUpdate(t, updates)

	mon.Refresh()
	waitUpdate(t, updates)

	if got := c.Calls(); got != 2 {
		t.Errorf("captures: got %d, want 2", got)
	}
}

func waitUpdate(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an update")
	}
}

func TestDefaults(t *testing.T) {
	mon := monitor.New(&fakeCapturer{}, nil, monitor.Config{})
	if mon.Interval() != monitor.DefaultInterval {
		t.Errorf("interval: got %s, want %s", mon.Interval(), monitor.DefaultInterval)
	}
}

func TestFormatProcessLine(t *testing.T) {
	line := monitor.FormatProcessLine(topparse.ProcessRecord{
		PID: 9207, Owner: "u0_a189", State: "S", CPUPercent: 2.7, MemPercent: 1.8,
		ResidentMemory: "218M", ElapsedTime: "3:32.73",
		Command: "com.google.android.gms.persistent", AppIdentifier: "com.google.android.gms",
	})

	for _, want := range []string{"9207", "u0_a189", "2.7%", "218M", "com.google.android.gms"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
	if strings.Contains(line, "persistent") {
		t.Error("identifier should be shown instead of the command")
	}
}

func TestLoadString(t *testing.T) {
	tests := []struct {
		load monitor.Load
		want string
	}{
		{monitor.LoadNormal, "Normal"},
		{monitor.LoadWarn, "Warn"},
		{monitor.LoadHigh, "High"},
		{monitor.Load(9), "Unknown"},
	}

	for _, tt := range tests {
		got := tt.load.String()
		if got != tt.want {
			t.Errorf("load %d: got %q, want %q", tt.load, got, tt.want)
		}
	}
}

func TestClassifier(t *testing.T) {
	c := monitor.NewClassifier(monitor.DefaultCPUWarn, monitor.DefaultCPUHigh)

	tests := []struct {
		name string
		cpu  float64
		want monitor.Load
	}{
		{"idle", 0, monitor.LoadNormal},
		{"at warn threshold", 20, monitor.LoadNormal},
		{"above warn", 20.1, monitor.LoadWarn},
		{"at high threshold", 50, monitor.LoadWarn},
		{"above high", 44.4 * 2, monitor.LoadHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(topparse.ProcessRecord{CPUPercent: tt.cpu})
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}

	procs := []topparse.ProcessRecord{{CPUPercent: 60}, {CPUPercent: 25}, {CPUPercent: 1}}
	if got := c.Busy(procs); got != 2 {
		t.Errorf("Busy: got %d, want 2", got)
	}
}

func TestClassifierThresholdsClamp(t *testing.T) {
	c := monitor.NewClassifier(80, 30)
	if got := c.Classify(topparse.ProcessRecord{CPUPercent: 40}); got != monitor.LoadHigh {
		t.Errorf("warn above high should clamp, got %s", got)
	}
}

func TestGetSystemMetrics(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("host metrics are only checked on linux")
	}
	metrics, err := monitor.GetSystemMetrics(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if metrics.TotalMemMB <= 0 {
		t.Error("expected positive total memory")
	}
	if metrics.FreeMemMB < 0 {
		t.Error("expected non-negative free memory")
	}
	if metrics.TotalMemory < 0 || metrics.TotalMemory > 100 {
		t.Errorf("memory percentage out of range: %.1f", metrics.TotalMemory)
	}
	if metrics.Uptime <= 0 {
		t.Error("expected positive uptime")
	}
}
