// Package monitor captures top output on an interval and turns it into
// snapshots.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lxp-git/android-system-resource-monitor/internal/topparse"
)

// DefaultInterval is the auto-refresh period.
const DefaultInterval = 3 * time.Second

// Capturer produces raw top output.
type Capturer interface {
	Top(ctx context.Context, iterations int) (string, error)
}

// Snapshot is one parsed capture.
type Snapshot struct {
	Raw        string                   `json:"-" yaml:"-"`
	Summary    topparse.SnapshotSummary `json:"summary" yaml:"summary"`
	Processes  []topparse.ProcessRecord `json:"processes" yaml:"processes"`
	CapturedAt time.Time                `json:"captured_at" yaml:"captured_at"`
	Duration   time.Duration            `json:"duration" yaml:"duration"`
}

// Config tunes a Monitor.
type Config struct {
	Iterations int
	Interval   time.Duration
	Workers    int
}

// Monitor runs captures and keeps the latest snapshot.
type Monitor struct {
	mu       sync.RWMutex
	capturer Capturer
	enricher topparse.Enricher
	cfg      Config
	latest   *Snapshot
	paused   bool
	onUpdate func(*Snapshot)
	onError  func(error)

	refresh chan struct{}
	now     func() time.Time
}

// New creates a monitor. enricher may be nil, in which case records keep an
// empty AppIdentifier.
func New(capturer Capturer, enricher topparse.Enricher, cfg Config) *Monitor {
	if cfg.Iterations < 1 {
		cfg.Iterations = 1
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Monitor{
		capturer: capturer,
		enricher: enricher,
		cfg:      cfg,
		refresh:  make(chan struct{}, 1),
		now:      time.Now,
	}
}

// OnUpdate sets a callback invoked after each successful capture.
func (m *Monitor) OnUpdate(fn func(*Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onUpdate = fn
}

// OnError sets a callback invoked when a capture fails.
func (m *Monitor) OnError(fn func(error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onError = fn
}

// Capture runs top once and parses the result. The latest snapshot is only
// replaced on success.
func (m *Monitor) Capture(ctx context.Context) (*Snapshot, error) {
	if m.capturer == nil {
		return nil, fmt.Errorf("no capturer configured")
	}

	start := m.now()
	raw, err := m.capturer.Top(ctx, m.cfg.Iterations)
	if err != nil {
		return nil, fmt.Errorf("capturing top output: %w", err)
	}

	snap := m.parse(raw, start)
	snap.Duration = m.now().Sub(start)

	m.mu.Lock()
	m.latest = snap
	m.mu.Unlock()
	return snap, nil
}

// FromText parses already captured output, such as a saved file, without
// touching the latest snapshot.
func (m *Monitor) FromText(raw string) *Snapshot {
	return m.parse(raw, m.now())
}

func (m *Monitor) parse(raw string, at time.Time) *Snapshot {
	opts := []topparse.Option{topparse.WithWorkers(m.cfg.Workers)}
	if m.enricher != nil {
		opts = append(opts, topparse.WithEnricher(m.enricher))
	}
	summary, procs := topparse.Parse(raw, opts...)
	return &Snapshot{
		Raw:        raw,
		Summary:    summary,
		Processes:  procs,
		CapturedAt: at,
	}
}

// Start captures immediately, then on every tick until ctx is done. Ticks
// are skipped while paused; Refresh forces a capture either way.
func (m *Monitor) Start(ctx context.Context) error {
	m.tick(ctx)

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !m.Paused() {
				m.tick(ctx)
			}
		case <-m.refresh:
			m.tick(ctx)
		}
	}
}

func (m *Monitor) tick(ctx context.Context) {
	snap, err := m.Capture(ctx)

	m.mu.RLock()
	onUpdate, onError := m.onUpdate, m.onError
	m.mu.RUnlock()

	if err != nil {
		if onError != nil && ctx.Err() == nil {
			onError(err)
		}
		return
	}
	if onUpdate != nil {
		onUpdate(snap)
	}
}

// Refresh asks a running Start loop for an immediate capture.
func (m *Monitor) Refresh() {
	select {
	case m.refresh <- struct{}{}:
	default:
	}
}

// SetPaused turns auto-refresh off or back on.
func (m *Monitor) SetPaused(paused bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = paused
}

// Paused reports whether auto-refresh is off.
func (m *Monitor) Paused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paused
}

// Interval returns the auto-refresh period.
func (m *Monitor) Interval() time.Duration {
	return m.cfg.Interval
}

// Latest returns the last successful capture, or nil.
func (m *Monitor) Latest() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest
}

// FormatProcessLine formats a process for text output.
func FormatProcessLine(p topparse.ProcessRecord) string {
	name := p.AppIdentifier
	if name == "" {
		name = p.Command
	}
	return fmt.Sprintf("%7d %-10s %2s %6.1f%% %6.1f%% %7s %10s %s",
		p.PID, truncate(p.Owner, 10), p.State,
		p.CPUPercent, p.MemPercent, p.ResidentMemory,
		p.ElapsedTime, truncate(name, 48))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
