package monitor

import "github.com/lxp-git/android-system-resource-monitor/internal/topparse"

// Load groups processes by how busy they are.
type Load int

const (
	LoadNormal Load = iota
	LoadWarn
	LoadHigh
)

func (l Load) String() string {
	switch l {
	case LoadNormal:
		return "Normal"
	case LoadWarn:
		return "Warn"
	case LoadHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// Default CPU thresholds, in percent.
const (
	DefaultCPUWarn = 20.0
	DefaultCPUHigh = 50.0
)

// Classifier assigns a Load from a record's CPU usage.
type Classifier struct {
	warn float64
	high float64
}

// NewClassifier creates a classifier. Usage strictly above high is LoadHigh,
// strictly above warn is LoadWarn.
func NewClassifier(warn, high float64) *Classifier {
	if warn <= 0 {
		warn = DefaultCPUWarn
	}
	if high <= 0 {
		high = DefaultCPUHigh
	}
	if warn > high {
		warn = high
	}
	return &Classifier{warn: warn, high: high}
}

// Classify determines the Load for a process.
func (c *Classifier) Classify(p topparse.ProcessRecord) Load {
	switch {
	case p.CPUPercent > c.high:
		return LoadHigh
	case p.CPUPercent > c.warn:
		return LoadWarn
	default:
		return LoadNormal
	}
}

// Busy counts the records at or above LoadWarn.
func (c *Classifier) Busy(procs []topparse.ProcessRecord) int {
	n := 0
	for _, p := range procs {
		if c.Classify(p) != LoadNormal {
			n++
		}
	}
	return n
}
