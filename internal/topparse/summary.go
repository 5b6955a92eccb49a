package topparse

import (
	"regexp"
	"strconv"
	"strings"
)

// SnapshotSummary holds the system-wide figures from the header lines.
type SnapshotSummary struct {
	CPUUsageLine        string `json:"cpu_usage" yaml:"cpu_usage"`
	MemoryUsageLine     string `json:"memory_usage" yaml:"memory_usage"`
	TotalProcessCount   int    `json:"total_processes" yaml:"total_processes"`
	RunningProcessCount int    `json:"running_processes" yaml:"running_processes"`
}

var tasksLineRegex = regexp.MustCompile(`(?i)^Tasks:\s*(\d+)\s+total,\s*(\d+)\s+running`)

// ParseTaskLine extracts the total and running counts from a "Tasks:" line.
// The strict "Tasks: N total, M running" form is tried first; anything else
// goes through the comma-splitting fallback. Missing figures are zero.
func ParseTaskLine(line string) (total, running int) {
	if total, running, ok := parseTaskStrict(line); ok {
		return total, running
	}
	return parseTaskFallback(line)
}

func parseTaskStrict(line string) (total, running int, ok bool) {
	m := tasksLineRegex.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0, 0, false
	}
	return digitsOr(m[1], 0), digitsOr(m[2], 0), true
}

func parseTaskFallback(line string) (total, running int) {
	parts := strings.Split(line, ",")
	total = digitsOr(parts[0], 0)
	for _, part := range parts {
		if strings.Contains(strings.ToLower(part), "running") {
			running = digitsOr(part, 0)
			break
		}
	}
	return total, running
}

// digitsOr drops every non-digit rune and parses what is left.
func digitsOr(s string, def int) int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	v, err := strconv.Atoi(digits)
	if err != nil {
		return def
	}
	return v
}

func (s *SnapshotSummary) apply(kind LineKind, line string) {
	switch kind {
	case LineCPUSummary:
		s.CPUUsageLine = strings.TrimSpace(line)
	case LineMemorySummary:
		s.MemoryUsageLine = strings.TrimSpace(line)
	case LineTaskSummary:
		s.TotalProcessCount, s.RunningProcessCount = ParseTaskLine(line)
	}
}
