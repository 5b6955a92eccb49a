package topparse

import (
	"regexp"
	"strings"
)

// LineKind classifies one line of a snapshot.
type LineKind int

const (
	LineIgnorable LineKind = iota
	LineCPUSummary
	LineMemorySummary
	LineTaskSummary
	LineColumnHeader
	LineProcessRow
)

func (k LineKind) String() string {
	switch k {
	case LineIgnorable:
		return "Ignorable"
	case LineCPUSummary:
		return "CPU"
	case LineMemorySummary:
		return "Memory"
	case LineTaskSummary:
		return "Tasks"
	case LineColumnHeader:
		return "Header"
	case LineProcessRow:
		return "Process"
	default:
		return "Unknown"
	}
}

var headerRegex = regexp.MustCompile(`^\s*PID\s+USER.*$`)

// ClassifyLine assigns line to a LineKind. inProcessList reports whether a
// column header has already been seen; the returned bool is the updated
// value, which only ever flips to true on a header line.
func ClassifyLine(line string, inProcessList bool) (LineKind, bool) {
	trimmed := strings.TrimSpace(line)

	switch {
	case strings.Contains(line, "CPU:") || strings.Contains(line, "%cpu"):
		return LineCPUSummary, inProcessList
	case strings.Contains(line, "Mem:") || strings.Contains(line, "KiB Mem"):
		return LineMemorySummary, inProcessList
	case hasPrefixFold(trimmed, "Tasks:"):
		return LineTaskSummary, inProcessList
	case headerRegex.MatchString(trimmed):
		return LineColumnHeader, true
	case inProcessList && trimmed != "":
		return LineProcessRow, inProcessList
	default:
		return LineIgnorable, inProcessList
	}
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
