package topparse

import (
	"math"
	"strconv"
	"strings"
)

// minRowFields is the number of whitespace tokens a process row needs.
const minRowFields = 12

// ProcessRecord is one parsed row of the process table.
type ProcessRecord struct {
	PID            int     `json:"pid" yaml:"pid"`
	Owner          string  `json:"owner" yaml:"owner"`
	Priority       int     `json:"priority" yaml:"priority"`
	NiceValue      int     `json:"nice" yaml:"nice"`
	VirtualMemory  string  `json:"virt" yaml:"virt"`
	ResidentMemory string  `json:"res" yaml:"res"`
	SharedMemory   string  `json:"shr" yaml:"shr"`
	State          string  `json:"state" yaml:"state"`
	CPUPercent     float64 `json:"cpu_percent" yaml:"cpu_percent"`
	MemPercent     float64 `json:"mem_percent" yaml:"mem_percent"`
	ElapsedTime    string  `json:"time" yaml:"time"`
	Command        string  `json:"command" yaml:"command"`
	AppIdentifier  string  `json:"app_identifier" yaml:"app_identifier"`
}

// ParseRow tokenizes a process-table line. It reports false when the line
// has fewer than twelve fields or the pid is not a non-negative integer.
func ParseRow(line string) (ProcessRecord, bool) {
	fields := strings.Fields(line)
	if len(fields) < minRowFields {
		return ProcessRecord{}, false
	}

	pid, ok := parseInt(fields[0])
	if !ok || pid < 0 {
		return ProcessRecord{}, false
	}

	return ProcessRecord{
		PID:            pid,
		Owner:          fields[1],
		Priority:       intOr(fields[2], 0),
		NiceValue:      intOr(fields[3], 0),
		VirtualMemory:  fields[4],
		ResidentMemory: fields[5],
		SharedMemory:   fields[6],
		State:          fields[7],
		CPUPercent:     percentOr(fields[8], 0),
		MemPercent:     percentOr(fields[9], 0),
		ElapsedTime:    fields[10],
		Command:        strings.Join(fields[11:], " "),
	}, true
}

func parseInt(s string) (int, bool) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func intOr(s string, def int) int {
	if v, ok := parseInt(s); ok {
		return v
	}
	return def
}

// percentOr parses "44.4" or "44.4%". NaN and infinities fall back to def
// so the CPU sort stays a total order.
func percentOr(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, "%", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}
