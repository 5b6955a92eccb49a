// Package output renders snapshots for the command line.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/lxp-git/android-system-resource-monitor/internal/identity"
	"github.com/lxp-git/android-system-resource-monitor/internal/monitor"
	"github.com/lxp-git/android-system-resource-monitor/internal/topparse"
)

// Format is an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
	}
}

// DisplayFunc looks up the label for an application identifier.
type DisplayFunc func(identifier string) (identity.Display, bool)

// Options control Render.
type Options struct {
	// Limit caps the number of process rows; zero or less shows all.
	Limit   int
	Display DisplayFunc
}

// ProcessView is a record plus its display label.
type ProcessView struct {
	topparse.ProcessRecord `yaml:",inline"`
	Label                  string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Report is the encoded form of a snapshot.
type Report struct {
	CapturedAt time.Time                `json:"captured_at" yaml:"captured_at"`
	Summary    topparse.SnapshotSummary `json:"summary" yaml:"summary"`
	Shown      int                      `json:"shown" yaml:"shown"`
	Parsed     int                      `json:"parsed" yaml:"parsed"`
	Processes  []ProcessView            `json:"processes" yaml:"processes"`
}

// NewReport builds the report for snap.
func NewReport(snap *monitor.Snapshot, opts Options) Report {
	procs := snap.Processes
	if opts.Limit > 0 && len(procs) > opts.Limit {
		procs = procs[:opts.Limit]
	}

	views := make([]ProcessView, 0, len(procs))
	for _, p := range procs {
		v := ProcessView{ProcessRecord: p}
		if opts.Display != nil && p.AppIdentifier != "" {
			if d, ok := opts.Display(p.AppIdentifier); ok {
				v.Label = d.Label
			}
		}
		views = append(views, v)
	}

	return Report{
		CapturedAt: snap.CapturedAt,
		Summary:    snap.Summary,
		Shown:      len(views),
		Parsed:     len(snap.Processes),
		Processes:  views,
	}
}

// Render writes snap to w in the given format.
func Render(w io.Writer, snap *monitor.Snapshot, format Format, opts Options) error {
	report := NewReport(snap, opts)

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable, "":
		return renderTable(w, report)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderTable(w io.Writer, r Report) error {
	if err := WriteSummary(w, r.Summary); err != nil {
		return err
	}
	fmt.Fprintln(w)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"PID", "USER", "PR", "NI", "S", "%CPU", "%MEM", "RES", "TIME+", "APP / COMMAND"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, p := range r.Processes {
		table.Append([]string{
			strconv.Itoa(p.PID),
			SanitizeTerminal(p.Owner),
			strconv.Itoa(p.Priority),
			strconv.Itoa(p.NiceValue),
			p.State,
			strconv.FormatFloat(p.CPUPercent, 'f', 1, 64),
			strconv.FormatFloat(p.MemPercent, 'f', 1, 64),
			p.ResidentMemory,
			p.ElapsedTime,
			SanitizeTerminal(Name(p)),
		})
	}
	table.Render()

	if r.Shown < r.Parsed {
		_, err := fmt.Fprintf(w, "\n%d of %d processes shown\n", r.Shown, r.Parsed)
		return err
	}
	return nil
}

// Name is what a list shows for a process: "Label (identifier)" when a
// label is known, the identifier alone, or the command.
func Name(p ProcessView) string {
	switch {
	case p.Label != "" && p.Label != p.AppIdentifier:
		return p.Label + " (" + p.AppIdentifier + ")"
	case p.AppIdentifier != "":
		return p.AppIdentifier
	default:
		return p.Command
	}
}

// WriteSummary prints the summary header lines.
func WriteSummary(w io.Writer, s topparse.SnapshotSummary) error {
	_, err := fmt.Fprintf(w, "Tasks: %d total, %d running\n", s.TotalProcessCount, s.RunningProcessCount)
	if err != nil {
		return err
	}
	if s.CPUUsageLine != "" {
		if _, err := fmt.Fprintln(w, SanitizeTerminal(s.CPUUsageLine)); err != nil {
			return err
		}
	}
	if s.MemoryUsageLine != "" {
		if _, err := fmt.Fprintln(w, SanitizeTerminal(s.MemoryUsageLine)); err != nil {
			return err
		}
	}
	return nil
}
