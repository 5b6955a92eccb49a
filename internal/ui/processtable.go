package ui

import (
	"fmt"
	"sort"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lxp-git/android-system-resource-monitor/internal/monitor"
	"github.com/lxp-git/android-system-resource-monitor/internal/output"
	"github.com/lxp-git/android-system-resource-monitor/internal/topparse"
)

// SortField determines how the process table is sorted.
type SortField int

const (
	SortByCPU SortField = iota
	SortByMemory
	SortByPID
	SortByName
)

var sortFieldNames = []string{"CPU%", "MEM%", "PID", "NAME"}

// ProcessTable displays processes in a top-like table.
type ProcessTable struct {
	app       *App
	table     *tview.Table
	sortField SortField
	rows      []output.ProcessView
}

// NewProcessTable creates the process table.
func NewProcessTable(app *App) *ProcessTable {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0).
		SetSeparator(tview.Borders.Vertical)

	table.SetBorder(true).
		SetTitle(" Processes ").
		SetBorderPadding(0, 0, 0, 0)

	pt := &ProcessTable{
		app:       app,
		table:     table,
		sortField: SortByCPU,
	}

	pt.setHeaders()
	return pt
}

func (pt *ProcessTable) setHeaders() {
	headers := []string{"PID", "USER", "S", "CPU%", "MEM%", "RES", "TIME+", "APP / COMMAND"}
	for i, h := range headers {
		cell := tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetAttributes(tcell.AttrBold).
			SetSelectable(false).
			SetExpansion(1)
		pt.table.SetCell(0, i, cell)
	}
}

// Update refreshes the process table with new data.
func (pt *ProcessTable) Update(procs []topparse.ProcessRecord) {
	views := make([]output.ProcessView, len(procs))
	for i, p := range procs {
		views[i] = output.ProcessView{ProcessRecord: p}
		if pt.app.opts.Display != nil && p.AppIdentifier != "" {
			if d, ok := pt.app.opts.Display(p.AppIdentifier); ok {
				views[i].Label = d.Label
			}
		}
	}
	pt.sortProcesses(views)
	if limit := pt.app.opts.MaxRows; limit > 0 && len(views) > limit {
		views = views[:limit]
	}
	pt.rows = views

	// Clear existing rows (keep header)
	rowCount := pt.table.GetRowCount()
	for r := rowCount - 1; r >= 1; r-- {
		pt.table.RemoveRow(r)
	}

	for i, p := range views {
		row := i + 1 // skip header
		cpuColor := loadColor(pt.app.opts.Classifier.Classify(p.ProcessRecord))

		pt.table.SetCell(row, 0, tview.NewTableCell(fmt.Sprintf("%d", p.PID)).SetTextColor(tcell.ColorWhite))
		pt.table.SetCell(row, 1, tview.NewTableCell(cellText(p.Owner, 10)).SetTextColor(tcell.ColorWhite))
		pt.table.SetCell(row, 2, tview.NewTableCell(cellText(p.State, 4)).SetTextColor(tcell.ColorWhite))
		pt.table.SetCell(row, 3, tview.NewTableCell(fmt.Sprintf("%.1f", p.CPUPercent)).SetTextColor(cpuColor))
		pt.table.SetCell(row, 4, tview.NewTableCell(fmt.Sprintf("%.1f", p.MemPercent)).SetTextColor(tcell.ColorWhite))
		pt.table.SetCell(row, 5, tview.NewTableCell(cellText(p.ResidentMemory, 8)).SetTextColor(tcell.ColorWhite))
		pt.table.SetCell(row, 6, tview.NewTableCell(cellText(p.ElapsedTime, 12)).SetTextColor(tcell.ColorGray))
		pt.table.SetCell(row, 7, tview.NewTableCell(cellText(output.Name(p), 60)).SetTextColor(cpuColor))
	}
}

func loadColor(l monitor.Load) tcell.Color {
	switch l {
	case monitor.LoadHigh:
		return tcell.ColorRed
	case monitor.LoadWarn:
		return tcell.ColorOrange
	default:
		return tcell.ColorGreen
	}
}

// Selected returns the record on the highlighted row.
func (pt *ProcessTable) Selected() (output.ProcessView, bool) {
	row, _ := pt.table.GetSelection()
	if row < 1 || row > len(pt.rows) {
		return output.ProcessView{}, false
	}
	return pt.rows[row-1], true
}

// CycleSort advances to the next sort field.
func (pt *ProcessTable) CycleSort() {
	pt.sortField = (pt.sortField + 1) % SortField(len(sortFieldNames))
}

// SortName returns the current sort field name.
func (pt *ProcessTable) SortName() string {
	return sortFieldNames[pt.sortField]
}

// sortProcesses keeps capture order for ties, so the CPU view matches the
// parser's ordering exactly.
func (pt *ProcessTable) sortProcesses(procs []output.ProcessView) {
	sort.SliceStable(procs, func(i, j int) bool {
		switch pt.sortField {
		case SortByMemory:
			return procs[i].MemPercent > procs[j].MemPercent
		case SortByPID:
			return procs[i].PID < procs[j].PID
		case SortByName:
			return output.Name(procs[i]) < output.Name(procs[j])
		default:
			return procs[i].CPUPercent > procs[j].CPUPercent
		}
	})
}

// cellText prepares process text for a table cell. Escaping comes last so a
// truncated "[" cannot start a style tag.
func cellText(s string, n int) string {
	return tview.Escape(truncate(output.SanitizeTerminal(s), n))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
