// Package report renders benchmark and scenario results to a terminal:
// a colorized pass/fail line per scenario while it runs, and a summary
// table once a batch finishes.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
)

// Row is one scenario's outcome, ready to render as a table row.
type Row struct {
	Name       string
	Pool       string
	Tasks      int
	Duration   time.Duration
	TasksPerOp float64
	Failed     bool
}

// Bar wraps a progressbar configured for a known number of scenarios, so a
// benchmark driver can show liveness across a run that otherwise prints
// nothing until it's done.
type Bar struct {
	bar *progressbar.ProgressBar
}

// NewBar creates a progress bar with total steps, labeled with what's
// running.
func NewBar(total int, label string) *Bar {
	return &Bar{bar: progressbar.Default(int64(total), label)}
}

// Step advances the bar by one.
func (b *Bar) Step() {
	_ = b.bar.Add(1)
}

// Finish completes the bar and moves the cursor past it.
func (b *Bar) Finish() {
	_ = b.bar.Finish()
}

// PrintLine writes one colorized line per completed scenario: green for a
// clean run, red if it failed.
func PrintLine(w io.Writer, r Row) {
	line := fmt.Sprintf("%-28s %-20s tasks=%-6d dur=%-10s throughput=%.0f/s",
		r.Name, r.Pool, r.Tasks, r.Duration.Round(time.Microsecond), r.TasksPerOp)
	if r.Failed {
		color.New(color.FgRed, color.Bold).Fprintln(w, "FAIL "+line)
		return
	}
	color.New(color.FgGreen).Fprintln(w, "PASS "+line)
}

// PrintSummary renders rows as a table: scenario, pool mode, task count,
// wall time, and throughput.
func PrintSummary(w io.Writer, rows []Row) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Scenario", "Pool", "Tasks", "Duration", "Tasks/sec"})
	for _, r := range rows {
		status := "ok"
		if r.Failed {
			status = "FAILED"
		}
		table.Append([]string{
			r.Name,
			r.Pool,
			fmt.Sprintf("%d", r.Tasks),
			r.Duration.Round(time.Microsecond).String(),
			fmt.Sprintf("%.0f (%s)", r.TasksPerOp, status),
		})
	}
	table.Render()
}
