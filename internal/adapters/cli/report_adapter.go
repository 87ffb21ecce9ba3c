package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/example/shiftdesk/internal/ports/primary"
)

// ReportAdapter renders ReportService results as text.
type ReportAdapter struct {
	service primary.ReportService
	out     io.Writer
}

// NewReportAdapter creates a new ReportAdapter.
func NewReportAdapter(service primary.ReportService, out io.Writer) *ReportAdapter {
	return &ReportAdapter{service: service, out: out}
}

// Day prints the daily summary.
func (a *ReportAdapter) Day(ctx context.Context, date time.Time) error {
	report, err := a.service.DailyReport(ctx, date)
	if err != nil {
		return present(err, nil)
	}

	fmt.Fprintf(a.out, "\nReport for %s\n", report.Date.Format(time.DateOnly))
	fmt.Fprintf(a.out, "Shifts: %d closed, %d open\n", report.ClosedCount, report.OpenCount)
	fmt.Fprintf(a.out, "Hours:  %.2f\n", report.TotalHours)
	if len(report.WorkerTotals) == 0 {
		fmt.Fprintln(a.out)
		return nil
	}

	fmt.Fprintf(a.out, "\n%-12s %-24s %6s %7s\n", "WORKER", "NAME", "SHIFTS", "HOURS")
	fmt.Fprintln(a.out, "──────────────────────────────────────────────────────")
	for _, t := range report.WorkerTotals {
		name := t.DisplayName
		if name == "" {
			name = color.New(color.FgYellow).Sprint("(unregistered)")
		}
		fmt.Fprintf(a.out, "%-12d %-24s %6d %7.2f\n", t.WorkerID, name, t.Shifts, t.Hours)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Hours prints the closed hours of a worker. A zero date covers all days.
func (a *ReportAdapter) Hours(ctx context.Context, workerID int64, date time.Time) error {
	hours, err := a.service.WorkerHours(ctx, workerID, date)
	if err != nil {
		return present(err, nil)
	}

	scope := "in total"
	if !date.IsZero() {
		scope = "on " + date.Format(time.DateOnly)
	}
	fmt.Fprintf(a.out, "Worker %d worked %.2f hours %s\n", workerID, hours, scope)
	return nil
}
