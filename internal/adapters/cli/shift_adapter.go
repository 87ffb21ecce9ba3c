package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/example/shiftdesk/internal/ports/primary"
)

// ShiftAdapter is a thin adapter that translates CLI operations to ShiftService calls.
type ShiftAdapter struct {
	service primary.ShiftService
	out     io.Writer
	loc     *time.Location
}

// NewShiftAdapter creates a new ShiftAdapter. Times are shown in loc.
func NewShiftAdapter(service primary.ShiftService, out io.Writer, loc *time.Location) *ShiftAdapter {
	return &ShiftAdapter{service: service, out: out, loc: loc}
}

// Open opens a shift for a worker at a property.
func (a *ShiftAdapter) Open(ctx context.Context, workerID int64, propertyID string) error {
	resp, err := a.service.OpenShift(ctx, primary.OpenShiftRequest{
		WorkerID:   workerID,
		PropertyID: propertyID,
	})
	if err != nil {
		return present(err, a.loc)
	}

	fmt.Fprintf(a.out, "✓ Opened shift %d: worker %d at %s (%s)\n",
		resp.ShiftID, resp.Shift.WorkerID, resp.Shift.PropertyID, formatTime(resp.Shift.OpenedAt, a.loc))
	return nil
}

// Close closes a shift. A zero closedAt means now.
func (a *ShiftAdapter) Close(ctx context.Context, shiftID int64, closedAt time.Time) error {
	resp, err := a.service.CloseShift(ctx, primary.CloseShiftRequest{
		ShiftID:  shiftID,
		ClosedAt: closedAt,
	})
	if err != nil {
		return present(err, a.loc)
	}

	fmt.Fprintf(a.out, "✓ Closed shift %d: %.2f hours\n", resp.Shift.ID, resp.DurationHours)
	if resp.Suspicious {
		fmt.Fprintf(a.out, "  %s shift lasted %.2f hours, please verify\n",
			color.New(color.FgYellow).Sprint("⚠"), resp.DurationHours)
	}
	return nil
}

// ShowOpen displays the open shift of a worker.
func (a *ShiftAdapter) ShowOpen(ctx context.Context, workerID int64) error {
	s, err := a.service.GetOpenShift(ctx, workerID)
	if err != nil {
		return present(err, a.loc)
	}
	if s == nil {
		fmt.Fprintf(a.out, "Worker %d has no open shift\n", workerID)
		return nil
	}

	fmt.Fprintf(a.out, "\nShift:    %d\n", s.ID)
	fmt.Fprintf(a.out, "Worker:   %d\n", s.WorkerID)
	fmt.Fprintf(a.out, "Property: %s\n", s.PropertyID)
	fmt.Fprintf(a.out, "Opened:   %s\n", formatTime(s.OpenedAt, a.loc))
	fmt.Fprintln(a.out)
	return nil
}

// ListOpen lists every open shift.
func (a *ShiftAdapter) ListOpen(ctx context.Context) error {
	shifts, err := a.service.GetAllOpen(ctx)
	if err != nil {
		return present(err, a.loc)
	}
	a.table(shifts, "No open shifts")
	return nil
}

// Day lists the shifts opened on a day.
func (a *ShiftAdapter) Day(ctx context.Context, date time.Time) error {
	shifts, err := a.service.GetByDate(ctx, date)
	if err != nil {
		return present(err, a.loc)
	}
	a.table(shifts, fmt.Sprintf("No shifts on %s", date.Format(time.DateOnly)))
	return nil
}

// Completed lists the most recently closed shifts.
func (a *ShiftAdapter) Completed(ctx context.Context, limit int) error {
	shifts, err := a.service.GetCompleted(ctx, limit)
	if err != nil {
		return present(err, a.loc)
	}
	a.table(shifts, "No completed shifts")
	return nil
}

// Worker lists a worker's shifts between two days.
func (a *ShiftAdapter) Worker(ctx context.Context, workerID int64, from, to time.Time) error {
	shifts, err := a.service.GetByWorker(ctx, workerID, from, to)
	if err != nil {
		return present(err, a.loc)
	}
	a.table(shifts, fmt.Sprintf("No shifts for worker %d", workerID))
	return nil
}

func (a *ShiftAdapter) table(shifts []*primary.Shift, empty string) {
	if len(shifts) == 0 {
		fmt.Fprintln(a.out, empty)
		return
	}

	fmt.Fprintf(a.out, "\n%-6s %-10s %-12s %-16s %-16s %7s %s\n", "ID", "WORKER", "PROPERTY", "OPENED", "CLOSED", "HOURS", "STATUS")
	fmt.Fprintln(a.out, "──────────────────────────────────────────────────────────────────────────────────")
	for _, s := range shifts {
		hours := "-"
		if !s.IsOpen() {
			hours = fmt.Sprintf("%.2f", s.DurationHours)
		}
		fmt.Fprintf(a.out, "%-6d %-10d %-12s %-16s %-16s %7s %s\n",
			s.ID, s.WorkerID, s.PropertyID, formatTime(s.OpenedAt, a.loc), formatTime(s.ClosedAt, a.loc), hours, shiftStatus(s))
	}
	fmt.Fprintln(a.out)
}

func shiftStatus(s *primary.Shift) string {
	if s.IsOpen() {
		return color.New(color.FgGreen).Sprint(s.Status)
	}
	return color.New(color.FgBlue).Sprint(s.Status)
}
