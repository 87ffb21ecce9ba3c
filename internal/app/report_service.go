package app

import (
	"cmp"
	"context"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/example/shiftdesk/internal/core/shift"
	"github.com/example/shiftdesk/internal/ports/primary"
	"github.com/example/shiftdesk/internal/ports/secondary"
)

// ReportServiceImpl implements the ReportService interface. Reports only
// read, so they never take a lock.
type ReportServiceImpl struct {
	shifts   secondary.Table
	workers  secondary.Table
	settings Settings
	logger   *zap.Logger
}

// NewReportService creates a new ReportService with injected dependencies.
func NewReportService(shifts, workers secondary.Table, settings Settings, logger *zap.Logger) *ReportServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportServiceImpl{
		shifts:   shifts,
		workers:  workers,
		settings: settings.withDefaults(),
		logger:   logger.Named("reports"),
	}
}

// DailyReport summarizes the shifts opened on the calendar day of date.
// Open shifts are counted but add no hours.
func (s *ReportServiceImpl) DailyReport(ctx context.Context, date time.Time) (*primary.DailyReport, error) {
	records, err := loadShifts(ctx, s.shifts, func(r *secondary.ShiftRecord) bool {
		return s.settings.sameDay(r.OpenedAt, date)
	})
	if err != nil {
		return nil, surface(s.logger, "build daily report", err)
	}

	names, err := s.workerNames(ctx)
	if err != nil {
		return nil, surface(s.logger, "build daily report", err)
	}

	report := &primary.DailyReport{
		Date:   s.settings.startOfDay(date),
		Shifts: recordsToShifts(records),
	}
	totals := make(map[int64]*primary.WorkerTotal)
	for _, r := range records {
		t, ok := totals[r.WorkerID]
		if !ok {
			t = &primary.WorkerTotal{WorkerID: r.WorkerID, DisplayName: names[r.WorkerID]}
			totals[r.WorkerID] = t
		}
		t.Shifts++

		if r.Status != shift.StatusClosed {
			report.OpenCount++
			continue
		}
		report.ClosedCount++
		report.TotalHours += r.DurationHours
		t.Hours += r.DurationHours
	}
	report.TotalHours = shift.RoundHours(report.TotalHours)

	for _, t := range totals {
		t.Hours = shift.RoundHours(t.Hours)
		report.WorkerTotals = append(report.WorkerTotals, *t)
	}
	slices.SortFunc(report.WorkerTotals, func(a, b primary.WorkerTotal) int {
		if c := cmp.Compare(b.Hours, a.Hours); c != 0 {
			return c
		}
		return cmp.Compare(a.WorkerID, b.WorkerID)
	})
	return report, nil
}

// WorkerHours sums the stored durations of a worker's closed shifts.
func (s *ReportServiceImpl) WorkerHours(ctx context.Context, workerID int64, date time.Time) (float64, error) {
	records, err := loadShifts(ctx, s.shifts, func(r *secondary.ShiftRecord) bool {
		if r.WorkerID != workerID || r.Status != shift.StatusClosed {
			return false
		}
		return date.IsZero() || s.settings.sameDay(r.OpenedAt, date)
	})
	if err != nil {
		return 0, surface(s.logger, "sum worker hours", err, zap.Int64("worker_id", workerID))
	}

	var total float64
	for _, r := range records {
		total += r.DurationHours
	}
	return shift.RoundHours(total), nil
}

func (s *ReportServiceImpl) workerNames(ctx context.Context) (map[int64]string, error) {
	records, err := loadWorkers(ctx, s.workers)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(records))
	for _, r := range records {
		names[r.ID] = r.DisplayName
	}
	return names, nil
}

// Ensure ReportServiceImpl implements the interface
var _ primary.ReportService = (*ReportServiceImpl)(nil)
