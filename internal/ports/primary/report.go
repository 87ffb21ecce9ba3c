package primary

import (
	"context"
	"time"
)

// ReportService defines the primary port for shift summaries.
type ReportService interface {
	// DailyReport summarizes the shifts opened on a calendar day.
	DailyReport(ctx context.Context, date time.Time) (*DailyReport, error)

	// WorkerHours sums the closed hours of a worker. A zero date sums all days.
	WorkerHours(ctx context.Context, workerID int64, date time.Time) (float64, error)
}

// DailyReport is the summary of one day.
type DailyReport struct {
	Date         time.Time
	Shifts       []*Shift
	OpenCount    int
	ClosedCount  int
	TotalHours   float64
	WorkerTotals []WorkerTotal // sorted by hours, largest first
}

// WorkerTotal is the worked time of one worker within a report.
type WorkerTotal struct {
	WorkerID    int64
	DisplayName string // empty if the worker is not registered
	Hours       float64
	Shifts      int
}
