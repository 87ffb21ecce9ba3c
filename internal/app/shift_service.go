package app

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/shiftdesk/internal/core/shift"
	"github.com/example/shiftdesk/internal/db"
	"github.com/example/shiftdesk/internal/ports/primary"
	"github.com/example/shiftdesk/internal/ports/secondary"
)

// ShiftServiceImpl implements the ShiftService interface.
type ShiftServiceImpl struct {
	shifts   secondary.Table
	locks    secondary.LockManager
	settings Settings
	logger   *zap.Logger
}

// NewShiftService creates a new ShiftService with injected dependencies.
func NewShiftService(shifts secondary.Table, locks secondary.LockManager, settings Settings, logger *zap.Logger) *ShiftServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShiftServiceImpl{
		shifts:   shifts,
		locks:    locks,
		settings: settings.withDefaults(),
		logger:   logger.Named("shifts"),
	}
}

// OpenShift opens a shift. The open-shift check, the ID allocation and the
// append happen under one lock so two concurrent opens for the same worker
// cannot both succeed. A worker who already has several open rows is refused
// with ErrIntegrity rather than AlreadyOpenError.
func (s *ShiftServiceImpl) OpenShift(ctx context.Context, req primary.OpenShiftRequest) (*primary.OpenShiftResponse, error) {
	propertyID := strings.TrimSpace(req.PropertyID)
	guardCtx := shift.OpenShiftContext{WorkerID: req.WorkerID, PropertyID: propertyID}
	if result := shift.CanOpenShift(guardCtx); !result.Allowed {
		return nil, &primary.ValidationError{Field: "shift", Reason: result.Reason}
	}

	var record *secondary.ShiftRecord
	err := withTableLock(ctx, s.locks, s.shifts, s.settings.LockTimeout, func() error {
		open, err := s.openShiftOf(ctx, req.WorkerID)
		if err != nil {
			return err
		}
		if open != nil {
			guardCtx.OpenShiftID = open.ID
		}
		if result := shift.CanOpenShift(guardCtx); !result.Allowed {
			return &primary.AlreadyOpenError{Shift: recordToShift(open)}
		}

		id, err := NextIDLocked(ctx, s.shifts)
		if err != nil {
			return err
		}

		record = &secondary.ShiftRecord{
			ID:         id,
			WorkerID:   req.WorkerID,
			PropertyID: propertyID,
			OpenedAt:   s.settings.now(),
			Status:     shift.StatusOpen,
		}
		return s.shifts.Append(ctx, db.EncodeShift(record))
	})
	if err != nil {
		return nil, surface(s.logger, "open shift", err,
			zap.Int64("worker_id", req.WorkerID), zap.String("property_id", propertyID))
	}

	s.logger.Info("shift opened",
		zap.Int64("shift_id", record.ID),
		zap.Int64("worker_id", record.WorkerID),
		zap.String("property_id", record.PropertyID))

	return &primary.OpenShiftResponse{
		ShiftID: record.ID,
		Shift:   recordToShift(record),
	}, nil
}

// CloseShift closes an open shift and stores its duration. Durations above
// the suspicious threshold are logged and still committed.
func (s *ShiftServiceImpl) CloseShift(ctx context.Context, req primary.CloseShiftRequest) (*primary.CloseShiftResponse, error) {
	closedAt := req.ClosedAt
	if closedAt.IsZero() {
		closedAt = s.settings.now()
	}
	closedAt = closedAt.UTC().Truncate(time.Second)

	var record *secondary.ShiftRecord
	err := withTableLock(ctx, s.locks, s.shifts, s.settings.LockTimeout, func() error {
		rows, err := readRows(ctx, s.shifts)
		if err != nil {
			return err
		}
		idx, err := findRow(rows, req.ShiftID)
		if err != nil {
			return err
		}
		if idx < 0 {
			return fmt.Errorf("shift %d: %w", req.ShiftID, primary.ErrNotFound)
		}

		record, err = db.DecodeShift(rows[idx])
		if err != nil {
			return err
		}

		result := shift.CanCloseShift(shift.CloseShiftContext{
			ShiftID:  record.ID,
			Status:   record.Status,
			OpenedAt: record.OpenedAt,
			ClosedAt: closedAt,
		})
		if !result.Allowed {
			if record.Status != shift.StatusOpen {
				return fmt.Errorf("%s: %w", result.Reason, primary.ErrInvalidState)
			}
			return &primary.ValidationError{Field: "closed_at", Reason: result.Reason}
		}

		record.ClosedAt = closedAt
		record.DurationHours = shift.DurationHours(record.OpenedAt, closedAt)
		record.Status = shift.StatusClosed

		rows[idx] = db.EncodeShift(record)
		return s.shifts.Overwrite(ctx, rows)
	})
	if err != nil {
		return nil, surface(s.logger, "close shift", err, zap.Int64("shift_id", req.ShiftID))
	}

	suspicious := shift.IsSuspicious(record.DurationHours, s.settings.SuspiciousShift)
	fields := []zap.Field{
		zap.Int64("shift_id", record.ID),
		zap.Int64("worker_id", record.WorkerID),
		zap.Float64("duration_hours", record.DurationHours),
	}
	if suspicious {
		s.logger.Warn("suspicious shift duration", append(fields,
			zap.Time("opened_at", record.OpenedAt),
			zap.Time("closed_at", record.ClosedAt))...)
	} else {
		s.logger.Info("shift closed", fields...)
	}

	return &primary.CloseShiftResponse{
		Shift:         recordToShift(record),
		DurationHours: record.DurationHours,
		Suspicious:    suspicious,
	}, nil
}

// GetShift retrieves a shift by ID.
func (s *ShiftServiceImpl) GetShift(ctx context.Context, shiftID int64) (*primary.Shift, error) {
	records, err := loadShifts(ctx, s.shifts, func(r *secondary.ShiftRecord) bool { return r.ID == shiftID })
	if err != nil {
		return nil, surface(s.logger, "get shift", err, zap.Int64("shift_id", shiftID))
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("shift %d: %w", shiftID, primary.ErrNotFound)
	}
	return recordToShift(records[0]), nil
}

// GetOpenShift returns the worker's open shift, or nil if none is open.
// More than one open shift is reported as ErrIntegrity rather than picking one.
func (s *ShiftServiceImpl) GetOpenShift(ctx context.Context, workerID int64) (*primary.Shift, error) {
	record, err := s.openShiftOf(ctx, workerID)
	if err != nil {
		return nil, surface(s.logger, "get open shift", err, zap.Int64("worker_id", workerID))
	}
	if record == nil {
		return nil, nil
	}
	return recordToShift(record), nil
}

// GetAllOpen lists every open shift in ID order.
func (s *ShiftServiceImpl) GetAllOpen(ctx context.Context) ([]*primary.Shift, error) {
	records, err := loadShifts(ctx, s.shifts, func(r *secondary.ShiftRecord) bool {
		return r.Status == shift.StatusOpen
	})
	if err != nil {
		return nil, surface(s.logger, "list open shifts", err)
	}
	return recordsToShifts(records), nil
}

// GetByDate lists shifts opened on the calendar day of date.
func (s *ShiftServiceImpl) GetByDate(ctx context.Context, date time.Time) ([]*primary.Shift, error) {
	records, err := loadShifts(ctx, s.shifts, func(r *secondary.ShiftRecord) bool {
		return s.settings.sameDay(r.OpenedAt, date)
	})
	if err != nil {
		return nil, surface(s.logger, "list shifts by date", err)
	}
	return recordsToShifts(records), nil
}

// GetCompleted lists closed shifts, most recently closed first.
func (s *ShiftServiceImpl) GetCompleted(ctx context.Context, limit int) ([]*primary.Shift, error) {
	records, err := loadShifts(ctx, s.shifts, func(r *secondary.ShiftRecord) bool {
		return r.Status == shift.StatusClosed
	})
	if err != nil {
		return nil, surface(s.logger, "list completed shifts", err)
	}

	slices.SortStableFunc(records, func(a, b *secondary.ShiftRecord) int {
		if c := b.ClosedAt.Compare(a.ClosedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return recordsToShifts(records), nil
}

// GetByWorker lists a worker's shifts opened between the calendar days of
// from and to, both included.
func (s *ShiftServiceImpl) GetByWorker(ctx context.Context, workerID int64, from, to time.Time) ([]*primary.Shift, error) {
	var lo, hi time.Time
	if !from.IsZero() {
		lo = s.settings.startOfDay(from)
	}
	if !to.IsZero() {
		hi = s.settings.startOfDay(to).AddDate(0, 0, 1)
	}

	records, err := loadShifts(ctx, s.shifts, func(r *secondary.ShiftRecord) bool {
		if r.WorkerID != workerID {
			return false
		}
		if !lo.IsZero() && r.OpenedAt.Before(lo) {
			return false
		}
		if !hi.IsZero() && !r.OpenedAt.Before(hi) {
			return false
		}
		return true
	})
	if err != nil {
		return nil, surface(s.logger, "list worker shifts", err, zap.Int64("worker_id", workerID))
	}
	return recordsToShifts(records), nil
}

// openShiftOf returns the worker's only open shift, nil if none, or
// ErrIntegrity if several rows are open.
func (s *ShiftServiceImpl) openShiftOf(ctx context.Context, workerID int64) (*secondary.ShiftRecord, error) {
	records, err := loadShifts(ctx, s.shifts, func(r *secondary.ShiftRecord) bool {
		return r.WorkerID == workerID && r.Status == shift.StatusOpen
	})
	if err != nil {
		return nil, err
	}

	switch len(records) {
	case 0:
		return nil, nil
	case 1:
		return records[0], nil
	}

	ids := make([]int64, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return nil, fmt.Errorf("worker %d has %d open shifts %v: %w", workerID, len(records), ids, primary.ErrIntegrity)
}

// loadShifts decodes the shifts accepted by keep.
func loadShifts(ctx context.Context, table secondary.Table, keep func(*secondary.ShiftRecord) bool) ([]*secondary.ShiftRecord, error) {
	var records []*secondary.ShiftRecord
	for row, err := range table.Scan(ctx) {
		if err != nil {
			return nil, err
		}
		record, err := db.DecodeShift(row)
		if err != nil {
			return nil, &secondary.StorageError{Op: "decode", Table: table.Def().Name, Err: err}
		}
		if keep(record) {
			records = append(records, record)
		}
	}
	return records, nil
}

// Helper functions

func recordToShift(r *secondary.ShiftRecord) *primary.Shift {
	if r == nil {
		return nil
	}
	return &primary.Shift{
		ID:            r.ID,
		WorkerID:      r.WorkerID,
		PropertyID:    r.PropertyID,
		OpenedAt:      r.OpenedAt,
		ClosedAt:      r.ClosedAt,
		DurationHours: r.DurationHours,
		Status:        r.Status,
	}
}

func recordsToShifts(records []*secondary.ShiftRecord) []*primary.Shift {
	shifts := make([]*primary.Shift, len(records))
	for i, r := range records {
		shifts[i] = recordToShift(r)
	}
	return shifts
}

// Ensure ShiftServiceImpl implements the interface
var _ primary.ShiftService = (*ShiftServiceImpl)(nil)
