package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/shiftdesk/internal/core/ident"
	"github.com/example/shiftdesk/internal/db"
	"github.com/example/shiftdesk/internal/ports/primary"
	"github.com/example/shiftdesk/internal/ports/secondary"
)

// withTableLock runs fn while holding the table's guard. The guard is
// released on every exit path, panics included.
func withTableLock(ctx context.Context, locks secondary.LockManager, table secondary.Table, timeout time.Duration, fn func() error) (err error) {
	guard, err := locks.Acquire(ctx, table.Def().Name, timeout)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := guard.Release(); rerr != nil && err == nil {
			err = fmt.Errorf("release %s lock: %w", table.Def().Name, rerr)
		}
	}()
	return fn()
}

// readRows loads every row of a table.
func readRows(ctx context.Context, table secondary.Table) ([]secondary.Row, error) {
	var rows []secondary.Row
	for row, err := range table.Scan(ctx) {
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// findRow returns the index of the row with the given id, or -1.
func findRow(rows []secondary.Row, id int64) (int, error) {
	for i, row := range rows {
		rowID, err := db.RowID(row)
		if err != nil {
			return -1, err
		}
		if rowID == id {
			return i, nil
		}
	}
	return -1, nil
}

// IDAllocator hands out sequential identifiers per table. Identifiers are
// never reused; a crash between allocation and append leaves a gap.
type IDAllocator struct {
	locks   secondary.LockManager
	timeout time.Duration
}

// NewIDAllocator creates an allocator guarded by locks.
func NewIDAllocator(locks secondary.LockManager, timeout time.Duration) *IDAllocator {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	return &IDAllocator{locks: locks, timeout: timeout}
}

// Next takes the table lock and returns the identifier following the
// current max. Callers already holding the lock must use NextIDLocked:
// locks are not reentrant.
func (a *IDAllocator) Next(ctx context.Context, table secondary.Table) (int64, error) {
	var id int64
	err := withTableLock(ctx, a.locks, table, a.timeout, func() error {
		var err error
		id, err = NextIDLocked(ctx, table)
		return err
	})
	return id, err
}

// NextIDLocked returns one past the larger of the table's max identifier and
// its high-water mark, and advances the mark so the identifier is never
// handed out again, even once its row is purged. The caller must hold the
// table's guard.
func NextIDLocked(ctx context.Context, table secondary.Table) (int64, error) {
	maxID, err := table.HighWater(ctx)
	if err != nil {
		return 0, err
	}
	for row, err := range table.Scan(ctx) {
		if err != nil {
			return 0, err
		}
		id, err := db.RowID(row)
		if err != nil {
			return 0, &secondary.StorageError{Op: "allocate id", Table: table.Def().Name, Err: err}
		}
		maxID = max(maxID, id)
	}

	next := ident.Next(maxID)
	if err := table.SetHighWater(ctx, next); err != nil {
		return 0, err
	}
	return next, nil
}

// surface passes business errors through unchanged and logs everything else
// with context before wrapping it for the caller.
func surface(logger *zap.Logger, op string, err error, fields ...zap.Field) error {
	if err == nil || primary.IsBusinessError(err) {
		return err
	}

	fields = append(fields, zap.Error(err))
	switch {
	case errors.Is(err, secondary.ErrLockTimeout):
		logger.Warn(op+": lock timeout", fields...)
	case errors.Is(err, primary.ErrIntegrity):
		logger.Error(op+": data integrity violation", fields...)
	case errors.Is(err, context.Canceled):
		logger.Debug(op+": cancelled", fields...)
	default:
		logger.Error(op+" failed", fields...)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
