// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives storage and locking.
package secondary

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"
)

// Row is one table row. Cell order follows TableDef.Columns.
type Row []string

// TableDef names a logical table and its ordered columns. Column order is the
// on-disk format.
type TableDef struct {
	Name    string
	Columns []string
}

// Index returns the position of column, or -1.
func (d TableDef) Index(column string) int {
	for i, c := range d.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Table defines the secondary port for one logical table.
// Mutations must only be issued while holding the table's Guard.
type Table interface {
	// Def returns the table definition.
	Def() TableDef

	// Append adds a row at the end of the table.
	Append(ctx context.Context, row Row) error

	// Scan returns a lazy sequence over the current rows. Each range over the
	// sequence re-reads the table. A non-nil error ends the sequence.
	Scan(ctx context.Context) iter.Seq2[Row, error]

	// Overwrite replaces the table content with rows. Readers observe either
	// the old or the new content, never a mix.
	Overwrite(ctx context.Context, rows []Row) error

	// HighWater returns the largest identifier ever allocated in the table,
	// or zero if none was recorded. It survives deletion of rows.
	HighWater(ctx context.Context) (int64, error)

	// SetHighWater records id as allocated. The mark never moves down.
	// Must only be called while holding the table's Guard.
	SetHighWater(ctx context.Context, id int64) error
}

// TableStore defines the secondary port for a backend holding tables.
type TableStore interface {
	// Open returns the table for def, creating or upgrading it as needed.
	// Callers hold the table's Guard while opening.
	Open(ctx context.Context, def TableDef) (Table, error)

	// SnapshotSources returns the files that make up the store.
	SnapshotSources() []SnapshotSource

	// Close releases backend resources.
	Close() error
}

// SnapshotSource is a unit of the store that can be copied for backup.
type SnapshotSource interface {
	// Name is used for the snapshot file name and as the lock scope.
	Name() string

	// Snapshot writes a complete copy to dst. dst must not exist.
	Snapshot(ctx context.Context, dst string) error
}

// LockManager defines the secondary port for named, advisory, cross-process
// mutual exclusion. Locks are not reentrant.
type LockManager interface {
	// Acquire blocks until scope is held or timeout elapses.
	// Fails with ErrLockTimeout when the bound is exceeded.
	Acquire(ctx context.Context, scope string, timeout time.Duration) (Guard, error)
}

// Guard is a held lock.
type Guard interface {
	// Release drops the lock. Calling it more than once is a no-op.
	Release() error
}

// ErrLockTimeout is returned when a lock cannot be acquired within its bound.
// It is transient: the caller may retry later.
var ErrLockTimeout = errors.New("lock timeout")

// ErrStorageIO matches every StorageError.
var ErrStorageIO = errors.New("storage I/O failure")

// StorageError reports a failed read or write of an underlying table file.
type StorageError struct {
	Op    string // "append", "scan", "overwrite", "open", ...
	Table string
	Err   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrStorageIO) true for any StorageError.
func (e *StorageError) Is(target error) bool { return target == ErrStorageIO }
