// Package db owns the table layout and opens the configured storage backend.
package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/example/shiftdesk/internal/adapters/filesystem"
	"github.com/example/shiftdesk/internal/adapters/sqlite"
	"github.com/example/shiftdesk/internal/ports/secondary"
)

// Storage backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// SQLiteFileName is the database file used by the sqlite backend.
const SQLiteFileName = "shiftdesk.db"

// Options selects and locates the backend.
type Options struct {
	Backend     string
	DataDir     string
	LockTimeout time.Duration
}

// Handle bundles the opened tables with the lock manager guarding them.
type Handle struct {
	Store    secondary.TableStore
	Locks    secondary.LockManager
	Workers  secondary.Table
	Shifts   secondary.Table
	Requests secondary.Table
}

// Open creates the data directory, opens the backend and bootstraps every
// table under its lock. Tables written by older versions are upgraded.
func Open(ctx context.Context, opts Options) (*Handle, error) {
	if opts.DataDir == "" {
		return nil, fmt.Errorf("data directory not configured")
	}
	if err := os.MkdirAll(opts.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	locks, err := filesystem.NewLockManager(opts.DataDir)
	if err != nil {
		return nil, err
	}

	var store secondary.TableStore
	switch opts.Backend {
	case "", BackendCSV:
		store, err = filesystem.NewTableStore(opts.DataDir)
	case BackendSQLite:
		store, err = sqlite.OpenTableStore(filepath.Join(opts.DataDir, SQLiteFileName))
	default:
		return nil, fmt.Errorf("unknown storage backend %q (valid: %s, %s)", opts.Backend, BackendCSV, BackendSQLite)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", opts.Backend, err)
	}

	h := &Handle{Store: store, Locks: locks}
	targets := []*secondary.Table{&h.Workers, &h.Shifts, &h.Requests}
	for i, def := range Tables() {
		table, err := openLocked(ctx, store, locks, def, opts.LockTimeout)
		if err != nil {
			store.Close()
			return nil, err
		}
		*targets[i] = table
	}

	return h, nil
}

func openLocked(ctx context.Context, store secondary.TableStore, locks secondary.LockManager, def secondary.TableDef, timeout time.Duration) (secondary.Table, error) {
	guard, err := locks.Acquire(ctx, def.Name, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s for bootstrap: %w", def.Name, err)
	}
	defer guard.Release()

	table, err := store.Open(ctx, def)
	if err != nil {
		return nil, fmt.Errorf("failed to open table %s: %w", def.Name, err)
	}
	return table, nil
}

// Close closes the backend.
func (h *Handle) Close() error {
	if h == nil || h.Store == nil {
		return nil
	}
	return h.Store.Close()
}
