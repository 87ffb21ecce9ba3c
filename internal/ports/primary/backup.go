package primary

import (
	"context"
	"time"
)

// BackupService defines the primary port for snapshots and retention.
type BackupService interface {
	// Run snapshots every table and prunes expired snapshots. Failures are
	// logged and reported, never returned.
	Run(ctx context.Context) *BackupReport

	// Prune deletes snapshots older than the retention window.
	Prune(ctx context.Context) int
}

// BackupReport summarizes a backup run.
type BackupReport struct {
	StartedAt time.Time
	Created   []string // snapshot paths
	Failed    []string // source names that could not be copied
	Pruned    int
}
