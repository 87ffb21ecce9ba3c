package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/example/shiftdesk/internal/ports/primary"
)

// BackupAdapter runs backups and prints their outcome.
type BackupAdapter struct {
	service primary.BackupService
	out     io.Writer
}

// NewBackupAdapter creates a new BackupAdapter.
func NewBackupAdapter(service primary.BackupService, out io.Writer) *BackupAdapter {
	return &BackupAdapter{service: service, out: out}
}

// Run takes snapshots and prunes old ones. Failed sources are reported as an
// error after everything else has run.
func (a *BackupAdapter) Run(ctx context.Context) error {
	report := a.service.Run(ctx)

	for _, path := range report.Created {
		fmt.Fprintf(a.out, "%s %s\n", color.New(color.FgGreen).Sprint("✓"), path)
	}
	for _, name := range report.Failed {
		fmt.Fprintf(a.out, "%s %s\n", color.New(color.FgRed).Sprint("✗"), name)
	}
	if report.Pruned > 0 {
		fmt.Fprintf(a.out, "Pruned %d expired snapshot(s)\n", report.Pruned)
	}

	if len(report.Failed) > 0 {
		return fmt.Errorf("backup failed for %s", strings.Join(report.Failed, ", "))
	}
	return nil
}
