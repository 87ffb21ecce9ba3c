package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/shiftdesk/internal/app"
	"github.com/example/shiftdesk/internal/core/shift"
	"github.com/example/shiftdesk/internal/db"
	"github.com/example/shiftdesk/internal/ports/secondary"
	"github.com/example/shiftdesk/internal/version"
	"github.com/example/shiftdesk/internal/wire"
)

// Check statuses.
const (
	statusOK   = "✓"
	statusWarn = "⚠"
	statusFail = "✗"
)

// backupStaleAfter is the age of the newest snapshot above which doctor warns.
const backupStaleAfter = 48 * time.Hour

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for data directory validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the data directory and stored records",
		Long: `Health check for a shiftdesk data directory.

Validates:
- Data directory is present and writable
- Tables open with the expected columns
- Table locks can be acquired (no stuck holder)
- No duplicate IDs and at most one open shift per worker
- Recent backups exist
- Binary installation and PATH

Examples:
  shiftdesk doctor              # Run full health check
  shiftdesk doctor --quiet      # Exit code only (0=healthy, 1=issues)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := wire.Config()

			results := []CheckResult{checkDataDir(cfg.DataDir)}
			if err := wire.Open(); err != nil {
				results = append(results, CheckResult{Name: "Tables", Status: statusFail, Details: "  " + err.Error()})
			} else {
				h := wire.Storage()
				results = append(results, checkLocks(ctx, h.Locks, cfg.GetLockTimeout()))
				results = append(results, checkIntegrity(ctx, h))
			}
			results = append(results, checkBackups(cfg.GetBackupDir(), time.Now()))
			results = append(results, checkBinary())

			hasErrors := false
			for _, r := range results {
				if r.Status == statusFail {
					hasErrors = true
					break
				}
			}

			if !quiet {
				printResults(results, hasErrors)
			}

			if hasErrors {
				return fmt.Errorf("data directory validation failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode - exit code only")

	return cmd
}

func printResults(results []CheckResult, hasErrors bool) {
	fmt.Println()
	fmt.Println("Check              Status")
	fmt.Println("─────────────────────────")
	for _, r := range results {
		fmt.Printf("%-18s %s\n", r.Name, colorStatus(r.Status))
	}
	fmt.Println()

	hasDetails := false
	for _, r := range results {
		if r.Status != statusOK && r.Details != "" {
			if !hasDetails {
				fmt.Println("Details:")
				hasDetails = true
			}
			fmt.Printf("\n%s:\n%s\n", r.Name, r.Details)
		}
	}

	if hasErrors {
		fmt.Println("\n⚠ Issues found. Stop the bots before fixing data by hand.")
	} else {
		fmt.Println("All checks passed.")
	}
}

func colorStatus(status string) string {
	switch status {
	case statusOK:
		return color.New(color.FgGreen).Sprint(status)
	case statusWarn:
		return color.New(color.FgYellow).Sprint(status)
	}
	return color.New(color.FgRed).Sprint(status)
}

// checkDataDir validates that the data directory exists and accepts writes
func checkDataDir(dir string) CheckResult {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return CheckResult{Name: "Data directory", Status: statusFail, Details: fmt.Sprintf("  %s does not exist\n  Run: shiftdesk init", dir)}
	}
	if err != nil {
		return CheckResult{Name: "Data directory", Status: statusFail, Details: "  " + err.Error()}
	}
	if !info.IsDir() {
		return CheckResult{Name: "Data directory", Status: statusFail, Details: fmt.Sprintf("  %s is not a directory", dir)}
	}

	scratch, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return CheckResult{Name: "Data directory", Status: statusFail, Details: fmt.Sprintf("  %s is not writable: %v", dir, err)}
	}
	scratch.Close()
	os.Remove(scratch.Name())

	return CheckResult{Name: "Data directory", Status: statusOK}
}

// checkLocks acquires and releases every table lock
func checkLocks(ctx context.Context, locks secondary.LockManager, timeout time.Duration) CheckResult {
	var stuck []string
	for _, def := range db.Tables() {
		guard, err := locks.Acquire(ctx, def.Name, timeout)
		if err != nil {
			stuck = append(stuck, fmt.Sprintf("  %s: %v", def.Name, err))
			continue
		}
		guard.Release()
	}
	if len(stuck) > 0 {
		return CheckResult{Name: "Locks", Status: statusWarn, Details: strings.Join(stuck, "\n") + "\n  Another process may be holding the lock"}
	}
	return CheckResult{Name: "Locks", Status: statusOK}
}

// checkIntegrity scans every table for duplicate IDs and every worker for
// more than one open shift
func checkIntegrity(ctx context.Context, h *db.Handle) CheckResult {
	var problems []string
	for _, table := range []secondary.Table{h.Workers, h.Shifts, h.Requests} {
		dups, err := duplicateIDs(ctx, table)
		if err != nil {
			return CheckResult{Name: "Integrity", Status: statusFail, Details: fmt.Sprintf("  %s: %v", table.Def().Name, err)}
		}
		for _, id := range dups {
			problems = append(problems, fmt.Sprintf("  %s: ID %d appears more than once", table.Def().Name, id))
		}
	}

	open, err := openShiftsByWorker(ctx, h.Shifts)
	if err != nil {
		return CheckResult{Name: "Integrity", Status: statusFail, Details: "  shifts: " + err.Error()}
	}
	for worker, ids := range open {
		if len(ids) > 1 {
			problems = append(problems, fmt.Sprintf("  worker %d has %d open shifts %v", worker, len(ids), ids))
		}
	}

	if len(problems) > 0 {
		return CheckResult{Name: "Integrity", Status: statusFail, Details: strings.Join(problems, "\n")}
	}
	return CheckResult{Name: "Integrity", Status: statusOK}
}

func duplicateIDs(ctx context.Context, table secondary.Table) ([]int64, error) {
	seen := make(map[int64]int)
	var dups []int64
	for row, err := range table.Scan(ctx) {
		if err != nil {
			return nil, err
		}
		id, err := db.RowID(row)
		if err != nil {
			return nil, err
		}
		seen[id]++
		if seen[id] == 2 {
			dups = append(dups, id)
		}
	}
	return dups, nil
}

func openShiftsByWorker(ctx context.Context, shifts secondary.Table) (map[int64][]int64, error) {
	open := make(map[int64][]int64)
	for row, err := range shifts.Scan(ctx) {
		if err != nil {
			return nil, err
		}
		if db.ShiftStatus(row) != shift.StatusOpen {
			continue
		}
		r, err := db.DecodeShift(row)
		if err != nil {
			return nil, err
		}
		open[r.WorkerID] = append(open[r.WorkerID], r.ID)
	}
	return open, nil
}

// checkBackups warns when the newest snapshot is missing or old
func checkBackups(dir string, now time.Time) CheckResult {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return CheckResult{Name: "Backups", Status: statusWarn, Details: fmt.Sprintf("  No backups in %s\n  Run: shiftdesk backup", dir)}
	}

	var newest time.Time
	count := 0
	for _, e := range entries {
		_, taken, ok := app.ParseSnapshotTime(e.Name())
		if !ok {
			continue
		}
		count++
		if taken.After(newest) {
			newest = taken
		}
	}

	if count == 0 {
		return CheckResult{Name: "Backups", Status: statusWarn, Details: fmt.Sprintf("  No backups in %s\n  Run: shiftdesk backup", dir)}
	}
	if age := now.Sub(newest); age > backupStaleAfter {
		return CheckResult{
			Name:    "Backups",
			Status:  statusWarn,
			Details: fmt.Sprintf("  Newest snapshot is %s old (%s)", age.Round(time.Hour), filepath.Clean(dir)),
		}
	}
	return CheckResult{Name: "Backups", Status: statusOK, Details: fmt.Sprintf("  %d snapshot(s)", count)}
}

// checkBinary reports where shiftdesk is installed
func checkBinary() CheckResult {
	path, err := exec.LookPath("shiftdesk")
	if err != nil {
		return CheckResult{
			Name:    "Binary",
			Status:  statusWarn,
			Details: "  'shiftdesk' not found in PATH\n  Run: make install",
		}
	}
	return CheckResult{Name: "Binary", Status: statusOK, Details: fmt.Sprintf("  %s (%s)", path, version.String())}
}
