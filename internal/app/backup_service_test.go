package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/shiftdesk/internal/ports/secondary"
)

// ============================================================================
// Mock Store
// ============================================================================

// mockSource implements secondary.SnapshotSource by writing fixed content.
type mockSource struct {
	name    string
	err     error
	locks   *mockLockManager
	sawLock bool
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Snapshot(ctx context.Context, dst string) error {
	if m.locks != nil {
		m.sawLock = m.locks.isHeld(m.name)
	}
	if m.err != nil {
		return m.err
	}
	return os.WriteFile(dst, []byte(m.name), 0o644)
}

// mockStore implements secondary.TableStore with snapshot sources only.
type mockStore struct {
	sources []secondary.SnapshotSource
}

func (m *mockStore) Open(ctx context.Context, def secondary.TableDef) (secondary.Table, error) {
	return newMockTable(def), nil
}

func (m *mockStore) SnapshotSources() []secondary.SnapshotSource { return m.sources }

func (m *mockStore) Close() error { return nil }

func newTestBackupService(t *testing.T, sources ...*mockSource) (*BackupServiceImpl, string, *testClock) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "backups")
	locks := newMockLockManager()
	store := &mockStore{}
	for _, s := range sources {
		s.locks = locks
		store.sources = append(store.sources, s)
	}
	clock := newTestClock(at(3, 0, 0))
	service := NewBackupService(store, locks, BackupOptions{Dir: dir}, testSettings(clock), nil)
	return service, dir, clock
}

// ============================================================================
// Naming Tests
// ============================================================================

func TestSnapshotName(t *testing.T) {
	name := SnapshotName("shifts", time.Date(2024, 3, 15, 3, 4, 5, 0, time.FixedZone("CET", 3600)))
	if name != "shifts.20240315T020405Z.bak" {
		t.Errorf("unexpected snapshot name %q", name)
	}

	source, taken, ok := ParseSnapshotTime("/backups/" + name)
	if !ok {
		t.Fatal("expected name to parse")
	}
	if source != "shifts" || !taken.Equal(at(2, 4, 5)) {
		t.Errorf("expected shifts at 02:04:05, got %s at %v", source, taken)
	}
}

func TestParseSnapshotTime_Invalid(t *testing.T) {
	for _, name := range []string{"shifts.csv", "shifts.bak", ".20240315T020405Z.bak", "shifts.yesterday.bak"} {
		if _, _, ok := ParseSnapshotTime(name); ok {
			t.Errorf("expected %q not to parse", name)
		}
	}
}

// ============================================================================
// Run Tests
// ============================================================================

func TestBackupRun_SnapshotsEverySource(t *testing.T) {
	workers := &mockSource{name: "workers"}
	shifts := &mockSource{name: "shifts"}
	service, dir, _ := newTestBackupService(t, workers, shifts)

	report := service.Run(context.Background())

	if len(report.Created) != 2 || len(report.Failed) != 0 {
		t.Fatalf("expected 2 created, 0 failed, got %+v", report)
	}
	for _, name := range []string{"shifts.20240315T030000Z.bak", "workers.20240315T030000Z.bak"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
	if !workers.sawLock || !shifts.sawLock {
		t.Error("expected snapshots taken under the source lock")
	}
}

func TestBackupRun_FailureIsIsolated(t *testing.T) {
	broken := &mockSource{name: "requests", err: errors.New("unreadable")}
	ok := &mockSource{name: "shifts"}
	service, _, _ := newTestBackupService(t, broken, ok)

	report := service.Run(context.Background())

	if len(report.Created) != 1 || len(report.Failed) != 1 || report.Failed[0] != "requests" {
		t.Fatalf("expected one success and requests failed, got %+v", report)
	}
}

func TestBackupRun_Prunes(t *testing.T) {
	service, dir, _ := newTestBackupService(t, &mockSource{name: "shifts"})
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	old := SnapshotName("shifts", at(3, 0, 0).AddDate(0, 0, -31))
	recent := SnapshotName("shifts", at(3, 0, 0).AddDate(0, 0, -29))
	for _, name := range []string{old, recent, "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	report := service.Run(context.Background())

	if report.Pruned != 1 {
		t.Errorf("expected 1 pruned, got %d", report.Pruned)
	}
	if _, err := os.Stat(filepath.Join(dir, old)); !os.IsNotExist(err) {
		t.Error("expected expired snapshot removed")
	}
	for _, name := range []string{recent, "notes.txt"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s kept: %v", name, err)
		}
	}
}

func TestPrune_FallsBackToModTime(t *testing.T) {
	service, dir, clock := newTestBackupService(t)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	stale := filepath.Join(dir, "legacy.bak")
	fresh := filepath.Join(dir, "manual.bak")
	for _, p := range []string{stale, fresh} {
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	staleTime := clock.Now().AddDate(0, 0, -40)
	if err := os.Chtimes(stale, staleTime, staleTime); err != nil {
		t.Fatal(err)
	}
	freshTime := clock.Now().Add(-time.Hour)
	if err := os.Chtimes(fresh, freshTime, freshTime); err != nil {
		t.Fatal(err)
	}

	if n := service.Prune(context.Background()); n != 1 {
		t.Errorf("expected 1 pruned, got %d", n)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("expected fresh backup kept: %v", err)
	}
}

func TestPrune_MissingDir(t *testing.T) {
	service, _, _ := newTestBackupService(t)

	if n := service.Prune(context.Background()); n != 0 {
		t.Errorf("expected 0 pruned, got %d", n)
	}
}
