package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/shiftdesk/internal/ports/primary"
	"github.com/example/shiftdesk/internal/ports/secondary"
)

// Snapshot naming.
const (
	SnapshotExt        = ".bak"
	SnapshotTimeLayout = "20060102T150405Z"

	DefaultRetention     = 30 * 24 * time.Hour
	DefaultBackupWorkers = 4
)

// BackupOptions configures the backup service.
type BackupOptions struct {
	Dir       string
	Retention time.Duration // zero means DefaultRetention
	Workers   int           // concurrent snapshots; zero means DefaultBackupWorkers
}

// BackupServiceImpl implements the BackupService interface.
type BackupServiceImpl struct {
	store    secondary.TableStore
	locks    secondary.LockManager
	opts     BackupOptions
	settings Settings
	logger   *zap.Logger
}

// NewBackupService creates a new BackupService with injected dependencies.
func NewBackupService(store secondary.TableStore, locks secondary.LockManager, opts BackupOptions, settings Settings, logger *zap.Logger) *BackupServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultBackupWorkers
	}
	return &BackupServiceImpl{
		store:    store,
		locks:    locks,
		opts:     opts,
		settings: settings.withDefaults(),
		logger:   logger.Named("backup"),
	}
}

// SnapshotName returns the file name of the snapshot of source taken at t.
func SnapshotName(source string, t time.Time) string {
	return source + "." + t.UTC().Format(SnapshotTimeLayout) + SnapshotExt
}

// ParseSnapshotTime extracts the source name and timestamp from a snapshot
// file name.
func ParseSnapshotTime(name string) (string, time.Time, bool) {
	base, ok := strings.CutSuffix(filepath.Base(name), SnapshotExt)
	if !ok {
		return "", time.Time{}, false
	}
	dot := strings.LastIndexByte(base, '.')
	if dot <= 0 {
		return "", time.Time{}, false
	}
	t, err := time.Parse(SnapshotTimeLayout, base[dot+1:])
	if err != nil {
		return "", time.Time{}, false
	}
	return base[:dot], t, true
}

// Run snapshots every source of the store, then prunes expired snapshots.
// A failing source is logged and skipped; the others are still copied.
func (s *BackupServiceImpl) Run(ctx context.Context) *primary.BackupReport {
	report := &primary.BackupReport{StartedAt: s.settings.now()}

	if err := os.MkdirAll(s.opts.Dir, 0o755); err != nil {
		s.logger.Error("backup directory unavailable", zap.String("dir", s.opts.Dir), zap.Error(err))
		for _, src := range s.store.SnapshotSources() {
			report.Failed = append(report.Failed, src.Name())
		}
		return report
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(s.opts.Workers)

	for _, src := range s.store.SnapshotSources() {
		g.Go(func() error {
			dst := filepath.Join(s.opts.Dir, SnapshotName(src.Name(), report.StartedAt))
			err := s.snapshot(ctx, src, dst)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Error("snapshot failed",
					zap.String("source", src.Name()), zap.String("dst", dst), zap.Error(err))
				report.Failed = append(report.Failed, src.Name())
				return nil
			}
			s.logger.Debug("snapshot created", zap.String("source", src.Name()), zap.String("dst", dst))
			report.Created = append(report.Created, dst)
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(report.Created)
	sort.Strings(report.Failed)
	report.Pruned = s.Prune(ctx)

	s.logger.Info("backup finished",
		zap.Int("created", len(report.Created)),
		zap.Int("failed", len(report.Failed)),
		zap.Int("pruned", report.Pruned))
	return report
}

// snapshot copies src while holding its lock so the copy never interleaves
// with a rewrite.
func (s *BackupServiceImpl) snapshot(ctx context.Context, src secondary.SnapshotSource, dst string) (err error) {
	guard, err := s.locks.Acquire(ctx, src.Name(), s.settings.LockTimeout)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := guard.Release(); rerr != nil && err == nil {
			err = fmt.Errorf("release %s lock: %w", src.Name(), rerr)
		}
	}()
	return src.Snapshot(ctx, dst)
}

// Prune deletes snapshots older than the retention window. Age comes from
// the timestamp in the file name, or from the modification time when the
// name does not carry one. Files without the snapshot extension are left
// alone.
func (s *BackupServiceImpl) Prune(ctx context.Context) int {
	entries, err := os.ReadDir(s.opts.Dir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Error("list backups failed", zap.String("dir", s.opts.Dir), zap.Error(err))
		}
		return 0
	}

	cutoff := s.settings.now().Add(-s.opts.Retention)
	pruned := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), SnapshotExt) {
			continue
		}

		_, taken, ok := ParseSnapshotTime(entry.Name())
		if !ok {
			info, err := entry.Info()
			if err != nil {
				s.logger.Warn("stat backup failed", zap.String("file", entry.Name()), zap.Error(err))
				continue
			}
			taken = info.ModTime()
		}
		if !taken.Before(cutoff) {
			continue
		}

		path := filepath.Join(s.opts.Dir, entry.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warn("remove expired backup failed", zap.String("file", path), zap.Error(err))
			continue
		}
		s.logger.Debug("expired backup removed", zap.String("file", path))
		pruned++
	}
	return pruned
}

// Ensure BackupServiceImpl implements the interface
var _ primary.BackupService = (*BackupServiceImpl)(nil)
