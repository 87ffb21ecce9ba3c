package app_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/example/shiftdesk/internal/app"
	"github.com/example/shiftdesk/internal/db"
	"github.com/example/shiftdesk/internal/ports/primary"
)

var backends = []string{db.BackendCSV, db.BackendSQLite}

func openHandle(t *testing.T, backend, dir string) *db.Handle {
	t.Helper()
	h, err := db.Open(context.Background(), db.Options{Backend: backend, DataDir: dir, LockTimeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestIntegration_ConcurrentOpensAllocateContiguousIDs(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			defer goleak.VerifyNone(t)

			h := openHandle(t, backend, t.TempDir())
			service := app.NewShiftService(h.Shifts, h.Locks, app.Settings{}, nil)

			const workers = 10
			ids := make([]int64, workers)
			var g errgroup.Group
			for i := range workers {
				g.Go(func() error {
					resp, err := service.OpenShift(context.Background(), primary.OpenShiftRequest{
						WorkerID:   int64(100 + i),
						PropertyID: "P1",
					})
					if err != nil {
						return err
					}
					ids[i] = resp.ShiftID
					return nil
				})
			}
			require.NoError(t, g.Wait())

			slices.Sort(ids)
			assert.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, ids)

			open, err := service.GetAllOpen(context.Background())
			require.NoError(t, err)
			assert.Len(t, open, workers)
			require.NoError(t, h.Close())
		})
	}
}

func TestIntegration_ConcurrentOpensForOneWorker(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			defer goleak.VerifyNone(t)

			dir := t.TempDir()
			// Two handles on one directory behave like two bot processes.
			first := openHandle(t, backend, dir)
			second := openHandle(t, backend, dir)
			services := []*app.ShiftServiceImpl{
				app.NewShiftService(first.Shifts, first.Locks, app.Settings{}, nil),
				app.NewShiftService(second.Shifts, second.Locks, app.Settings{}, nil),
			}

			const attempts = 8
			errs := make([]error, attempts)
			var g errgroup.Group
			for i := range attempts {
				g.Go(func() error {
					_, errs[i] = services[i%2].OpenShift(context.Background(), primary.OpenShiftRequest{
						WorkerID:   7,
						PropertyID: "P1",
					})
					return nil
				})
			}
			require.NoError(t, g.Wait())

			succeeded := 0
			for _, err := range errs {
				var openErr *primary.AlreadyOpenError
				switch {
				case err == nil:
					succeeded++
				case errors.As(err, &openErr):
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}
			assert.Equal(t, 1, succeeded)

			open, err := services[0].GetOpenShift(context.Background(), 7)
			require.NoError(t, err)
			require.NotNil(t, open)

			require.NoError(t, first.Close())
			require.NoError(t, second.Close())
		})
	}
}

func TestIntegration_RequestLifecycle(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			h := openHandle(t, backend, t.TempDir())
			service := app.NewRequestService(h.Requests, h.Locks, app.NewRateLimiter(0), app.Settings{}, nil)
			ctx := context.Background()

			for _, d := range []string{"Need towels", "Broken lamp", "Soap"} {
				_, err := service.CreateRequest(ctx, primary.CreateRequestRequest{
					WorkerID: 1, PropertyID: "P1", Category: "generic", Description: d,
				})
				require.NoError(t, err)
			}

			done, err := service.CompleteRequest(ctx, 2)
			require.NoError(t, err)
			again, err := service.CompleteRequest(ctx, 2)
			require.NoError(t, err)
			assert.Equal(t, done.CompletedAt, again.CompletedAt)

			removed, err := service.PurgeCompleted(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, removed)

			pending, err := service.GetPendingRequests(ctx)
			require.NoError(t, err)
			require.Len(t, pending, 2)
			assert.Equal(t, int64(1), pending[0].ID)
			assert.Equal(t, int64(3), pending[1].ID)
			assert.Equal(t, "Soap", pending[1].Description)

			next, err := service.CreateRequest(ctx, primary.CreateRequestRequest{
				WorkerID: 1, PropertyID: "P1", Description: "More soap",
			})
			require.NoError(t, err)
			assert.Equal(t, int64(4), next.RequestID, "purged IDs are not reused while a higher ID remains")
		})
	}
}

func TestIntegration_PurgedIDsNeverReused(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			ctx := context.Background()
			create := func(service *app.RequestServiceImpl, description string) int64 {
				resp, err := service.CreateRequest(ctx, primary.CreateRequestRequest{
					WorkerID: 1, PropertyID: "P1", Category: "generic", Description: description,
				})
				require.NoError(t, err)
				return resp.RequestID
			}

			h := openHandle(t, backend, dir)
			service := app.NewRequestService(h.Requests, h.Locks, app.NewRateLimiter(0), app.Settings{}, nil)
			assert.Equal(t, int64(1), create(service, "Need towels"))
			assert.Equal(t, int64(2), create(service, "Broken lamp"))

			_, err := service.CompleteRequest(ctx, 2)
			require.NoError(t, err)
			removed, err := service.PurgeCompleted(ctx)
			require.NoError(t, err)
			require.Equal(t, 1, removed)

			assert.Equal(t, int64(3), create(service, "Soap"))

			// Purge everything and reopen: the mark is persisted with the table.
			for _, id := range []int64{1, 3} {
				_, err := service.CompleteRequest(ctx, id)
				require.NoError(t, err)
			}
			_, err = service.PurgeCompleted(ctx)
			require.NoError(t, err)
			require.NoError(t, h.Close())

			reopened := openHandle(t, backend, dir)
			service = app.NewRequestService(reopened.Requests, reopened.Locks, app.NewRateLimiter(0), app.Settings{}, nil)
			assert.Equal(t, int64(4), create(service, "Bleach"))
		})
	}
}

func TestIntegration_BackupRun(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			h := openHandle(t, backend, dir)

			shifts := app.NewShiftService(h.Shifts, h.Locks, app.Settings{}, nil)
			_, err := shifts.OpenShift(context.Background(), primary.OpenShiftRequest{WorkerID: 1, PropertyID: "P1"})
			require.NoError(t, err)

			backup := app.NewBackupService(h.Store, h.Locks, app.BackupOptions{Dir: t.TempDir()}, app.Settings{}, nil)
			report := backup.Run(context.Background())

			assert.Empty(t, report.Failed)
			assert.Len(t, report.Created, len(h.Store.SnapshotSources()))
		})
	}
}
