package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/example/shiftdesk/internal/ports/primary"
)

// WorkerAdapter translates CLI operations to WorkerService calls.
type WorkerAdapter struct {
	service primary.WorkerService
	out     io.Writer
	loc     *time.Location
}

// NewWorkerAdapter creates a new WorkerAdapter.
func NewWorkerAdapter(service primary.WorkerService, out io.Writer, loc *time.Location) *WorkerAdapter {
	return &WorkerAdapter{service: service, out: out, loc: loc}
}

// Register registers a worker.
func (a *WorkerAdapter) Register(ctx context.Context, workerID int64, name string) error {
	w, err := a.service.RegisterWorker(ctx, primary.RegisterWorkerRequest{WorkerID: workerID, DisplayName: name})
	if err != nil {
		return present(err, a.loc)
	}

	fmt.Fprintf(a.out, "✓ Registered worker %d: %s\n", w.ID, w.DisplayName)
	return nil
}

// List lists registered workers.
func (a *WorkerAdapter) List(ctx context.Context) error {
	workers, err := a.service.ListWorkers(ctx)
	if err != nil {
		return present(err, a.loc)
	}

	if len(workers) == 0 {
		fmt.Fprintln(a.out, "No workers registered")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-12s %-16s %s\n", "ID", "REGISTERED", "NAME")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	for _, w := range workers {
		fmt.Fprintf(a.out, "%-12d %-16s %s\n", w.ID, formatTime(w.RegisteredAt, a.loc), w.DisplayName)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Show displays a worker.
func (a *WorkerAdapter) Show(ctx context.Context, workerID int64) error {
	w, err := a.service.GetWorker(ctx, workerID)
	if err != nil {
		return present(err, a.loc)
	}

	fmt.Fprintf(a.out, "\nWorker:     %d\n", w.ID)
	fmt.Fprintf(a.out, "Name:       %s\n", w.DisplayName)
	fmt.Fprintf(a.out, "Registered: %s\n", formatTime(w.RegisteredAt, a.loc))
	fmt.Fprintln(a.out)
	return nil
}
