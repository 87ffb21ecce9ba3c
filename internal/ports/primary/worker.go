package primary

import (
	"context"
	"time"
)

// WorkerService defines the primary port for the worker registry.
// Workers are append-only.
type WorkerService interface {
	// RegisterWorker records a worker under its messaging identity.
	RegisterWorker(ctx context.Context, req RegisterWorkerRequest) (*Worker, error)

	// GetWorker retrieves a worker by ID.
	GetWorker(ctx context.Context, workerID int64) (*Worker, error)

	// ListWorkers lists every registered worker.
	ListWorkers(ctx context.Context) ([]*Worker, error)

	// WorkerExists checks whether a worker is registered.
	WorkerExists(ctx context.Context, workerID int64) (bool, error)
}

// RegisterWorkerRequest contains parameters for registering a worker.
type RegisterWorkerRequest struct {
	WorkerID    int64
	DisplayName string
}

// Worker represents a worker entity at the port boundary.
type Worker struct {
	ID           int64
	DisplayName  string
	RegisteredAt time.Time
}
