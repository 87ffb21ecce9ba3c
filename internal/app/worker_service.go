package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/shiftdesk/internal/core/worker"
	"github.com/example/shiftdesk/internal/db"
	"github.com/example/shiftdesk/internal/ports/primary"
	"github.com/example/shiftdesk/internal/ports/secondary"
)

// WorkerServiceImpl implements the WorkerService interface.
type WorkerServiceImpl struct {
	workers  secondary.Table
	locks    secondary.LockManager
	settings Settings
	logger   *zap.Logger
}

// NewWorkerService creates a new WorkerService with injected dependencies.
func NewWorkerService(workers secondary.Table, locks secondary.LockManager, settings Settings, logger *zap.Logger) *WorkerServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkerServiceImpl{
		workers:  workers,
		locks:    locks,
		settings: settings.withDefaults(),
		logger:   logger.Named("workers"),
	}
}

// RegisterWorker appends a worker. Worker IDs come from the messaging
// identity, so nothing is allocated here.
func (s *WorkerServiceImpl) RegisterWorker(ctx context.Context, req primary.RegisterWorkerRequest) (*primary.Worker, error) {
	guardCtx := worker.RegisterWorkerContext{
		WorkerID:    req.WorkerID,
		DisplayName: worker.SanitizeName(req.DisplayName),
	}
	if result := worker.CanRegisterWorker(guardCtx); !result.Allowed {
		return nil, &primary.ValidationError{Field: "worker", Reason: result.Reason}
	}

	record := &secondary.WorkerRecord{
		ID:           req.WorkerID,
		DisplayName:  guardCtx.DisplayName,
		RegisteredAt: s.settings.now(),
	}
	err := withTableLock(ctx, s.locks, s.workers, s.settings.LockTimeout, func() error {
		rows, err := readRows(ctx, s.workers)
		if err != nil {
			return err
		}
		idx, err := findRow(rows, req.WorkerID)
		if err != nil {
			return &secondary.StorageError{Op: "decode", Table: s.workers.Def().Name, Err: err}
		}

		guardCtx.AlreadyExists = idx >= 0
		if result := worker.CanRegisterWorker(guardCtx); !result.Allowed {
			return fmt.Errorf("%s: %w", result.Reason, primary.ErrAlreadyExists)
		}
		return s.workers.Append(ctx, db.EncodeWorker(record))
	})
	if err != nil {
		return nil, surface(s.logger, "register worker", err, zap.Int64("worker_id", req.WorkerID))
	}

	s.logger.Info("worker registered",
		zap.Int64("worker_id", record.ID), zap.String("display_name", record.DisplayName))
	return recordToWorker(record), nil
}

// GetWorker retrieves a worker by ID.
func (s *WorkerServiceImpl) GetWorker(ctx context.Context, workerID int64) (*primary.Worker, error) {
	record, err := s.find(ctx, workerID)
	if err != nil {
		return nil, surface(s.logger, "get worker", err, zap.Int64("worker_id", workerID))
	}
	if record == nil {
		return nil, fmt.Errorf("worker %d: %w", workerID, primary.ErrNotFound)
	}
	return recordToWorker(record), nil
}

// ListWorkers lists workers in registration order.
func (s *WorkerServiceImpl) ListWorkers(ctx context.Context) ([]*primary.Worker, error) {
	records, err := loadWorkers(ctx, s.workers)
	if err != nil {
		return nil, surface(s.logger, "list workers", err)
	}
	workers := make([]*primary.Worker, len(records))
	for i, r := range records {
		workers[i] = recordToWorker(r)
	}
	return workers, nil
}

// WorkerExists checks whether a worker is registered.
func (s *WorkerServiceImpl) WorkerExists(ctx context.Context, workerID int64) (bool, error) {
	record, err := s.find(ctx, workerID)
	if err != nil {
		return false, surface(s.logger, "check worker", err, zap.Int64("worker_id", workerID))
	}
	return record != nil, nil
}

func (s *WorkerServiceImpl) find(ctx context.Context, workerID int64) (*secondary.WorkerRecord, error) {
	records, err := loadWorkers(ctx, s.workers)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.ID == workerID {
			return r, nil
		}
	}
	return nil, nil
}

func loadWorkers(ctx context.Context, table secondary.Table) ([]*secondary.WorkerRecord, error) {
	var records []*secondary.WorkerRecord
	for row, err := range table.Scan(ctx) {
		if err != nil {
			return nil, err
		}
		record, err := db.DecodeWorker(row)
		if err != nil {
			return nil, &secondary.StorageError{Op: "decode", Table: table.Def().Name, Err: err}
		}
		records = append(records, record)
	}
	return records, nil
}

func recordToWorker(r *secondary.WorkerRecord) *primary.Worker {
	return &primary.Worker{
		ID:           r.ID,
		DisplayName:  r.DisplayName,
		RegisteredAt: r.RegisteredAt,
	}
}

// Ensure WorkerServiceImpl implements the interface
var _ primary.WorkerService = (*WorkerServiceImpl)(nil)
