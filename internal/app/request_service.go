package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/shiftdesk/internal/core/request"
	"github.com/example/shiftdesk/internal/db"
	"github.com/example/shiftdesk/internal/ports/primary"
	"github.com/example/shiftdesk/internal/ports/secondary"
)

// RequestServiceImpl implements the RequestService interface.
type RequestServiceImpl struct {
	requests secondary.Table
	locks    secondary.LockManager
	limiter  *RateLimiter
	settings Settings
	logger   *zap.Logger
}

// NewRequestService creates a new RequestService with injected dependencies.
// A nil limiter uses settings.RequestCooldown.
func NewRequestService(requests secondary.Table, locks secondary.LockManager, limiter *RateLimiter, settings Settings, logger *zap.Logger) *RequestServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limiter == nil {
		limiter = NewRateLimiter(settings.RequestCooldown)
	}
	return &RequestServiceImpl{
		requests: requests,
		locks:    locks,
		limiter:  limiter,
		settings: settings.withDefaults(),
		logger:   logger.Named("requests"),
	}
}

// CreateRequest records a pending request. Rate limiting is checked before
// anything else and only accepted requests start a new cooldown.
func (s *RequestServiceImpl) CreateRequest(ctx context.Context, req primary.CreateRequestRequest) (resp *primary.CreateRequestResponse, err error) {
	now := s.settings.now()
	if wait, ok := s.limiter.Begin(req.WorkerID, now); !ok {
		s.logger.Debug("request rate limited",
			zap.Int64("worker_id", req.WorkerID), zap.Duration("retry_after", wait))
		return nil, &primary.RateLimitedError{WorkerID: req.WorkerID, RetryAfter: wait}
	}
	defer func() {
		s.limiter.Finish(req.WorkerID, now, err == nil)
	}()

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = request.CategoryGeneric
	}
	record := &secondary.RequestRecord{
		WorkerID:     req.WorkerID,
		PropertyID:   strings.TrimSpace(req.PropertyID),
		Category:     category,
		Description:  request.Sanitize(req.Description, request.MaxDescriptionLength),
		DeliveryNote: request.Sanitize(req.DeliveryNote, request.MaxDeliveryNoteLength),
		Status:       request.StatusPending,
		CreatedAt:    now,
	}

	result := request.CanCreateRequest(request.CreateRequestContext{
		WorkerID:     record.WorkerID,
		PropertyID:   record.PropertyID,
		Category:     record.Category,
		Description:  record.Description,
		DeliveryNote: record.DeliveryNote,
	})
	if !result.Allowed {
		return nil, &primary.ValidationError{Field: "request", Reason: result.Reason}
	}

	err = withTableLock(ctx, s.locks, s.requests, s.settings.LockTimeout, func() error {
		id, err := NextIDLocked(ctx, s.requests)
		if err != nil {
			return err
		}
		record.ID = id
		return s.requests.Append(ctx, db.EncodeRequest(record))
	})
	if err != nil {
		return nil, surface(s.logger, "create request", err,
			zap.Int64("worker_id", req.WorkerID), zap.String("property_id", record.PropertyID))
	}

	s.logger.Info("request created",
		zap.Int64("request_id", record.ID),
		zap.Int64("worker_id", record.WorkerID),
		zap.String("category", record.Category))

	return &primary.CreateRequestResponse{
		RequestID: record.ID,
		Request:   recordToRequest(record),
	}, nil
}

// CompleteRequest marks a request completed. A completed request is returned
// as stored, without rewriting the table.
func (s *RequestServiceImpl) CompleteRequest(ctx context.Context, requestID int64) (*primary.Request, error) {
	var record *secondary.RequestRecord
	var changed bool
	err := s.update(ctx, requestID, func(r *secondary.RequestRecord) bool {
		record = r
		if request.IsCompleted(r.Status) {
			return false
		}
		r.Status = request.StatusCompleted
		r.CompletedAt = s.settings.now()
		changed = true
		return true
	})
	if err != nil {
		return nil, surface(s.logger, "complete request", err, zap.Int64("request_id", requestID))
	}

	if changed {
		s.logger.Info("request completed", zap.Int64("request_id", requestID))
	}
	return recordToRequest(record), nil
}

// PurgeCompleted rewrites the requests table without its completed rows.
// Pending rows keep their content and identifiers.
func (s *RequestServiceImpl) PurgeCompleted(ctx context.Context) (int, error) {
	var removed int
	err := withTableLock(ctx, s.locks, s.requests, s.settings.LockTimeout, func() error {
		rows, err := readRows(ctx, s.requests)
		if err != nil {
			return err
		}

		kept := make([]secondary.Row, 0, len(rows))
		for _, row := range rows {
			if request.IsCompleted(db.RequestStatus(row)) {
				continue
			}
			kept = append(kept, row)
		}
		removed = len(rows) - len(kept)
		if removed == 0 {
			return nil
		}
		return s.requests.Overwrite(ctx, kept)
	})
	if err != nil {
		return 0, surface(s.logger, "purge completed requests", err)
	}

	s.logger.Info("completed requests purged", zap.Int("removed", removed))
	return removed, nil
}

// GetPendingRequests lists pending requests in creation order.
func (s *RequestServiceImpl) GetPendingRequests(ctx context.Context) ([]*primary.Request, error) {
	pending := db.Filter(s.requests.Scan(ctx), func(row secondary.Row) bool {
		return db.RequestStatus(row) == request.StatusPending
	})

	var requests []*primary.Request
	for row, err := range pending {
		if err != nil {
			return nil, surface(s.logger, "list pending requests", err)
		}
		record, err := db.DecodeRequest(row)
		if err != nil {
			return nil, surface(s.logger, "list pending requests",
				&secondary.StorageError{Op: "decode", Table: s.requests.Def().Name, Err: err})
		}
		requests = append(requests, recordToRequest(record))
	}
	return requests, nil
}

// GetRequest retrieves a request by ID.
func (s *RequestServiceImpl) GetRequest(ctx context.Context, requestID int64) (*primary.Request, error) {
	for row, err := range s.requests.Scan(ctx) {
		if err != nil {
			return nil, surface(s.logger, "get request", err, zap.Int64("request_id", requestID))
		}
		id, err := db.RowID(row)
		if err != nil || id != requestID {
			continue
		}
		record, err := db.DecodeRequest(row)
		if err != nil {
			return nil, surface(s.logger, "get request",
				&secondary.StorageError{Op: "decode", Table: s.requests.Def().Name, Err: err},
				zap.Int64("request_id", requestID))
		}
		return recordToRequest(record), nil
	}
	return nil, fmt.Errorf("request %d: %w", requestID, primary.ErrNotFound)
}

// SetNotificationRef stores the reference of the message that announced the
// request.
func (s *RequestServiceImpl) SetNotificationRef(ctx context.Context, requestID int64, ref string) error {
	ref = strings.TrimSpace(ref)
	err := s.update(ctx, requestID, func(r *secondary.RequestRecord) bool {
		if r.NotificationRef == ref {
			return false
		}
		r.NotificationRef = ref
		return true
	})
	return surface(s.logger, "set notification ref", err, zap.Int64("request_id", requestID))
}

// update applies mutate to one request under the table lock. The table is
// rewritten only when mutate reports a change.
func (s *RequestServiceImpl) update(ctx context.Context, requestID int64, mutate func(*secondary.RequestRecord) bool) error {
	return withTableLock(ctx, s.locks, s.requests, s.settings.LockTimeout, func() error {
		rows, err := readRows(ctx, s.requests)
		if err != nil {
			return err
		}
		idx, err := findRow(rows, requestID)
		if err != nil {
			return &secondary.StorageError{Op: "decode", Table: s.requests.Def().Name, Err: err}
		}
		if idx < 0 {
			return fmt.Errorf("request %d: %w", requestID, primary.ErrNotFound)
		}

		record, err := db.DecodeRequest(rows[idx])
		if err != nil {
			return &secondary.StorageError{Op: "decode", Table: s.requests.Def().Name, Err: err}
		}
		if !mutate(record) {
			return nil
		}

		rows[idx] = db.EncodeRequest(record)
		return s.requests.Overwrite(ctx, rows)
	})
}

// Helper functions

func recordToRequest(r *secondary.RequestRecord) *primary.Request {
	return &primary.Request{
		ID:              r.ID,
		WorkerID:        r.WorkerID,
		PropertyID:      r.PropertyID,
		Category:        r.Category,
		Description:     r.Description,
		DeliveryNote:    r.DeliveryNote,
		Status:          r.Status,
		CreatedAt:       r.CreatedAt,
		CompletedAt:     r.CompletedAt,
		NotificationRef: r.NotificationRef,
	}
}

// Ensure RequestServiceImpl implements the interface
var _ primary.RequestService = (*RequestServiceImpl)(nil)
