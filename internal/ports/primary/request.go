package primary

import (
	"context"
	"time"
)

// RequestService defines the primary port for replenishment/issue requests.
type RequestService interface {
	// CreateRequest records a new pending request.
	// Fails with *RateLimitedError or *ValidationError without touching storage.
	CreateRequest(ctx context.Context, req CreateRequestRequest) (*CreateRequestResponse, error)

	// CompleteRequest marks a request completed. Completing a completed
	// request returns it unchanged.
	CompleteRequest(ctx context.Context, requestID int64) (*Request, error)

	// PurgeCompleted deletes every completed request and returns how many
	// were removed. Irreversible.
	PurgeCompleted(ctx context.Context) (int, error)

	// GetPendingRequests lists pending requests in creation order.
	GetPendingRequests(ctx context.Context) ([]*Request, error)

	// GetRequest retrieves a request by ID.
	GetRequest(ctx context.Context, requestID int64) (*Request, error)

	// SetNotificationRef stores the reference of the message announcing the
	// request, so the collaborator can edit it later.
	SetNotificationRef(ctx context.Context, requestID int64, ref string) error
}

// CreateRequestRequest contains parameters for creating a request.
type CreateRequestRequest struct {
	WorkerID     int64
	PropertyID   string
	Category     string // cleaning-materials, property-issue, generic
	Description  string
	DeliveryNote string // Optional
}

// CreateRequestResponse contains the result of creating a request.
type CreateRequestResponse struct {
	RequestID int64
	Request   *Request
}

// Request represents a request entity at the port boundary.
type Request struct {
	ID              int64
	WorkerID        int64
	PropertyID      string
	Category        string
	Description     string
	DeliveryNote    string
	Status          string
	CreatedAt       time.Time
	CompletedAt     time.Time
	NotificationRef string
}

// IsCompleted reports whether the request has been fulfilled.
func (r *Request) IsCompleted() bool {
	return r.Status == "completed"
}
