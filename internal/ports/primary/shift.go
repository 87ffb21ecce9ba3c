// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces collaborators use; they never touch table files directly.
package primary

import (
	"context"
	"time"
)

// ShiftService defines the primary port for shift operations.
type ShiftService interface {
	// OpenShift opens a shift for a worker at a property.
	// Fails with *AlreadyOpenError if the worker has an open shift.
	OpenShift(ctx context.Context, req OpenShiftRequest) (*OpenShiftResponse, error)

	// CloseShift closes an open shift and records the worked duration.
	CloseShift(ctx context.Context, req CloseShiftRequest) (*CloseShiftResponse, error)

	// GetShift retrieves a shift by ID.
	GetShift(ctx context.Context, shiftID int64) (*Shift, error)

	// GetOpenShift returns the worker's open shift, or nil if none is open.
	GetOpenShift(ctx context.Context, workerID int64) (*Shift, error)

	// GetAllOpen lists every open shift.
	GetAllOpen(ctx context.Context) ([]*Shift, error)

	// GetByDate lists shifts opened on the given calendar day.
	GetByDate(ctx context.Context, date time.Time) ([]*Shift, error)

	// GetCompleted lists closed shifts, most recently closed first.
	// A limit of 0 returns all of them.
	GetCompleted(ctx context.Context, limit int) ([]*Shift, error)

	// GetByWorker lists a worker's shifts opened within [from, to].
	// Zero bounds are open-ended.
	GetByWorker(ctx context.Context, workerID int64, from, to time.Time) ([]*Shift, error)
}

// OpenShiftRequest contains parameters for opening a shift.
type OpenShiftRequest struct {
	WorkerID   int64
	PropertyID string
}

// OpenShiftResponse contains the result of opening a shift.
type OpenShiftResponse struct {
	ShiftID int64
	Shift   *Shift
}

// CloseShiftRequest contains parameters for closing a shift.
type CloseShiftRequest struct {
	ShiftID  int64
	ClosedAt time.Time // zero means now
}

// CloseShiftResponse contains the result of closing a shift.
type CloseShiftResponse struct {
	Shift         *Shift
	DurationHours float64
	Suspicious    bool // duration above the configured threshold
}

// Shift represents a shift entity at the port boundary.
type Shift struct {
	ID            int64
	WorkerID      int64
	PropertyID    string
	OpenedAt      time.Time
	ClosedAt      time.Time
	DurationHours float64
	Status        string
}

// IsOpen reports whether the shift is still open.
func (s *Shift) IsOpen() bool {
	return s.Status == "open"
}
