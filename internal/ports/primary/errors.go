package primary

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/shiftdesk/internal/ports/secondary"
)

var (
	// ErrLockTimeout means a table lock was not acquired in time. Transient.
	ErrLockTimeout = secondary.ErrLockTimeout

	// ErrStorageIO matches failures of the underlying table files.
	ErrStorageIO = secondary.ErrStorageIO

	// ErrNotFound means the referenced shift, request or worker is absent.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState means the record is not in a state that allows the
	// operation, e.g. closing a closed shift.
	ErrInvalidState = errors.New("invalid state")

	// ErrAlreadyExists means an append-only record with the same identity exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrIntegrity means stored data violates an invariant, e.g. a worker
	// with two open shifts. It needs a manual data fix.
	ErrIntegrity = errors.New("data integrity violation")
)

// AlreadyOpenError is returned when a worker opens a shift while another one
// is still open. Shift carries the conflicting shift for user-facing text.
type AlreadyOpenError struct {
	Shift *Shift
}

func (e *AlreadyOpenError) Error() string {
	if e.Shift == nil {
		return "shift already open"
	}
	return fmt.Sprintf("worker %d already has open shift %d at %s since %s",
		e.Shift.WorkerID, e.Shift.ID, e.Shift.PropertyID, e.Shift.OpenedAt.Format(time.RFC3339))
}

// ValidationError reports input out of bounds.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RateLimitedError is returned when a worker creates requests faster than the
// configured cooldown allows.
type RateLimitedError struct {
	WorkerID   int64
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("worker %d must wait %s before creating another request",
		e.WorkerID, e.RetryAfter.Round(time.Second))
}

// IsBusinessError reports whether err is a rule violation the caller should
// translate into user-facing text, as opposed to an infrastructure failure.
func IsBusinessError(err error) bool {
	var (
		alreadyOpen *AlreadyOpenError
		validation  *ValidationError
		rateLimited *RateLimitedError
	)
	switch {
	case errors.As(err, &alreadyOpen), errors.As(err, &validation), errors.As(err, &rateLimited):
		return true
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidState), errors.Is(err, ErrAlreadyExists):
		return true
	}
	return false
}
