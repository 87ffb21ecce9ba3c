// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing, output formatting,
// but delegate business logic to services.
package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/shiftdesk/internal/ports/primary"
)

// displayLayout is how timestamps are shown to operators.
const displayLayout = "2006-01-02 15:04"

// Describe turns a service error into the text shown to the operator, with
// times shown in loc. Business errors get a plain sentence; infrastructure
// failures keep the wrapped chain so the cause stays visible.
func Describe(err error, loc *time.Location) string {
	var (
		alreadyOpen *primary.AlreadyOpenError
		validation  *primary.ValidationError
		rateLimited *primary.RateLimitedError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &alreadyOpen) && alreadyOpen.Shift != nil:
		s := alreadyOpen.Shift
		return fmt.Sprintf("worker %d is already checked in at %s since %s (shift %d); close it first",
			s.WorkerID, s.PropertyID, formatTime(s.OpenedAt, loc), s.ID)
	case errors.As(err, &validation):
		return validation.Reason
	case errors.As(err, &rateLimited):
		return fmt.Sprintf("too many requests, try again in %s", rateLimited.RetryAfter.Round(time.Second))
	case errors.Is(err, primary.ErrLockTimeout):
		return "storage is busy, try again in a moment"
	case errors.Is(err, primary.ErrIntegrity):
		return fmt.Sprintf("stored data needs attention: %v", err)
	}
	return err.Error()
}

// userError wraps err so cobra prints the Describe text while errors.Is/As
// still see the original.
type userError struct {
	err error
	loc *time.Location
}

func (e *userError) Error() string { return Describe(e.err, e.loc) }

func (e *userError) Unwrap() error { return e.err }

func present(err error, loc *time.Location) error {
	if err == nil {
		return nil
	}
	return &userError{err: err, loc: loc}
}

func formatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "-"
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(displayLayout)
}
