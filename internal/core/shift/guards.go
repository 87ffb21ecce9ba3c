// Package shift contains the pure business logic for shift operations.
// Guards are pure functions that evaluate preconditions without side effects.
package shift

import (
	"fmt"
	"math"
	"time"
)

// Shift statuses. A shift moves from open to closed exactly once; there is
// no cancel or reopen transition.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// DefaultSuspiciousAfter is the worked duration above which a close is
// logged as suspicious.
const DefaultSuspiciousAfter = 24 * time.Hour

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// OpenShiftContext provides context for shift opening guards.
type OpenShiftContext struct {
	WorkerID    int64
	PropertyID  string
	OpenShiftID int64 // 0 if the worker has no open shift
}

// CloseShiftContext provides context for shift closing guards.
type CloseShiftContext struct {
	ShiftID  int64
	Status   string
	OpenedAt time.Time
	ClosedAt time.Time
}

// CanOpenShift evaluates whether a worker can open a new shift.
// Rules:
// - Worker and property must be identified
// - Worker must not already have an open shift
func CanOpenShift(ctx OpenShiftContext) GuardResult {
	if ctx.WorkerID <= 0 {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("invalid worker id %d", ctx.WorkerID)}
	}
	if ctx.PropertyID == "" {
		return GuardResult{Allowed: false, Reason: "property id is required"}
	}

	if ctx.OpenShiftID != 0 {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("worker %d already has open shift %d", ctx.WorkerID, ctx.OpenShiftID),
		}
	}

	return GuardResult{Allowed: true}
}

// CanCloseShift evaluates whether a shift can be closed.
// Rules:
// - Status must be "open"
// - Close time must not precede the open time
func CanCloseShift(ctx CloseShiftContext) GuardResult {
	if ctx.Status != StatusOpen {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("can only close open shifts (shift %d status: %s)", ctx.ShiftID, ctx.Status),
		}
	}

	if ctx.ClosedAt.Before(ctx.OpenedAt) {
		return GuardResult{
			Allowed: false,
			Reason: fmt.Sprintf("shift %d cannot close at %s, before it opened at %s",
				ctx.ShiftID, ctx.ClosedAt.Format(time.RFC3339), ctx.OpenedAt.Format(time.RFC3339)),
		}
	}

	return GuardResult{Allowed: true}
}

// DurationHours returns the worked time between opened and closed in hours,
// rounded to two decimals.
func DurationHours(opened, closed time.Time) float64 {
	return RoundHours(closed.Sub(opened).Hours())
}

// RoundHours rounds an hour count to two decimals.
func RoundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

// IsSuspicious reports whether a worked duration is long enough to warrant
// a warning. Suspicious durations are still committed.
func IsSuspicious(hours float64, threshold time.Duration) bool {
	if threshold <= 0 {
		threshold = DefaultSuspiciousAfter
	}
	return hours > threshold.Hours()
}
