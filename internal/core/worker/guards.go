// Package worker contains the pure business logic for worker registration.
package worker

import (
	"fmt"
	"unicode/utf8"

	"github.com/example/shiftdesk/internal/core/request"
)

// Display name limits, in characters.
const (
	MinNameLength = 2
	MaxNameLength = 50
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// RegisterWorkerContext provides context for registration guards.
type RegisterWorkerContext struct {
	WorkerID      int64
	DisplayName   string // sanitized
	AlreadyExists bool
}

// SanitizeName cleans a display name with the same rules as request text.
func SanitizeName(name string) string {
	return request.Sanitize(name, MaxNameLength)
}

// CanRegisterWorker evaluates whether a worker can be registered.
// Rules:
// - Worker ID comes from the messaging identity and must be positive
// - Worker must not already be registered
// - Display name must have at least MinNameLength characters
func CanRegisterWorker(ctx RegisterWorkerContext) GuardResult {
	if ctx.WorkerID <= 0 {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("invalid worker id %d", ctx.WorkerID)}
	}

	if ctx.AlreadyExists {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("worker %d is already registered", ctx.WorkerID)}
	}

	if n := utf8.RuneCountInString(ctx.DisplayName); n < MinNameLength {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("display name too short (%d characters, minimum %d)", n, MinNameLength),
		}
	}

	return GuardResult{Allowed: true}
}
