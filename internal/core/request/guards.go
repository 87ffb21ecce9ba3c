// Package request contains the pure business logic for replenishment and
// issue requests raised by workers.
package request

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Request statuses. Completion is terminal; completed rows can only be purged.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Request categories.
const (
	CategoryCleaningMaterials = "cleaning-materials"
	CategoryPropertyIssue     = "property-issue"
	CategoryGeneric           = "generic"
)

// Text limits, in characters.
const (
	MinDescriptionLength  = 3
	MaxDescriptionLength  = 500
	MaxDeliveryNoteLength = 300
)

// Categories lists the accepted categories in display order.
var Categories = []string{CategoryCleaningMaterials, CategoryPropertyIssue, CategoryGeneric}

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

// CreateRequestContext provides context for request creation guards.
// Description and DeliveryNote are expected to be sanitized already.
type CreateRequestContext struct {
	WorkerID     int64
	PropertyID   string
	Category     string
	Description  string
	DeliveryNote string
}

// Sanitize trims text, drops characters that are hazardous in file names and
// markup (<>:"/\|?* and control characters) and clips the result to max
// characters.
func Sanitize(text string, max int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	text = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return -1
		}
		return r
	}, text)

	if max > 0 && utf8.RuneCountInString(text) > max {
		text = string([]rune(text)[:max])
	}

	return strings.TrimRightFunc(text, unicode.IsSpace)
}

// IsValidCategory reports whether category is one of Categories.
func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// CanCreateRequest evaluates whether a request can be created.
// Rules:
// - Worker and property must be identified
// - Category must be known
// - Description must have at least MinDescriptionLength characters
// - Delivery note must fit in MaxDeliveryNoteLength characters
func CanCreateRequest(ctx CreateRequestContext) GuardResult {
	if ctx.WorkerID <= 0 {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("invalid worker id %d", ctx.WorkerID)}
	}
	if ctx.PropertyID == "" {
		return GuardResult{Allowed: false, Reason: "property id is required"}
	}

	if !IsValidCategory(ctx.Category) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("invalid category %q (valid: %s)", ctx.Category, strings.Join(Categories, ", ")),
		}
	}

	if n := utf8.RuneCountInString(ctx.Description); n < MinDescriptionLength {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("description too short (%d characters, minimum %d)", n, MinDescriptionLength),
		}
	}
	if n := utf8.RuneCountInString(ctx.Description); n > MaxDescriptionLength {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("description too long (%d characters, maximum %d)", n, MaxDescriptionLength),
		}
	}

	if n := utf8.RuneCountInString(ctx.DeliveryNote); n > MaxDeliveryNoteLength {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("delivery note too long (%d characters, maximum %d)", n, MaxDeliveryNoteLength),
		}
	}

	return GuardResult{Allowed: true}
}

// IsCompleted reports whether status is terminal. Completing a completed
// request is a no-op rather than an error.
func IsCompleted(status string) bool {
	return status == StatusCompleted
}

// CooldownRemaining returns how long a worker must still wait before a new
// request is accepted. Zero means a request may be created now.
func CooldownRemaining(last, now time.Time, cooldown time.Duration) time.Duration {
	if last.IsZero() || cooldown <= 0 {
		return 0
	}
	elapsed := now.Sub(last)
	if elapsed >= cooldown {
		return 0
	}
	return cooldown - elapsed
}
