// Package app contains the application services that enforce the shift and
// request lifecycles on top of the table store.
package app

import (
	"time"

	"github.com/example/shiftdesk/internal/core/shift"
)

// DefaultLockTimeout bounds table lock acquisition.
const DefaultLockTimeout = 10 * time.Second

// Settings carries the tunables shared by the services.
type Settings struct {
	LockTimeout     time.Duration
	RequestCooldown time.Duration
	SuspiciousShift time.Duration
	Location        *time.Location   // calendar day of a shift; nil means UTC
	Now             func() time.Time // nil means time.Now
}

func (s Settings) withDefaults() Settings {
	if s.LockTimeout <= 0 {
		s.LockTimeout = DefaultLockTimeout
	}
	if s.SuspiciousShift <= 0 {
		s.SuspiciousShift = shift.DefaultSuspiciousAfter
	}
	if s.Location == nil {
		s.Location = time.UTC
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	return s
}

// now returns the current time as it will be stored: UTC, whole seconds.
func (s Settings) now() time.Time {
	return s.Now().UTC().Truncate(time.Second)
}

// sameDay reports whether a and b fall on the same calendar day in the
// configured location.
func (s Settings) sameDay(a, b time.Time) bool {
	ay, am, ad := a.In(s.Location).Date()
	by, bm, bd := b.In(s.Location).Date()
	return ay == by && am == bm && ad == bd
}

// startOfDay returns midnight of t's calendar day in the configured location.
func (s Settings) startOfDay(t time.Time) time.Time {
	y, m, d := t.In(s.Location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.Location)
}
