package app

import (
	"sync"
	"time"

	"github.com/example/shiftdesk/internal/core/request"
)

// RateLimiter enforces a minimum interval between two accepted requests of
// the same worker. State lives in this process only and is lost on restart;
// processes sharing a data directory each keep their own limits.
type RateLimiter struct {
	cooldown time.Duration

	mu       sync.Mutex
	last     map[int64]time.Time
	inFlight map[int64]bool
}

// NewRateLimiter creates a limiter. A zero cooldown accepts everything.
func NewRateLimiter(cooldown time.Duration) *RateLimiter {
	return &RateLimiter{
		cooldown: cooldown,
		last:     make(map[int64]time.Time),
		inFlight: make(map[int64]bool),
	}
}

// Cooldown returns the configured interval.
func (l *RateLimiter) Cooldown() time.Duration {
	return l.cooldown
}

// Begin reserves a creation slot for worker. It fails with the remaining wait
// while the cooldown runs or while another creation for the same worker is
// still in progress. Every successful Begin must be paired with Finish.
func (l *RateLimiter) Begin(workerID int64, now time.Time) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.inFlight[workerID] {
		return l.cooldown, false
	}
	if wait := request.CooldownRemaining(l.last[workerID], now, l.cooldown); wait > 0 {
		return wait, false
	}
	l.inFlight[workerID] = true
	return 0, true
}

// Finish releases the slot. Only accepted creations start a new cooldown.
func (l *RateLimiter) Finish(workerID int64, at time.Time, accepted bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.inFlight, workerID)
	if accepted {
		l.last[workerID] = at
	}
}

// Reset forgets every worker.
func (l *RateLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.last = make(map[int64]time.Time)
	l.inFlight = make(map[int64]bool)
}
