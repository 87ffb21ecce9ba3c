package app

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/example/shiftdesk/internal/db"
	"github.com/example/shiftdesk/internal/ports/secondary"
)

// ============================================================================
// Mock Table
// ============================================================================

// Ensure mockTable implements the interface
var _ secondary.Table = (*mockTable)(nil)

// mockTable implements secondary.Table in memory for testing.
type mockTable struct {
	mu           sync.Mutex
	def          secondary.TableDef
	rows         []secondary.Row
	appendErr    error
	scanErr      error
	overwriteErr error
	markErr      error
	highWater    int64
	appends      int
	overwrites   int
}

func newMockTable(def secondary.TableDef) *mockTable {
	return &mockTable{def: def}
}

func (m *mockTable) Def() secondary.TableDef {
	return m.def
}

func (m *mockTable) Append(ctx context.Context, row secondary.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	if len(row) != len(m.def.Columns) {
		return fmt.Errorf("row has %d cells, want %d", len(row), len(m.def.Columns))
	}
	m.rows = append(m.rows, slices.Clone(row))
	m.appends++
	return nil
}

func (m *mockTable) Scan(ctx context.Context) iter.Seq2[secondary.Row, error] {
	return func(yield func(secondary.Row, error) bool) {
		m.mu.Lock()
		err := m.scanErr
		rows := make([]secondary.Row, len(m.rows))
		for i, r := range m.rows {
			rows[i] = slices.Clone(r)
		}
		m.mu.Unlock()

		if err != nil {
			yield(nil, err)
			return
		}
		for _, r := range rows {
			if !yield(r, nil) {
				return
			}
		}
	}
}

func (m *mockTable) Overwrite(ctx context.Context, rows []secondary.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.overwriteErr != nil {
		return m.overwriteErr
	}
	m.rows = make([]secondary.Row, len(rows))
	for i, r := range rows {
		m.rows[i] = slices.Clone(r)
	}
	m.overwrites++
	return nil
}

func (m *mockTable) HighWater(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return 0, m.markErr
	}
	return m.highWater, nil
}

func (m *mockTable) SetHighWater(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return m.markErr
	}
	m.highWater = max(m.highWater, id)
	return nil
}

func (m *mockTable) snapshot() []secondary.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]secondary.Row, len(m.rows))
	for i, r := range m.rows {
		out[i] = slices.Clone(r)
	}
	return out
}

func (m *mockTable) seedShift(r *secondary.ShiftRecord) {
	m.rows = append(m.rows, db.EncodeShift(r))
}

func (m *mockTable) seedRequest(r *secondary.RequestRecord) {
	m.rows = append(m.rows, db.EncodeRequest(r))
}

func (m *mockTable) seedWorker(r *secondary.WorkerRecord) {
	m.rows = append(m.rows, db.EncodeWorker(r))
}

// ============================================================================
// Mock Lock Manager
// ============================================================================

// Ensure mockLockManager implements the interface
var _ secondary.LockManager = (*mockLockManager)(nil)

// mockLockManager implements secondary.LockManager for testing. A second
// acquire of a held scope fails instead of blocking, which surfaces
// accidental reentrant locking as a test failure rather than a hang.
type mockLockManager struct {
	mu         sync.Mutex
	held       map[string]bool
	acquired   []string
	acquireErr error
	releaseErr error
}

func newMockLockManager() *mockLockManager {
	return &mockLockManager{held: make(map[string]bool)}
}

func (m *mockLockManager) Acquire(ctx context.Context, scope string, timeout time.Duration) (secondary.Guard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.acquireErr != nil {
		return nil, m.acquireErr
	}
	if m.held[scope] {
		return nil, fmt.Errorf("scope %s acquired twice", scope)
	}
	m.held[scope] = true
	m.acquired = append(m.acquired, scope)
	return &mockGuard{locks: m, scope: scope}, nil
}

func (m *mockLockManager) isHeld(scope string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held[scope]
}

func (m *mockLockManager) acquireCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.acquired)
}

type mockGuard struct {
	locks *mockLockManager
	scope string
}

func (g *mockGuard) Release() error {
	g.locks.mu.Lock()
	defer g.locks.mu.Unlock()
	delete(g.locks.held, g.scope)
	return g.locks.releaseErr
}

// ============================================================================
// Clock
// ============================================================================

// testClock is a manually advanced clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(start time.Time) *testClock {
	return &testClock{now: start}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// at returns 2024-03-15 at the given time of day, UTC.
func at(hour, minute, second int) time.Time {
	return time.Date(2024, 3, 15, hour, minute, second, 0, time.UTC)
}

func testSettings(clock *testClock) Settings {
	return Settings{
		LockTimeout:     time.Second,
		RequestCooldown: 30 * time.Second,
		Location:        time.UTC,
		Now:             clock.Now,
	}
}
