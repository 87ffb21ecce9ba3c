package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/example/shiftdesk/internal/ports/secondary"
)

// DefaultLockTimeout bounds lock acquisition when the caller passes zero.
const DefaultLockTimeout = 10 * time.Second

// LockExt is the file extension of lock files.
const LockExt = ".lock"

const defaultRetryDelay = 25 * time.Millisecond

var scopePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// LockManager implements secondary.LockManager with one advisory lock file
// per scope (<dir>/<scope>.lock). Goroutines of this process queue on an
// in-process semaphore first, then on flock(2) against other processes.
type LockManager struct {
	dir        string
	retryDelay time.Duration

	mu     sync.Mutex
	scopes map[string]chan struct{}
}

// NewLockManager creates a lock manager keeping lock files in dir.
func NewLockManager(dir string) (*LockManager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	return &LockManager{
		dir:        dir,
		retryDelay: defaultRetryDelay,
		scopes:     make(map[string]chan struct{}),
	}, nil
}

// LockPath returns the lock file used for scope.
func (m *LockManager) LockPath(scope string) string {
	return filepath.Join(m.dir, scope+LockExt)
}

// Acquire takes the lock for scope, waiting at most timeout.
// Locks are not reentrant: acquiring a held scope again from the same
// goroutine waits for the timeout and fails.
func (m *LockManager) Acquire(ctx context.Context, scope string, timeout time.Duration) (secondary.Guard, error) {
	if !scopePattern.MatchString(scope) {
		return nil, fmt.Errorf("invalid lock scope %q", scope)
	}
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sem := m.semaphore(scope)
	select {
	case sem <- struct{}{}:
	case <-waitCtx.Done():
		return nil, m.waitError(ctx, scope, timeout)
	}

	fl := flock.New(m.LockPath(scope))
	locked, err := fl.TryLockContext(waitCtx, m.retryDelay)
	if err != nil || !locked {
		<-sem
		if waitCtx.Err() != nil {
			return nil, m.waitError(ctx, scope, timeout)
		}
		return nil, &secondary.StorageError{Op: "lock", Table: scope, Err: err}
	}

	return &fileGuard{flock: fl, sem: sem}, nil
}

// waitError distinguishes a caller cancellation from an exhausted bound.
func (m *LockManager) waitError(ctx context.Context, scope string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("acquire lock %s: %w", scope, err)
	}
	return fmt.Errorf("%w: %s not acquired within %s", secondary.ErrLockTimeout, scope, timeout)
}

func (m *LockManager) semaphore(scope string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	sem, ok := m.scopes[scope]
	if !ok {
		sem = make(chan struct{}, 1)
		m.scopes[scope] = sem
	}
	return sem
}

// fileGuard releases the file lock, then the in-process semaphore.
type fileGuard struct {
	once  sync.Once
	flock *flock.Flock
	sem   chan struct{}
	err   error
}

// Release implements secondary.Guard.
func (g *fileGuard) Release() error {
	g.once.Do(func() {
		g.err = g.flock.Unlock()
		<-g.sem
	})
	return g.err
}

var _ secondary.LockManager = (*LockManager)(nil)
