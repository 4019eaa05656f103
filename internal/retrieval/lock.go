package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockFileName   = "ingest.lock"
	lockRetryDelay = 100 * time.Millisecond
)

// StoreLock is an inter-process lock on a vector store directory.
type StoreLock struct {
	fileLock   *flock.Flock
	lockPath   string
	acquiredAt time.Time
	mu         sync.Mutex
}

// AcquireStoreLock blocks until the lock on dir is held, timeout elapses or ctx ends.
func AcquireStoreLock(ctx context.Context, dir string, timeout time.Duration) (*StoreLock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	lockPath := filepath.Join(dir, lockFileName)
	fileLock := flock.New(lockPath)

	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil && ctx.Err() != nil {
		return nil, fmt.Errorf("lock acquisition cancelled: %w", ctx.Err())
	}
	if err != nil || !locked {
		return nil, fmt.Errorf("vector store %s is locked by another ingester (timeout after %v)", dir, timeout)
	}

	sl := &StoreLock{
		fileLock:   fileLock,
		lockPath:   lockPath,
		acquiredAt: time.Now(),
	}
	slog.Debug("Store lock acquired", "path", lockPath)
	return sl, nil
}

func (sl *StoreLock) Unlock() {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if sl.fileLock == nil {
		return
	}

	if err := sl.fileLock.Unlock(); err != nil {
		slog.Error("Failed to release store lock", "path", sl.lockPath, "error", err)
	} else {
		slog.Debug("Store lock released", "path", sl.lockPath, "held_duration_ms", time.Since(sl.acquiredAt).Milliseconds())
	}

	sl.fileLock = nil
}

func (sl *StoreLock) IsLocked() bool {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.fileLock != nil
}
