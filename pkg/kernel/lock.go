// SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 100 * time.Millisecond

// acquireLock takes an exclusive lock on path and returns the function releasing it.
func acquireLock(ctx context.Context, path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, ErrLockFailed.Wrap(err, "failed to create directory for lock file %q", path)
	}

	fileLock := flock.New(path)
	locked, err := fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, ErrLockFailed.Wrap(err, "failed to acquire lock %q", path)
	}
	if !locked {
		return nil, ErrLockFailed.New("lock %q is held by another process", path)
	}

	return func() {
		_ = fileLock.Unlock()
	}, nil
}
