package mirror

import (
	"context"
	"os"
	"time"

	"github.com/gofrs/flock"
	platformerrors "github.com/jmgilman/go/errors"
)

// lockRetryDelay is how often a contended lock is retried.
const lockRetryDelay = 100 * time.Millisecond

// lockSuffix is appended to a locked path to name its lock file.
const lockSuffix = ".lock"

// DefaultLockTimeout bounds how long Acquire waits for another process or
// goroutine working on the same mirror.
const DefaultLockTimeout = 2 * time.Minute

// lockPath takes the advisory lock path+".lock", waiting at most timeout
// (or until ctx is done). The returned function releases it.
//
// Locks are per open file, so goroutines of one process exclude each other
// just like separate processes do. The lock file may be removed while held;
// a waiter that then wins the removed file starts over on a fresh one.
func lockPath(ctx context.Context, path string, timeout time.Duration) (func(), error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	for {
		fl := flock.New(path + lockSuffix)

		locked, err := fl.TryLockContext(ctx, lockRetryDelay)
		if err != nil {
			return nil, platformerrors.Wrapf(err, platformerrors.CodeTimeout, "failed to lock %s", path)
		}
		if !locked {
			return nil, platformerrors.Newf(platformerrors.CodeTimeout, "timed out locking %s", path)
		}

		if stillLinked(fl) {
			return func() { _ = fl.Unlock() }, nil
		}
		_ = fl.Unlock()
	}
}

// stillLinked reports whether the locked file is still the one at its path.
func stillLinked(fl *flock.Flock) bool {
	held, err := fl.Stat()
	if err != nil {
		return false
	}

	current, err := os.Stat(fl.Path())
	if err != nil {
		return false
	}

	return os.SameFile(held, current)
}
