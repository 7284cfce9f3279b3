// Package lockfile implements the cross-process advisory lock that
// serialises Saver writes against Uploader archival for a single watched
// directory.
package lockfile

import (
	"strings"

	"github.com/gofrs/flock"

	"github.com/lensai/edge-profiler/pkg/telemetryerrors"
)

// Lock wraps a single "<dir>_lock" sentinel file. It is safe to create a
// new Lock per acquisition; the underlying flock.Flock is re-opened each
// time, matching the one-shot acquire/release pattern of save_one and the
// upload per-iteration protocol.
type Lock struct {
	path string
	fl   *flock.Flock
}

// Path computes the sentinel path for a watched directory, stripping a
// trailing path separator before appending "_lock" so "foo/" and "foo"
// resolve to the same sentinel.
func Path(dir string) string {
	return strings.TrimRight(dir, "/\\") + "_lock"
}

// New returns a Lock bound to dir's sentinel file without acquiring it.
func New(dir string) *Lock {
	p := Path(dir)
	return &Lock{path: p, fl: flock.New(p)}
}

// Acquire blocks until the exclusive lock is held.
func (l *Lock) Acquire() error {
	if err := l.fl.Lock(); err != nil {
		return telemetryerrors.WrapFilesystemError(l.path, "flock", err)
	}
	return nil
}

// TryAcquire attempts the exclusive lock without blocking, returning false
// if it is already held elsewhere (used by the uploader, which skips a
// folder whose lock is held rather than waiting for it).
func (l *Lock) TryAcquire() (bool, error) {
	ok, err := l.fl.TryLock()
	if err != nil {
		return false, telemetryerrors.WrapFilesystemError(l.path, "flock", err)
	}
	return ok, nil
}

// Release drops the lock. Safe to call even if Acquire/TryAcquire never
// succeeded.
func (l *Lock) Release() error {
	if err := l.fl.Unlock(); err != nil {
		return telemetryerrors.WrapFilesystemError(l.path, "funlock", err)
	}
	return nil
}
