// internal/superio/lock_other.go

//go:build !unix

package superio

import "errors"

// DefaultLockFile names the lock on platforms without flock(2). It is
// never opened there.
const DefaultLockFile = "superio-2e.lock"

var errNoFlock = errors.New("superio: system-wide lock not available on this platform")

// FileLock is unavailable without flock(2); TryLock always fails.
type FileLock struct {
	path string
}

func NewFileLock(path string) *FileLock {
	if path == "" {
		path = DefaultLockFile
	}
	return &FileLock{path: path}
}

func (l *FileLock) Path() string { return l.path }

func (l *FileLock) TryLock() (func() error, error) {
	return nil, errNoFlock
}
