// internal/superio/lock_unix.go

//go:build unix

package superio

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// DefaultLockFile is the lock shared by every process driving the 0x2E pair.
const DefaultLockFile = "/run/lock/superio-2e.lock"

// FileLock is a system-wide exclusive lock backed by flock(2).
// Each successful TryLock owns its own open file description, so two
// holders in the same process still exclude each other.
type FileLock struct {
	path string
}

// NewFileLock returns a lock on path. The file is created on first use.
func NewFileLock(path string) *FileLock {
	if path == "" {
		path = DefaultLockFile
	}
	return &FileLock{path: path}
}

// Path returns the lock file path.
func (l *FileLock) Path() string { return l.path }

// TryLock implements Locker.
func (l *FileLock) TryLock() (func() error, error) {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("superio: open lock %s: %w", l.path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrBusy
		}
		return nil, fmt.Errorf("superio: flock %s: %w", l.path, err)
	}

	var once sync.Once
	var uerr error
	unlock := func() error {
		once.Do(func() {
			uerr = unix.Flock(int(f.Fd()), unix.LOCK_UN)
			if cerr := f.Close(); uerr == nil {
				uerr = cerr
			}
		})
		return uerr
	}
	return unlock, nil
}
