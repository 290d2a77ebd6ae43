// internal/superio/siotest/lock.go
package siotest

import (
	"sync"

	"github.com/tamzrod/superio-serial/internal/superio"
)

// Lock is an in-process superio.Locker.
type Lock struct {
	mu       sync.Mutex
	held     bool
	acquired int
	released int
}

// TryLock implements superio.Locker.
func (l *Lock) TryLock() (func() error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held {
		return nil, superio.ErrBusy
	}
	l.held = true
	l.acquired++

	var once sync.Once
	return func() error {
		once.Do(func() {
			l.mu.Lock()
			l.held = false
			l.released++
			l.mu.Unlock()
		})
		return nil
	}, nil
}

// Hold takes the lock on behalf of a foreign driver until the returned
// func is called. It panics if the lock is already held.
func (l *Lock) Hold() (release func()) {
	unlock, err := l.TryLock()
	if err != nil {
		panic("siotest: Hold on a held lock")
	}
	return func() { _ = unlock() }
}

// Held reports whether the lock is currently held.
func (l *Lock) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held
}

// Acquired returns the number of successful acquisitions.
func (l *Lock) Acquired() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.acquired
}

// Released returns the number of releases.
func (l *Lock) Released() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.released
}
