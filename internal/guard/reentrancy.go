package guard

import (
	"errors"
	"sync/atomic"
)

// ErrReentrantCall is returned when the guarded section is entered while
// already executing.
var ErrReentrantCall = errors.New("guard: reentrant call")

// ReentrancyGuard is a single-flight lock around the swap critical
// section. Nested calls out of untrusted token code are equivalent to
// concurrent access to shared state even under a serialized execution
// model, so entering while locked fails instead of blocking.
type ReentrancyGuard struct {
	locked atomic.Bool
}

// NewReentrancyGuard creates an unlocked guard.
func NewReentrancyGuard() *ReentrancyGuard {
	return &ReentrancyGuard{}
}

// Enter acquires the lock or fails with ErrReentrantCall.
func (g *ReentrancyGuard) Enter() error {
	if !g.locked.CompareAndSwap(false, true) {
		return ErrReentrantCall
	}
	return nil
}

// Exit releases the lock. Callers must defer it immediately after a
// successful Enter so every exit path, including propagated failures
// from nested calls, releases the lock.
func (g *ReentrancyGuard) Exit() {
	g.locked.Store(false)
}
