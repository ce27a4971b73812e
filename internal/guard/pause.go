// Package guard holds the two execution guards protecting the swap
// engine: the pause circuit breaker and the reentrancy lock.
package guard

import (
	"context"
	"errors"
	"fmt"

	"pegswap/internal/storage"
)

var (
	// ErrPaused is returned when a swap entry point is invoked while the
	// circuit breaker is engaged.
	ErrPaused = errors.New("guard: paused")

	// ErrAlreadyPaused is returned when pausing an already-paused engine.
	ErrAlreadyPaused = errors.New("guard: already paused")

	// ErrNotPaused is returned when unpausing an already-active engine.
	ErrNotPaused = errors.New("guard: not paused")
)

// PauseGuard is the circuit breaker gating swap entry points. The flag
// is durable: a restarted server resumes in its last state.
type PauseGuard struct {
	state storage.StateStore
}

// NewPauseGuard creates a guard over the supplied state store.
func NewPauseGuard(state storage.StateStore) *PauseGuard {
	return &PauseGuard{state: state}
}

// Paused reports the current circuit-breaker state.
func (g *PauseGuard) Paused(ctx context.Context) (bool, error) {
	return g.state.Paused(ctx)
}

// RequireActive fails with ErrPaused when the breaker is engaged.
func (g *PauseGuard) RequireActive(ctx context.Context) error {
	paused, err := g.state.Paused(ctx)
	if err != nil {
		return fmt.Errorf("read pause state: %w", err)
	}
	if paused {
		return ErrPaused
	}
	return nil
}

// Pause engages the breaker. Pausing while paused is an error, not a
// no-op.
func (g *PauseGuard) Pause(ctx context.Context) error {
	paused, err := g.state.Paused(ctx)
	if err != nil {
		return fmt.Errorf("read pause state: %w", err)
	}
	if paused {
		return ErrAlreadyPaused
	}
	return g.state.SetPaused(ctx, true)
}

// Unpause releases the breaker. Unpausing while active is an error.
func (g *PauseGuard) Unpause(ctx context.Context) error {
	paused, err := g.state.Paused(ctx)
	if err != nil {
		return fmt.Errorf("read pause state: %w", err)
	}
	if !paused {
		return ErrNotPaused
	}
	return g.state.SetPaused(ctx, false)
}
