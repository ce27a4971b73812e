package memory

import (
	"context"
	"sync"

	"pegswap/internal/storage"
)

// StateStore is an in-memory implementation of storage.StateStore.
type StateStore struct {
	mu             sync.RWMutex
	paused         bool
	oracleEndpoint string
}

// NewStateStore creates a new in-memory state store. The engine starts
// unpaused with no oracle configured.
func NewStateStore() *StateStore {
	return &StateStore{}
}

// Paused reports the circuit-breaker state.
func (s *StateStore) Paused(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paused, nil
}

// SetPaused writes the circuit-breaker state.
func (s *StateStore) SetPaused(_ context.Context, paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = paused
	return nil
}

// OracleEndpoint retrieves the configured oracle reference.
func (s *StateStore) OracleEndpoint(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.oracleEndpoint, nil
}

// SetOracleEndpoint overwrites the oracle reference.
func (s *StateStore) SetOracleEndpoint(_ context.Context, endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.oracleEndpoint = endpoint
	return nil
}

var _ storage.StateStore = (*StateStore)(nil)
