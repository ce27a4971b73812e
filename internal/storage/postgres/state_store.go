package postgres

import (
	"context"
	"fmt"

	"pegswap/internal/storage"
)

// StateStore implements storage.StateStore using PostgreSQL. The engine
// state lives in a single guarded row so a restarted server resumes
// where it left off.
type StateStore struct {
	pool *Pool
}

// NewStateStore creates a new StateStore.
func NewStateStore(pool *Pool) *StateStore {
	return &StateStore{pool: pool}
}

// Compile-time interface check.
var _ storage.StateStore = (*StateStore)(nil)

// Paused reports the circuit-breaker state. Defaults to false when the
// row has never been written.
func (s *StateStore) Paused(ctx context.Context) (bool, error) {
	query := `SELECT paused FROM engine_state WHERE id = 1`

	var paused bool
	err := s.pool.QueryRow(ctx, query).Scan(&paused)
	if isNotFoundError(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read pause state: %w", err)
	}
	return paused, nil
}

// SetPaused writes the circuit-breaker state.
func (s *StateStore) SetPaused(ctx context.Context, paused bool) error {
	query := `
		INSERT INTO engine_state (id, paused)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET paused = EXCLUDED.paused
	`

	if _, err := s.pool.Exec(ctx, query, paused); err != nil {
		return fmt.Errorf("write pause state: %w", err)
	}
	return nil
}

// OracleEndpoint retrieves the configured oracle reference, "" when no
// oracle has been configured.
func (s *StateStore) OracleEndpoint(ctx context.Context) (string, error) {
	query := `SELECT oracle_endpoint FROM engine_state WHERE id = 1`

	var endpoint string
	err := s.pool.QueryRow(ctx, query).Scan(&endpoint)
	if isNotFoundError(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read oracle endpoint: %w", err)
	}
	return endpoint, nil
}

// SetOracleEndpoint overwrites the oracle reference.
func (s *StateStore) SetOracleEndpoint(ctx context.Context, endpoint string) error {
	query := `
		INSERT INTO engine_state (id, oracle_endpoint)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET oracle_endpoint = EXCLUDED.oracle_endpoint
	`

	if _, err := s.pool.Exec(ctx, query, endpoint); err != nil {
		return fmt.Errorf("write oracle endpoint: %w", err)
	}
	return nil
}
