package postgres

import (
	"context"
	"fmt"

	"pegswap/internal/domain"
	"pegswap/internal/storage"
)

// LiquidityEventStore implements storage.LiquidityEventStore using
// PostgreSQL.
type LiquidityEventStore struct {
	pool *Pool
}

// NewLiquidityEventStore creates a new LiquidityEventStore.
func NewLiquidityEventStore(pool *Pool) *LiquidityEventStore {
	return &LiquidityEventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LiquidityEventStore = (*LiquidityEventStore)(nil)

// Insert appends a liquidity event and assigns its ID.
func (s *LiquidityEventStore) Insert(ctx context.Context, event *domain.LiquidityEvent) error {
	if event == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO liquidity_events (token, amount, direction, actor, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := s.pool.QueryRow(ctx, query,
		event.Token.String(),
		bigIntText(event.Amount),
		event.Direction,
		event.Actor.String(),
		event.Timestamp,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert liquidity event: %w", err)
	}
	return nil
}

// GetByToken retrieves all events for a token, ordered by timestamp ASC.
func (s *LiquidityEventStore) GetByToken(ctx context.Context, token domain.Address) ([]*domain.LiquidityEvent, error) {
	query := `
		SELECT id, token, amount, direction, actor, timestamp, created_at
		FROM liquidity_events
		WHERE token = $1
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, token.String())
	if err != nil {
		return nil, fmt.Errorf("get liquidity events: %w", err)
	}
	defer rows.Close()

	var events []*domain.LiquidityEvent
	for rows.Next() {
		var event domain.LiquidityEvent
		var tok, amount, actor string

		err := rows.Scan(&event.ID, &tok, &amount, &event.Direction, &actor, &event.Timestamp, &event.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan liquidity event row: %w", err)
		}

		event.Token = domain.Address(tok)
		event.Actor = domain.Address(actor)
		if event.Amount, err = parseBigInt(amount); err != nil {
			return nil, err
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liquidity event rows: %w", err)
	}
	return events, nil
}
