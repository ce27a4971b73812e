package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"pegswap/internal/domain"
	"pegswap/internal/storage"
)

// RateStore implements storage.RateStore using PostgreSQL.
type RateStore struct {
	pool *Pool
}

// NewRateStore creates a new RateStore.
func NewRateStore(pool *Pool) *RateStore {
	return &RateStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RateStore = (*RateStore)(nil)

// Get retrieves the stored rate for (tokenIn, tokenOut). Returns
// storage.ErrNotFound if the pair has never been written.
func (s *RateStore) Get(ctx context.Context, tokenIn, tokenOut domain.Address) (*domain.Rate, error) {
	query := `
		SELECT token_in, token_out, value, source, updated_by, updated_at
		FROM rates
		WHERE token_in = $1 AND token_out = $2
	`

	row := s.pool.QueryRow(ctx, query, tokenIn.String(), tokenOut.String())
	rate, err := scanRate(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get rate: %w", err)
	}
	return rate, nil
}

// Put overwrites the rate for its pair unconditionally, including to zero.
func (s *RateStore) Put(ctx context.Context, rate *domain.Rate) error {
	if rate == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO rates (token_in, token_out, value, source, updated_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (token_in, token_out) DO UPDATE SET
			value = EXCLUDED.value,
			source = EXCLUDED.source,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query,
		rate.TokenIn.String(),
		rate.TokenOut.String(),
		bigIntText(rate.Value),
		rate.Source,
		rate.UpdatedBy.String(),
		rate.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("put rate: %w", err)
	}
	return nil
}

// All retrieves every stored rate, ordered by (token_in, token_out).
func (s *RateStore) All(ctx context.Context) ([]*domain.Rate, error) {
	query := `
		SELECT token_in, token_out, value, source, updated_by, updated_at
		FROM rates
		ORDER BY token_in ASC, token_out ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list rates: %w", err)
	}
	defer rows.Close()

	var rates []*domain.Rate
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rate row: %w", err)
		}
		rates = append(rates, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rate rows: %w", err)
	}
	return rates, nil
}

func scanRate(row pgx.Row) (*domain.Rate, error) {
	var rate domain.Rate
	var tokenIn, tokenOut, value, updatedBy string

	if err := row.Scan(&tokenIn, &tokenOut, &value, &rate.Source, &updatedBy, &rate.UpdatedAt); err != nil {
		return nil, err
	}

	parsed, err := parseBigInt(value)
	if err != nil {
		return nil, err
	}
	rate.TokenIn = domain.Address(tokenIn)
	rate.TokenOut = domain.Address(tokenOut)
	rate.Value = parsed
	rate.UpdatedBy = domain.Address(updatedBy)
	return &rate, nil
}
