package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"pegswap/internal/domain"
	"pegswap/internal/storage"
)

// ReceiptStore implements storage.ReceiptStore using PostgreSQL.
type ReceiptStore struct {
	pool *Pool
}

// NewReceiptStore creates a new ReceiptStore.
func NewReceiptStore(pool *Pool) *ReceiptStore {
	return &ReceiptStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ReceiptStore = (*ReceiptStore)(nil)

// Insert appends a completed swap receipt and assigns its ID.
func (s *ReceiptStore) Insert(ctx context.Context, receipt *domain.SwapReceipt) error {
	if receipt == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO swap_receipts (caller, token_in, token_out, amount_in, amount_out, rate, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := s.pool.QueryRow(ctx, query,
		receipt.Caller.String(),
		receipt.TokenIn.String(),
		receipt.TokenOut.String(),
		bigIntText(receipt.AmountIn),
		bigIntText(receipt.AmountOut),
		bigIntText(receipt.Rate),
		receipt.Timestamp,
	).Scan(&receipt.ID, &receipt.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert receipt: %w", err)
	}
	return nil
}

// GetByCaller retrieves all receipts for a caller, ordered by timestamp ASC.
func (s *ReceiptStore) GetByCaller(ctx context.Context, caller domain.Address) ([]*domain.SwapReceipt, error) {
	query := `
		SELECT id, caller, token_in, token_out, amount_in, amount_out, rate, timestamp, created_at
		FROM swap_receipts
		WHERE caller = $1
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, caller.String())
	if err != nil {
		return nil, fmt.Errorf("get receipts by caller: %w", err)
	}
	defer rows.Close()

	return scanReceipts(rows)
}

// GetByPair retrieves all receipts for an ordered pair, ordered by timestamp ASC.
func (s *ReceiptStore) GetByPair(ctx context.Context, tokenIn, tokenOut domain.Address) ([]*domain.SwapReceipt, error) {
	query := `
		SELECT id, caller, token_in, token_out, amount_in, amount_out, rate, timestamp, created_at
		FROM swap_receipts
		WHERE token_in = $1 AND token_out = $2
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, tokenIn.String(), tokenOut.String())
	if err != nil {
		return nil, fmt.Errorf("get receipts by pair: %w", err)
	}
	defer rows.Close()

	return scanReceipts(rows)
}

func scanReceipts(rows pgx.Rows) ([]*domain.SwapReceipt, error) {
	var receipts []*domain.SwapReceipt

	for rows.Next() {
		var receipt domain.SwapReceipt
		var caller, tokenIn, tokenOut, amountIn, amountOut, rate string

		err := rows.Scan(
			&receipt.ID,
			&caller,
			&tokenIn,
			&tokenOut,
			&amountIn,
			&amountOut,
			&rate,
			&receipt.Timestamp,
			&receipt.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan receipt row: %w", err)
		}

		receipt.Caller = domain.Address(caller)
		receipt.TokenIn = domain.Address(tokenIn)
		receipt.TokenOut = domain.Address(tokenOut)
		if receipt.AmountIn, err = parseBigInt(amountIn); err != nil {
			return nil, err
		}
		if receipt.AmountOut, err = parseBigInt(amountOut); err != nil {
			return nil, err
		}
		if receipt.Rate, err = parseBigInt(rate); err != nil {
			return nil, err
		}

		receipts = append(receipts, &receipt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receipt rows: %w", err)
	}
	return receipts, nil
}
