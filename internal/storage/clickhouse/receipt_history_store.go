package clickhouse

import (
	"context"
	"fmt"
	"math/big"

	"pegswap/internal/domain"
)

// ReceiptHistoryStore is the append-only swap receipt history.
type ReceiptHistoryStore struct {
	conn *Conn
}

// NewReceiptHistoryStore creates a new ReceiptHistoryStore.
func NewReceiptHistoryStore(conn *Conn) *ReceiptHistoryStore {
	return &ReceiptHistoryStore{conn: conn}
}

// PairVolume aggregates swap activity over an ordered pair.
type PairVolume struct {
	Swaps     uint64
	AmountIn  *big.Int
	AmountOut *big.Int
}

// InsertBulk appends receipts in a single batch.
func (s *ReceiptHistoryStore) InsertBulk(ctx context.Context, receipts []*domain.SwapReceipt) error {
	if len(receipts) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO swap_receipts (
			caller, token_in, token_out, amount_in, amount_out, rate, timestamp_ms
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range receipts {
		err = batch.Append(
			r.Caller.String(), r.TokenIn.String(), r.TokenOut.String(),
			bigOrZero(r.AmountIn), bigOrZero(r.AmountOut), bigOrZero(r.Rate),
			uint64(r.Timestamp),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// Insert appends a single receipt.
func (s *ReceiptHistoryStore) Insert(ctx context.Context, receipt *domain.SwapReceipt) error {
	return s.InsertBulk(ctx, []*domain.SwapReceipt{receipt})
}

// GetByPair retrieves receipts for an ordered pair within [start, end]
// (inclusive, unix milliseconds), ordered by timestamp ASC.
func (s *ReceiptHistoryStore) GetByPair(ctx context.Context, tokenIn, tokenOut domain.Address, start, end int64) ([]*domain.SwapReceipt, error) {
	query := `
		SELECT caller, token_in, token_out, amount_in, amount_out, rate, timestamp_ms
		FROM swap_receipts
		WHERE token_in = ? AND token_out = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, tokenIn.String(), tokenOut.String(), uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by pair: %w", err)
	}
	defer rows.Close()

	return scanReceipts(rows)
}

// GetByCaller retrieves all receipts for a caller, ordered by timestamp ASC.
func (s *ReceiptHistoryStore) GetByCaller(ctx context.Context, caller domain.Address) ([]*domain.SwapReceipt, error) {
	query := `
		SELECT caller, token_in, token_out, amount_in, amount_out, rate, timestamp_ms
		FROM swap_receipts
		WHERE caller = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, caller.String())
	if err != nil {
		return nil, fmt.Errorf("query by caller: %w", err)
	}
	defer rows.Close()

	return scanReceipts(rows)
}

// VolumeByPair aggregates swap count and gross amounts for an ordered
// pair within [start, end] (inclusive, unix milliseconds).
func (s *ReceiptHistoryStore) VolumeByPair(ctx context.Context, tokenIn, tokenOut domain.Address, start, end int64) (*PairVolume, error) {
	query := `
		SELECT count(), sum(amount_in), sum(amount_out)
		FROM swap_receipts
		WHERE token_in = ? AND token_out = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
	`

	var volume PairVolume
	var amountIn, amountOut *big.Int
	err := s.conn.QueryRow(ctx, query, tokenIn.String(), tokenOut.String(), uint64(start), uint64(end)).
		Scan(&volume.Swaps, &amountIn, &amountOut)
	if err != nil {
		return nil, fmt.Errorf("aggregate pair volume: %w", err)
	}

	volume.AmountIn = bigOrZero(amountIn)
	volume.AmountOut = bigOrZero(amountOut)
	return &volume, nil
}

// chRows is the subset of driver rows the scanners need.
type chRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanReceipts(rows chRows) ([]*domain.SwapReceipt, error) {
	var receipts []*domain.SwapReceipt

	for rows.Next() {
		var r domain.SwapReceipt
		var caller, tokenIn, tokenOut string
		var timestampMs uint64
		var amountIn, amountOut, rate *big.Int

		err := rows.Scan(&caller, &tokenIn, &tokenOut, &amountIn, &amountOut, &rate, &timestampMs)
		if err != nil {
			return nil, fmt.Errorf("scan receipt row: %w", err)
		}

		r.Caller = domain.Address(caller)
		r.TokenIn = domain.Address(tokenIn)
		r.TokenOut = domain.Address(tokenOut)
		r.AmountIn = bigOrZero(amountIn)
		r.AmountOut = bigOrZero(amountOut)
		r.Rate = bigOrZero(rate)
		r.Timestamp = int64(timestampMs)
		receipts = append(receipts, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receipt rows: %w", err)
	}
	return receipts, nil
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
