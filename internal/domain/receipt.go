package domain

import "math/big"

// SwapReceipt is the durable record of a completed swap.
// Corresponds to the swap_receipts table in PostgreSQL and the
// swap_receipts history table in ClickHouse.
type SwapReceipt struct {
	ID        int64 // BIGSERIAL primary key
	Caller    Address
	TokenIn   Address
	TokenOut  Address
	AmountIn  *big.Int // native tokenIn precision
	AmountOut *big.Int // native tokenOut precision
	Rate      *big.Int // rate used, at RatePrecision
	Timestamp int64    // execution time (ms)
	CreatedAt int64    // record creation timestamp (ms)
}

// Clone returns a deep copy of the receipt.
func (r *SwapReceipt) Clone() *SwapReceipt {
	if r == nil {
		return nil
	}
	clone := *r
	if r.AmountIn != nil {
		clone.AmountIn = new(big.Int).Set(r.AmountIn)
	}
	if r.AmountOut != nil {
		clone.AmountOut = new(big.Int).Set(r.AmountOut)
	}
	if r.Rate != nil {
		clone.Rate = new(big.Int).Set(r.Rate)
	}
	return &clone
}
