package domain

import "math/big"

// Liquidity movement directions.
const (
	LiquidityDirectionFund     = "fund"
	LiquidityDirectionWithdraw = "withdraw"
)

// LiquidityEvent records an administrator moving reserves into or out of
// the engine treasury. Corresponds to the liquidity_events table in
// PostgreSQL.
type LiquidityEvent struct {
	ID        int64 // BIGSERIAL primary key
	Token     Address
	Amount    *big.Int // native token precision
	Direction string   // "fund" | "withdraw"
	Actor     Address  // acting administrator
	Timestamp int64    // execution time (ms)
	CreatedAt int64    // record creation timestamp (ms)
}

// Clone returns a deep copy of the event.
func (e *LiquidityEvent) Clone() *LiquidityEvent {
	if e == nil {
		return nil
	}
	clone := *e
	if e.Amount != nil {
		clone.Amount = new(big.Int).Set(e.Amount)
	}
	return &clone
}
