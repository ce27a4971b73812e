package domain

import "math/big"

// RateDecimals is the fixed-point scale exchange rates are expressed at.
// A rate of 10^18 swaps one normalized unit of tokenIn for exactly one
// normalized unit of tokenOut.
const RateDecimals = 18

// RatePrecision is 10^RateDecimals as a big integer. Treat as read-only.
var RatePrecision = new(big.Int).Exp(big.NewInt(10), big.NewInt(RateDecimals), nil)

// Rate source labels recorded on rate updates.
const (
	RateSourceManual = "manual"
	RateSourceOracle = "oracle"
)

// Rate is a directional exchange rate for an ordered token pair.
// An absent entry means "no rate"; a stored zero disables the pair.
// Corresponds to the rates table in PostgreSQL.
type Rate struct {
	TokenIn   Address
	TokenOut  Address
	Value     *big.Int // fixed-point at RatePrecision
	Source    string   // "manual" | "oracle"
	UpdatedBy Address  // acting administrator
	UpdatedAt int64    // last update timestamp (ms)
}

// Clone returns a deep copy so store callers cannot alias stored state.
func (r *Rate) Clone() *Rate {
	if r == nil {
		return nil
	}
	clone := *r
	if r.Value != nil {
		clone.Value = new(big.Int).Set(r.Value)
	}
	return &clone
}
