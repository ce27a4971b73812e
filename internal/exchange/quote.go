package exchange

import (
	"math/big"

	"pegswap/internal/domain"
	"pegswap/internal/precision"
)

// computeOut prices amountIn at the fixed-point rate. The input is
// normalized to the internal precision, multiplied by the rate, divided
// by the rate precision, then denormalized to the output token's
// precision. Both downscales truncate toward zero.
func computeOut(amountIn *big.Int, decimalsIn, decimalsOut uint8, rate *big.Int) *big.Int {
	normalized := precision.Normalize(amountIn, decimalsIn)
	out := new(big.Int).Mul(normalized, rate)
	out.Quo(out, domain.RatePrecision)
	return precision.Denormalize(out, decimalsOut)
}
