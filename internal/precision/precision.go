// Package precision converts token amounts between a token's native
// decimal precision and the engine's fixed internal precision.
//
// Rounding policy: scaling down truncates toward zero in both conversion
// directions, so any precision loss favors the engine. Nothing ever
// rounds upward.
package precision

import (
	"context"
	"math/big"
)

// NormalizedDecimals is the shared internal precision amounts are scaled
// to before rate arithmetic.
const NormalizedDecimals = 18

// DefaultDecimals is assumed for tokens whose decimals query fails.
const DefaultDecimals = 18

// DecimalsProber is the optional metadata capability of a token
// collaborator. Implementations may be missing the capability entirely
// and report an error on every call.
type DecimalsProber interface {
	Decimals(ctx context.Context) (uint8, error)
}

// Resolve queries the token's declared decimal precision, falling back
// to DefaultDecimals on any failure. The collaborator's failure never
// propagates.
func Resolve(ctx context.Context, token DecimalsProber) uint8 {
	if token == nil {
		return DefaultDecimals
	}
	decimals, err := token.Decimals(ctx)
	if err != nil {
		return DefaultDecimals
	}
	return decimals
}

// Normalize converts an amount from its native precision to
// NormalizedDecimals. Sources above 18 decimals lose their excess
// precision by truncation; sources below scale up exactly.
func Normalize(amount *big.Int, decimals uint8) *big.Int {
	return rescale(amount, decimals, NormalizedDecimals)
}

// Denormalize converts an amount from NormalizedDecimals to the
// destination token's native precision, truncating on downscale.
func Denormalize(amount *big.Int, decimals uint8) *big.Int {
	return rescale(amount, NormalizedDecimals, decimals)
}

func rescale(amount *big.Int, from, to uint8) *big.Int {
	result := new(big.Int)
	if amount == nil {
		return result
	}
	result.Set(amount)
	switch {
	case from > to:
		result.Quo(result, pow10(from-to))
	case from < to:
		result.Mul(result, pow10(to-from))
	}
	return result
}

func pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
