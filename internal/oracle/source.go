// Package oracle provides rate sources backed by an external price
// oracle. Quotes arrive as signed attestations; nothing an oracle says
// is trusted until the signature verifies against a known signer.
package oracle

import (
	"context"
	"errors"
	"math/big"

	"pegswap/internal/domain"
)

var (
	// ErrRateUnavailable means the oracle has no quote for the pair.
	ErrRateUnavailable = errors.New("oracle: rate unavailable")
	// ErrStaleQuote means the quote timestamp is outside the freshness
	// window.
	ErrStaleQuote = errors.New("oracle: stale quote")
	// ErrUntrustedSigner means the attestation signer is not in the
	// trusted set.
	ErrUntrustedSigner = errors.New("oracle: untrusted signer")
	// ErrBadSignature means the attestation signature does not verify.
	ErrBadSignature = errors.New("oracle: bad signature")
)

// Source answers rate queries for token pairs. Rates use the same
// fixed-point scale as the engine's rate registry.
type Source interface {
	// Rate returns the oracle rate for the pair. ErrRateUnavailable when
	// the oracle has no quote; any other error means the quote exists
	// but failed verification.
	Rate(ctx context.Context, tokenIn, tokenOut domain.Address) (*big.Int, error)
}
