// Package token defines the capability boundary between the engine and
// external fungible-token contracts.
package token

import (
	"context"
	"math/big"

	"pegswap/internal/domain"
)

// Token is the capability set the engine requires from an external token
// contract. Implementations are untrusted: every call is fallible and
// every return value is attacker-controlled. The engine relies on nothing
// beyond the minimal balance-query contract and verifies transfer effects
// through balance snapshots.
type Token interface {
	// Address returns the token contract identity.
	Address() domain.Address

	// BalanceOf reports the token's claimed balance for account.
	BalanceOf(ctx context.Context, account domain.Address) (*big.Int, error)

	// Transfer moves amount from the engine treasury to `to`. A false
	// result without an error means the token reported failure.
	Transfer(ctx context.Context, to domain.Address, amount *big.Int) (bool, error)

	// TransferFrom moves amount from `from` to `to` against a
	// pre-approved allowance.
	TransferFrom(ctx context.Context, from, to domain.Address, amount *big.Int) (bool, error)

	// Decimals reports the token's declared precision. The capability is
	// optional; callers tolerate failure (see precision.Resolve).
	Decimals(ctx context.Context) (uint8, error)
}

// Resolver binds token contract identities to Token implementations.
type Resolver interface {
	Token(address domain.Address) Token
}
