package domain

import "errors"

// Validation errors shared by rate management, swap execution and
// liquidity operations. All are terminal: callers never retry them.
var (
	// ErrZeroAddress is returned when an operation receives the null identity.
	ErrZeroAddress = errors.New("zero address")

	// ErrInvalidAddress is returned when an identity is not a base58-encoded
	// 32-byte key.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrSameToken is returned when a pair operation names the same token twice.
	ErrSameToken = errors.New("same token")

	// ErrZeroAmount is returned when an amount is nil, zero or negative.
	ErrZeroAmount = errors.New("zero amount")
)
