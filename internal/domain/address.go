package domain

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// addressLen is the raw byte length of a ledger public key.
const addressLen = 32

// Address identifies an account or token contract on the host ledger.
// It is the base58 encoding of a 32-byte public key. The zero value is
// the null identity and never refers to a real account.
type Address string

// ZeroAddress is the null identity.
const ZeroAddress Address = ""

// IsZero reports whether the address is the null identity.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// Validate checks that the address decodes to exactly 32 bytes.
func (a Address) Validate() error {
	if a.IsZero() {
		return ErrZeroAddress
	}
	raw, err := base58.Decode(string(a))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(raw) != addressLen {
		return fmt.Errorf("%w: %d bytes", ErrInvalidAddress, len(raw))
	}
	return nil
}

// Bytes returns the decoded 32-byte form, or nil if the address is
// malformed.
func (a Address) Bytes() []byte {
	raw, err := base58.Decode(string(a))
	if err != nil || len(raw) != addressLen {
		return nil
	}
	return raw
}

func (a Address) String() string {
	return string(a)
}

// AddressFromBytes encodes a raw 32-byte public key.
func AddressFromBytes(raw []byte) (Address, error) {
	if len(raw) != addressLen {
		return ZeroAddress, fmt.Errorf("%w: %d bytes", ErrInvalidAddress, len(raw))
	}
	return Address(base58.Encode(raw)), nil
}

// ValidatePair enforces the token-pair preconditions shared by rate
// management and swap execution: both identities non-null and distinct.
func ValidatePair(tokenIn, tokenOut Address) error {
	if tokenIn.IsZero() || tokenOut.IsZero() {
		return ErrZeroAddress
	}
	if tokenIn == tokenOut {
		return ErrSameToken
	}
	return nil
}
