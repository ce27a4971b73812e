package token

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"pegswap/internal/domain"
)

// ErrTransferFailed is returned when a token transfer reverts or reports
// a falsy success value. Both forms are the same hard failure: the engine
// never treats a failed transfer as a silent skip.
var ErrTransferFailed = errors.New("token: transfer failed")

// SafeTransfer executes Transfer and converts a falsy success report
// into a hard failure.
func SafeTransfer(ctx context.Context, t Token, to domain.Address, amount *big.Int) error {
	ok, err := t.Transfer(ctx, to, amount)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTransferFailed, t.Address(), err)
	}
	if !ok {
		return fmt.Errorf("%w: %s returned false", ErrTransferFailed, t.Address())
	}
	return nil
}

// SafeTransferFrom executes TransferFrom with the same discipline.
func SafeTransferFrom(ctx context.Context, t Token, from, to domain.Address, amount *big.Int) error {
	ok, err := t.TransferFrom(ctx, from, to, amount)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTransferFailed, t.Address(), err)
	}
	if !ok {
		return fmt.Errorf("%w: %s returned false", ErrTransferFailed, t.Address())
	}
	return nil
}
