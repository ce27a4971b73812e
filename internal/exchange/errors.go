package exchange

import (
	"errors"
	"fmt"
	"math/big"

	"pegswap/internal/domain"
)

// Sentinels every typed execution error unwraps to. All of them are
// terminal: a failed swap performs no partial work.
var (
	ErrRateNotSet               = errors.New("exchange: rate not set")
	ErrDeadlineExpired          = errors.New("exchange: deadline expired")
	ErrSlippageExceeded         = errors.New("exchange: slippage exceeded")
	ErrInsufficientInputBalance = errors.New("exchange: insufficient input balance")
	ErrInsufficientLiquidity    = errors.New("exchange: insufficient liquidity")
	ErrBalanceMismatch          = errors.New("exchange: balance mismatch")
)

// RateNotSetError reports a swap against a pair with no usable rate,
// covering both an absent entry and a stored zero.
type RateNotSetError struct {
	TokenIn  domain.Address
	TokenOut domain.Address
}

func (e *RateNotSetError) Error() string {
	return fmt.Sprintf("exchange: no rate for %s/%s", e.TokenIn, e.TokenOut)
}

func (e *RateNotSetError) Unwrap() error { return ErrRateNotSet }

// DeadlineError reports a swap submitted after its deadline. Times are
// unix milliseconds.
type DeadlineError struct {
	Deadline int64
	Observed int64
}

func (e *DeadlineError) Error() string {
	return fmt.Sprintf("exchange: deadline %d passed at %d", e.Deadline, e.Observed)
}

func (e *DeadlineError) Unwrap() error { return ErrDeadlineExpired }

// SlippageError reports a computed output below the caller's floor.
type SlippageError struct {
	Expected      *big.Int
	MinAcceptable *big.Int
}

func (e *SlippageError) Error() string {
	return fmt.Sprintf("exchange: output %s below minimum %s", e.Expected, e.MinAcceptable)
}

func (e *SlippageError) Unwrap() error { return ErrSlippageExceeded }

// InsufficientBalanceError reports a pre-transfer snapshot below the
// required amount, on either side of the swap.
type InsufficientBalanceError struct {
	Token    domain.Address
	Account  domain.Address
	Balance  *big.Int
	Required *big.Int
	// Liquidity distinguishes the treasury output side from the caller
	// input side.
	Liquidity bool
}

func (e *InsufficientBalanceError) Error() string {
	side := "input balance"
	if e.Liquidity {
		side = "liquidity"
	}
	return fmt.Sprintf("exchange: insufficient %s: %s holds %s of %s, need %s",
		side, e.Account, e.Balance, e.Token, e.Required)
}

func (e *InsufficientBalanceError) Unwrap() error {
	if e.Liquidity {
		return ErrInsufficientLiquidity
	}
	return ErrInsufficientInputBalance
}

// Reconciliation sides.
const (
	SideInput  = "input"
	SideOutput = "output"
)

// BalanceMismatchError reports a post-transfer balance that moved by
// anything other than the exact expected delta. The token lied.
type BalanceMismatchError struct {
	Token    domain.Address
	Side     string // SideInput | SideOutput
	Before   *big.Int
	After    *big.Int
	Expected *big.Int
}

func (e *BalanceMismatchError) Error() string {
	return fmt.Sprintf("exchange: %s balance mismatch on %s: before %s, after %s, expected %s",
		e.Side, e.Token, e.Before, e.After, e.Expected)
}

func (e *BalanceMismatchError) Unwrap() error { return ErrBalanceMismatch }
