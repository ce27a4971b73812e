// Package exchange implements swap execution against the treasury at
// admin-fixed rates. Token contracts are treated as hostile: transfer
// effects are verified through balance snapshots, and a swap either
// completes exactly as priced or fails without partial effect.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"pegswap/internal/access"
	"pegswap/internal/domain"
	"pegswap/internal/guard"
	"pegswap/internal/observability"
	"pegswap/internal/precision"
	"pegswap/internal/rates"
	"pegswap/internal/storage"
	"pegswap/internal/token"
)

// Options configures an Engine. Treasury, Roles, Rates, Pause, Tokens
// and Receipts are required.
type Options struct {
	// Treasury is the account holding swap liquidity on every token.
	Treasury domain.Address
	Roles    *access.Controller
	Rates    *rates.Registry
	Pause    *guard.PauseGuard
	Tokens   token.Resolver
	Receipts storage.ReceiptStore
	// Liquidity receives the treasury funding log. Optional.
	Liquidity storage.LiquidityEventStore
	Emitter   domain.Emitter
	Logger    *log.Logger
}

// Engine is the swap execution engine.
type Engine struct {
	treasury  domain.Address
	roles     *access.Controller
	rates     *rates.Registry
	pause     *guard.PauseGuard
	lock      *guard.ReentrancyGuard
	tokens    token.Resolver
	receipts  storage.ReceiptStore
	liquidity storage.LiquidityEventStore
	emitter   domain.Emitter
	logger    *log.Logger
	now       func() time.Time
}

// NewEngine creates an engine.
func NewEngine(opts Options) (*Engine, error) {
	if err := opts.Treasury.Validate(); err != nil {
		return nil, fmt.Errorf("treasury: %w", err)
	}
	if opts.Roles == nil || opts.Rates == nil || opts.Pause == nil || opts.Tokens == nil || opts.Receipts == nil {
		return nil, errors.New("exchange: missing required dependency")
	}
	if opts.Emitter == nil {
		opts.Emitter = domain.NopEmitter{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &Engine{
		treasury:  opts.Treasury,
		roles:     opts.Roles,
		rates:     opts.Rates,
		pause:     opts.Pause,
		lock:      guard.NewReentrancyGuard(),
		tokens:    opts.Tokens,
		receipts:  opts.Receipts,
		liquidity: opts.Liquidity,
		emitter:   opts.Emitter,
		logger:    opts.Logger,
		now:       time.Now,
	}, nil
}

// SetClock overrides the engine clock, primarily for deterministic
// testing.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Treasury reports the treasury account.
func (e *Engine) Treasury() domain.Address {
	return e.treasury
}

// Swap exchanges amountIn of tokenIn for tokenOut with no deadline.
func (e *Engine) Swap(ctx context.Context, caller, tokenIn, tokenOut domain.Address, amountIn, minAmountOut *big.Int) (*domain.SwapReceipt, error) {
	return e.SwapWithDeadline(ctx, caller, tokenIn, tokenOut, amountIn, minAmountOut, 0)
}

// SwapWithDeadline exchanges amountIn of tokenIn for tokenOut, failing
// if executed after deadline (unix milliseconds; zero means unbounded).
func (e *Engine) SwapWithDeadline(ctx context.Context, caller, tokenIn, tokenOut domain.Address, amountIn, minAmountOut *big.Int, deadline int64) (*domain.SwapReceipt, error) {
	if err := e.pause.RequireActive(ctx); err != nil {
		observability.RecordPausedRejected()
		observability.RecordSwapFailed("paused")
		return nil, err
	}
	if err := e.roles.Require(ctx, caller, domain.RoleExchanger); err != nil {
		observability.RecordSwapFailed("unauthorized")
		return nil, err
	}
	if err := e.lock.Enter(); err != nil {
		observability.RecordReentrancyRejected()
		observability.RecordSwapFailed("reentrancy")
		return nil, err
	}
	defer e.lock.Exit()

	started := e.now()
	receipt, err := e.swapLocked(ctx, caller, tokenIn, tokenOut, amountIn, minAmountOut, deadline)
	if err != nil {
		observability.RecordSwapFailed(failReason(err))
		e.logger.Printf("[exchange] swap %s/%s by %s rejected: %v", tokenIn, tokenOut, caller, err)
		return nil, err
	}

	observability.RecordSwapExecuted(e.now().Sub(started).Seconds())
	return receipt, nil
}

func (e *Engine) swapLocked(ctx context.Context, caller, tokenIn, tokenOut domain.Address, amountIn, minAmountOut *big.Int, deadline int64) (*domain.SwapReceipt, error) {
	nowMs := e.now().UnixMilli()
	if deadline != 0 && nowMs > deadline {
		return nil, &DeadlineError{Deadline: deadline, Observed: nowMs}
	}
	if err := domain.ValidatePair(tokenIn, tokenOut); err != nil {
		return nil, err
	}
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, domain.ErrZeroAmount
	}

	rate, err := e.lookupRate(ctx, tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}

	in := e.tokens.Token(tokenIn)
	out := e.tokens.Token(tokenOut)

	amountOut := computeOut(amountIn, precision.Resolve(ctx, in), precision.Resolve(ctx, out), rate)
	if amountOut.Sign() == 0 {
		return nil, fmt.Errorf("computed output: %w", domain.ErrZeroAmount)
	}
	if minAmountOut != nil && amountOut.Cmp(minAmountOut) < 0 {
		return nil, &SlippageError{Expected: amountOut, MinAcceptable: minAmountOut}
	}

	// Pre-transfer snapshots. The caller must cover the input and the
	// treasury must cover the output before anything moves.
	callerIn, err := in.BalanceOf(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("snapshot caller balance: %w", err)
	}
	if callerIn.Cmp(amountIn) < 0 {
		return nil, &InsufficientBalanceError{Token: tokenIn, Account: caller, Balance: callerIn, Required: amountIn}
	}
	treasuryInBefore, err := in.BalanceOf(ctx, e.treasury)
	if err != nil {
		return nil, fmt.Errorf("snapshot treasury input balance: %w", err)
	}
	treasuryOutBefore, err := out.BalanceOf(ctx, e.treasury)
	if err != nil {
		return nil, fmt.Errorf("snapshot treasury output balance: %w", err)
	}
	if treasuryOutBefore.Cmp(amountOut) < 0 {
		return nil, &InsufficientBalanceError{Token: tokenOut, Account: e.treasury, Balance: treasuryOutBefore, Required: amountOut, Liquidity: true}
	}
	callerOutBefore, err := out.BalanceOf(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("snapshot caller output balance: %w", err)
	}

	// Transfers are reconciled per leg against the caller's observed
	// deltas, input before output: an input token that lied about
	// settling never triggers the outbound payment. The treasury's
	// deltas are held to the same exact amounts, so a token that keeps
	// one side honest while skimming the other still fails. Fee-on-
	// transfer tokens, rebasing tokens and outright liars all surface
	// as an exact-delta violation.
	if err := token.SafeTransferFrom(ctx, in, caller, e.treasury, amountIn); err != nil {
		return nil, err
	}
	callerInAfter, err := in.BalanceOf(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("reconcile caller input balance: %w", err)
	}
	expectedCallerIn := new(big.Int).Sub(callerIn, amountIn)
	if callerInAfter.Cmp(expectedCallerIn) != 0 {
		return nil, &BalanceMismatchError{Token: tokenIn, Side: SideInput, Before: callerIn, After: callerInAfter, Expected: expectedCallerIn}
	}
	treasuryInAfter, err := in.BalanceOf(ctx, e.treasury)
	if err != nil {
		return nil, fmt.Errorf("reconcile treasury input balance: %w", err)
	}
	expectedIn := new(big.Int).Add(treasuryInBefore, amountIn)
	if treasuryInAfter.Cmp(expectedIn) != 0 {
		return nil, &BalanceMismatchError{Token: tokenIn, Side: SideInput, Before: treasuryInBefore, After: treasuryInAfter, Expected: expectedIn}
	}

	if err := token.SafeTransfer(ctx, out, caller, amountOut); err != nil {
		return nil, err
	}
	callerOutAfter, err := out.BalanceOf(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("reconcile caller output balance: %w", err)
	}
	expectedCallerOut := new(big.Int).Add(callerOutBefore, amountOut)
	if callerOutAfter.Cmp(expectedCallerOut) != 0 {
		return nil, &BalanceMismatchError{Token: tokenOut, Side: SideOutput, Before: callerOutBefore, After: callerOutAfter, Expected: expectedCallerOut}
	}
	treasuryOutAfter, err := out.BalanceOf(ctx, e.treasury)
	if err != nil {
		return nil, fmt.Errorf("reconcile treasury output balance: %w", err)
	}
	expectedOut := new(big.Int).Sub(treasuryOutBefore, amountOut)
	if treasuryOutAfter.Cmp(expectedOut) != 0 {
		return nil, &BalanceMismatchError{Token: tokenOut, Side: SideOutput, Before: treasuryOutBefore, After: treasuryOutAfter, Expected: expectedOut}
	}

	receipt := &domain.SwapReceipt{
		Caller:    caller,
		TokenIn:   tokenIn,
		TokenOut:  tokenOut,
		AmountIn:  new(big.Int).Set(amountIn),
		AmountOut: amountOut,
		Rate:      rate,
		Timestamp: nowMs,
	}
	if err := e.receipts.Insert(ctx, receipt); err != nil {
		// The swap already settled on the ledger; losing the receipt row
		// must not fail it.
		e.logger.Printf("[exchange] receipt insert failed: %v", err)
	}

	e.emitter.Emit(domain.SwapExecuted{
		Caller:    caller,
		TokenIn:   tokenIn,
		TokenOut:  tokenOut,
		AmountIn:  new(big.Int).Set(amountIn),
		AmountOut: new(big.Int).Set(amountOut),
		Rate:      new(big.Int).Set(rate),
	})
	e.logger.Printf("[exchange] swap %s %s -> %s %s for %s", amountIn, tokenIn, amountOut, tokenOut, caller)
	return receipt, nil
}

// Quote prices amountIn without executing. The same zero-output and
// rate checks as execution apply.
func (e *Engine) Quote(ctx context.Context, tokenIn, tokenOut domain.Address, amountIn *big.Int) (*big.Int, error) {
	if err := domain.ValidatePair(tokenIn, tokenOut); err != nil {
		return nil, err
	}
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, domain.ErrZeroAmount
	}
	rate, err := e.lookupRate(ctx, tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	in := e.tokens.Token(tokenIn)
	out := e.tokens.Token(tokenOut)
	return computeOut(amountIn, precision.Resolve(ctx, in), precision.Resolve(ctx, out), rate), nil
}

func (e *Engine) lookupRate(ctx context.Context, tokenIn, tokenOut domain.Address) (*big.Int, error) {
	rate, err := e.rates.Rate(ctx, tokenIn, tokenOut)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, &RateNotSetError{TokenIn: tokenIn, TokenOut: tokenOut}
	}
	if err != nil {
		return nil, fmt.Errorf("lookup rate: %w", err)
	}
	if rate.Value == nil || rate.Value.Sign() == 0 {
		return nil, &RateNotSetError{TokenIn: tokenIn, TokenOut: tokenOut}
	}
	return rate.Value, nil
}

// SetRate writes a manual rate. Admin only.
func (e *Engine) SetRate(ctx context.Context, actor, tokenIn, tokenOut domain.Address, value *big.Int) error {
	if err := e.roles.Require(ctx, actor, domain.RoleAdmin); err != nil {
		return err
	}
	if err := e.rates.SetRate(ctx, actor, tokenIn, tokenOut, value); err != nil {
		return err
	}
	observability.RecordRateUpdate(domain.RateSourceManual)
	return nil
}

// SyncRateFromOracle pulls the pair's rate from the configured oracle.
// Admin only.
func (e *Engine) SyncRateFromOracle(ctx context.Context, actor, tokenIn, tokenOut domain.Address) (*big.Int, error) {
	if err := e.roles.Require(ctx, actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	value, err := e.rates.SyncFromOracle(ctx, actor, tokenIn, tokenOut)
	if err != nil {
		observability.RecordOracleSync("error")
		return nil, err
	}
	observability.RecordOracleSync("ok")
	observability.RecordRateUpdate(domain.RateSourceOracle)
	return value, nil
}

// SetRateOracle configures the oracle reference. Admin only.
func (e *Engine) SetRateOracle(ctx context.Context, actor domain.Address, endpoint string) error {
	if err := e.roles.Require(ctx, actor, domain.RoleAdmin); err != nil {
		return err
	}
	if err := e.rates.SetOracle(ctx, actor, endpoint); err != nil {
		return err
	}
	observability.RecordOracleUpdate()
	return nil
}

// SetCanExchange grants or revokes the swap-execution permission. Admin
// only, enforced by the role controller.
func (e *Engine) SetCanExchange(ctx context.Context, actor, account domain.Address, allowed bool) error {
	return e.roles.SetExchanger(ctx, actor, account, allowed)
}

// Pause engages the swap circuit breaker. Admin only.
func (e *Engine) Pause(ctx context.Context, actor domain.Address) error {
	if err := e.roles.Require(ctx, actor, domain.RoleAdmin); err != nil {
		return err
	}
	if err := e.pause.Pause(ctx); err != nil {
		return err
	}
	observability.SetPaused(true)
	e.emitter.Emit(domain.PauseChanged{Paused: true, Actor: actor})
	e.logger.Printf("[exchange] paused by %s", actor)
	return nil
}

// Unpause releases the swap circuit breaker. Admin only.
func (e *Engine) Unpause(ctx context.Context, actor domain.Address) error {
	if err := e.roles.Require(ctx, actor, domain.RoleAdmin); err != nil {
		return err
	}
	if err := e.pause.Unpause(ctx); err != nil {
		return err
	}
	observability.SetPaused(false)
	e.emitter.Emit(domain.PauseChanged{Paused: false, Actor: actor})
	e.logger.Printf("[exchange] unpaused by %s", actor)
	return nil
}

// Paused reports the circuit-breaker state.
func (e *Engine) Paused(ctx context.Context) (bool, error) {
	return e.pause.Paused(ctx)
}

func failReason(err error) string {
	switch {
	case errors.Is(err, ErrDeadlineExpired):
		return "deadline"
	case errors.Is(err, domain.ErrZeroAddress), errors.Is(err, domain.ErrSameToken):
		return "validation"
	case errors.Is(err, domain.ErrZeroAmount):
		return "zero_amount"
	case errors.Is(err, ErrRateNotSet):
		return "rate_not_set"
	case errors.Is(err, ErrSlippageExceeded):
		return "slippage"
	case errors.Is(err, ErrInsufficientInputBalance):
		return "insufficient_input"
	case errors.Is(err, ErrInsufficientLiquidity):
		return "insufficient_liquidity"
	case errors.Is(err, token.ErrTransferFailed):
		return "transfer"
	case errors.Is(err, ErrBalanceMismatch):
		return "mismatch"
	default:
		return "other"
	}
}
