package exchange

import (
	"context"
	"fmt"
	"math/big"

	"pegswap/internal/domain"
	"pegswap/internal/observability"
	"pegswap/internal/token"
)

// FundLiquidity moves amount of tok from the administrator into the
// treasury. Admin only. Funding is deliberately not reconciled: a
// fee-on-transfer deposit short-changes the treasury, not the engine's
// accounting, and refusing it would only block legitimate top-ups.
// Funding stays available while swaps are paused.
func (e *Engine) FundLiquidity(ctx context.Context, actor, tok domain.Address, amount *big.Int) error {
	if err := e.roles.Require(ctx, actor, domain.RoleAdmin); err != nil {
		return err
	}
	if err := tok.Validate(); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return domain.ErrZeroAmount
	}

	if err := token.SafeTransferFrom(ctx, e.tokens.Token(tok), actor, e.treasury, amount); err != nil {
		return err
	}

	e.recordLiquidity(ctx, actor, tok, amount, domain.LiquidityDirectionFund)
	return nil
}

// Withdraw moves amount of tok from the treasury to the administrator.
// Admin only. Unlike funding, withdrawal is reconciled on both sides:
// the recipient must grow and the treasury must shrink by exactly
// amount or the operation fails.
func (e *Engine) Withdraw(ctx context.Context, actor, tok domain.Address, amount *big.Int) error {
	if err := e.roles.Require(ctx, actor, domain.RoleAdmin); err != nil {
		return err
	}
	if err := tok.Validate(); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return domain.ErrZeroAmount
	}

	if err := e.lock.Enter(); err != nil {
		observability.RecordReentrancyRejected()
		return err
	}
	defer e.lock.Exit()

	t := e.tokens.Token(tok)
	before, err := t.BalanceOf(ctx, e.treasury)
	if err != nil {
		return fmt.Errorf("snapshot treasury balance: %w", err)
	}
	if before.Cmp(amount) < 0 {
		return &InsufficientBalanceError{Token: tok, Account: e.treasury, Balance: before, Required: amount, Liquidity: true}
	}
	actorBefore, err := t.BalanceOf(ctx, actor)
	if err != nil {
		return fmt.Errorf("snapshot recipient balance: %w", err)
	}

	if err := token.SafeTransfer(ctx, t, actor, amount); err != nil {
		return err
	}

	actorAfter, err := t.BalanceOf(ctx, actor)
	if err != nil {
		return fmt.Errorf("reconcile recipient balance: %w", err)
	}
	expectedActor := new(big.Int).Add(actorBefore, amount)
	if actorAfter.Cmp(expectedActor) != 0 {
		return &BalanceMismatchError{Token: tok, Side: SideOutput, Before: actorBefore, After: actorAfter, Expected: expectedActor}
	}
	after, err := t.BalanceOf(ctx, e.treasury)
	if err != nil {
		return fmt.Errorf("reconcile treasury balance: %w", err)
	}
	expected := new(big.Int).Sub(before, amount)
	if after.Cmp(expected) != 0 {
		return &BalanceMismatchError{Token: tok, Side: SideOutput, Before: before, After: after, Expected: expected}
	}

	e.recordLiquidity(ctx, actor, tok, amount, domain.LiquidityDirectionWithdraw)
	return nil
}

func (e *Engine) recordLiquidity(ctx context.Context, actor, tok domain.Address, amount *big.Int, direction string) {
	if e.liquidity != nil {
		event := &domain.LiquidityEvent{
			Token:     tok,
			Amount:    new(big.Int).Set(amount),
			Direction: direction,
			Actor:     actor,
			Timestamp: e.now().UnixMilli(),
		}
		if err := e.liquidity.Insert(ctx, event); err != nil {
			e.logger.Printf("[exchange] liquidity event insert failed: %v", err)
		}
	}

	e.emitter.Emit(domain.LiquidityChanged{
		Token:     tok,
		Amount:    new(big.Int).Set(amount),
		Direction: direction,
		Actor:     actor,
	})
	observability.RecordLiquidityOp(direction)
	e.logger.Printf("[exchange] liquidity %s %s %s by %s", direction, amount, tok, actor)
}
