package domain

import "math/big"

// Event is an observable state change emitted by the engine. Events fire
// even when a mutation is an idempotent no-op (re-granting a role,
// re-setting the same oracle) so that observers see every admin action.
type Event interface {
	EventType() string
}

// Emitter receives engine events. Implementations must not block.
type Emitter interface {
	Emit(Event)
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(Event)

// Emit calls f.
func (f EmitterFunc) Emit(e Event) {
	f(e)
}

// NopEmitter discards all events.
type NopEmitter struct{}

// Emit discards the event.
func (NopEmitter) Emit(Event) {}

// RateUpdated fires on every manual or oracle-sourced rate write.
type RateUpdated struct {
	TokenIn  Address
	TokenOut Address
	OldRate  *big.Int // nil when no rate was stored
	NewRate  *big.Int
	Source   string // "manual" | "oracle"
	Actor    Address
}

func (RateUpdated) EventType() string { return "rate_updated" }

// OracleUpdated fires on every oracle reference change, including
// re-setting the current reference.
type OracleUpdated struct {
	Endpoint string
	Actor    Address
}

func (OracleUpdated) EventType() string { return "oracle_updated" }

// RoleUpdated fires on every grant or revoke with the resulting
// membership, including idempotent re-grants and re-revokes.
type RoleUpdated struct {
	Account Address
	Role    Role
	Granted bool
	Actor   Address
}

func (RoleUpdated) EventType() string { return "role_updated" }

// PauseChanged fires when the circuit breaker toggles.
type PauseChanged struct {
	Paused bool
	Actor  Address
}

func (PauseChanged) EventType() string { return "pause_changed" }

// SwapExecuted fires after a swap passes balance reconciliation.
type SwapExecuted struct {
	Caller    Address
	TokenIn   Address
	TokenOut  Address
	AmountIn  *big.Int
	AmountOut *big.Int
	Rate      *big.Int
}

func (SwapExecuted) EventType() string { return "swap_executed" }

// LiquidityChanged fires after a fund or withdraw completes.
type LiquidityChanged struct {
	Token     Address
	Amount    *big.Int
	Direction string // "fund" | "withdraw"
	Actor     Address
}

func (LiquidityChanged) EventType() string { return "liquidity_changed" }
