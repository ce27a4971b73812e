package storage

import (
	"context"

	"pegswap/internal/domain"
)

// RateStore provides access to the directional rate map.
type RateStore interface {
	// Get retrieves the stored rate for (tokenIn, tokenOut).
	// Returns ErrNotFound if the pair has never been written.
	Get(ctx context.Context, tokenIn, tokenOut domain.Address) (*domain.Rate, error)

	// Put overwrites the rate for its pair unconditionally, including to zero.
	Put(ctx context.Context, rate *domain.Rate) error

	// All retrieves every stored rate, ordered by (token_in, token_out).
	All(ctx context.Context) ([]*domain.Rate, error)
}

// RoleStore provides access to role membership sets.
type RoleStore interface {
	// Has reports whether account is a member of role.
	Has(ctx context.Context, account domain.Address, role domain.Role) (bool, error)

	// Grant adds the account to the role. Granting an existing member
	// succeeds without change.
	Grant(ctx context.Context, grant *domain.RoleGrant) error

	// Revoke removes the account from the role. Revoking a non-member
	// succeeds without change.
	Revoke(ctx context.Context, account domain.Address, role domain.Role) error

	// Members retrieves all accounts holding role.
	Members(ctx context.Context, role domain.Role) ([]domain.Address, error)
}

// StateStore holds the engine's singleton configuration state: the pause
// flag and the configured oracle reference.
type StateStore interface {
	// Paused reports the circuit-breaker state. Defaults to false when
	// never written.
	Paused(ctx context.Context) (bool, error)

	// SetPaused writes the circuit-breaker state.
	SetPaused(ctx context.Context, paused bool) error

	// OracleEndpoint retrieves the configured oracle reference.
	// Returns "" when no oracle has been configured.
	OracleEndpoint(ctx context.Context) (string, error)

	// SetOracleEndpoint overwrites the oracle reference.
	SetOracleEndpoint(ctx context.Context, endpoint string) error
}

// ReceiptStore provides access to the swap receipt log.
type ReceiptStore interface {
	// Insert appends a completed swap receipt.
	Insert(ctx context.Context, receipt *domain.SwapReceipt) error

	// GetByCaller retrieves all receipts for a caller, ordered by timestamp ASC.
	GetByCaller(ctx context.Context, caller domain.Address) ([]*domain.SwapReceipt, error)

	// GetByPair retrieves all receipts for an ordered pair, ordered by timestamp ASC.
	GetByPair(ctx context.Context, tokenIn, tokenOut domain.Address) ([]*domain.SwapReceipt, error)
}

// LiquidityEventStore provides access to the treasury funding log.
type LiquidityEventStore interface {
	// Insert appends a liquidity event.
	Insert(ctx context.Context, event *domain.LiquidityEvent) error

	// GetByToken retrieves all events for a token, ordered by timestamp ASC.
	GetByToken(ctx context.Context, token domain.Address) ([]*domain.LiquidityEvent, error)
}
