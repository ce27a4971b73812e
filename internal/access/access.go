// Package access enforces the engine's two-tier permission model: a
// super-admin role with lifecycle authority and a per-account
// swap-execution permission.
package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pegswap/internal/domain"
	"pegswap/internal/storage"
)

// ErrUnauthorized is the sentinel all authorization failures unwrap to.
var ErrUnauthorized = errors.New("access: unauthorized")

// AuthorizationError reports a caller missing a required role. It never
// degrades to a silent no-op: every privileged entry point surfaces it.
type AuthorizationError struct {
	Caller domain.Address
	Role   domain.Role
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("access: %s missing role %s", e.Caller, e.Role)
}

func (e *AuthorizationError) Unwrap() error {
	return ErrUnauthorized
}

// Controller owns role membership. All mutation goes through explicit,
// authorization-checked methods; there is no ambient global state.
type Controller struct {
	store   storage.RoleStore
	emitter domain.Emitter
	now     func() time.Time
}

// NewController creates a controller and seeds the initial administrator.
// The initial admin must be a valid non-null identity. Re-seeding an
// existing admin on restart is a no-op.
func NewController(ctx context.Context, store storage.RoleStore, initialAdmin domain.Address, emitter domain.Emitter) (*Controller, error) {
	if err := initialAdmin.Validate(); err != nil {
		return nil, fmt.Errorf("initial admin: %w", err)
	}
	if emitter == nil {
		emitter = domain.NopEmitter{}
	}

	c := &Controller{
		store:   store,
		emitter: emitter,
		now:     time.Now,
	}

	grant := &domain.RoleGrant{
		Account:   initialAdmin,
		Role:      domain.RoleAdmin,
		GrantedBy: initialAdmin,
		GrantedAt: c.now().UnixMilli(),
	}
	if err := store.Grant(ctx, grant); err != nil {
		return nil, fmt.Errorf("seed initial admin: %w", err)
	}

	return c, nil
}

// SetClock overrides the controller clock, primarily for deterministic
// testing.
func (c *Controller) SetClock(now func() time.Time) {
	c.now = now
}

// Require fails with an AuthorizationError unless caller holds role.
func (c *Controller) Require(ctx context.Context, caller domain.Address, role domain.Role) error {
	has, err := c.store.Has(ctx, caller, role)
	if err != nil {
		return fmt.Errorf("check role %s: %w", role, err)
	}
	if !has {
		return &AuthorizationError{Caller: caller, Role: role}
	}
	return nil
}

// SetExchanger grants or revokes the swap-execution permission. Both
// directions are idempotent: re-granting a holder or revoking a
// non-holder succeeds, and the state-change event fires either way with
// the resulting membership. Only grants validate the account; the null
// identity is never a member, so revoking it is the usual non-holder
// no-op.
func (c *Controller) SetExchanger(ctx context.Context, actor, account domain.Address, allowed bool) error {
	if err := c.Require(ctx, actor, domain.RoleAdmin); err != nil {
		return err
	}

	if allowed {
		if err := account.Validate(); err != nil {
			return err
		}
		grant := &domain.RoleGrant{
			Account:   account,
			Role:      domain.RoleExchanger,
			GrantedBy: actor,
			GrantedAt: c.now().UnixMilli(),
		}
		if err := c.store.Grant(ctx, grant); err != nil {
			return fmt.Errorf("grant exchanger: %w", err)
		}
	} else if !account.IsZero() {
		if err := c.store.Revoke(ctx, account, domain.RoleExchanger); err != nil {
			return fmt.Errorf("revoke exchanger: %w", err)
		}
	}

	c.emitter.Emit(domain.RoleUpdated{
		Account: account,
		Role:    domain.RoleExchanger,
		Granted: allowed,
		Actor:   actor,
	})
	return nil
}

// IsAdmin reports whether account holds the administrator role.
func (c *Controller) IsAdmin(ctx context.Context, account domain.Address) (bool, error) {
	return c.store.Has(ctx, account, domain.RoleAdmin)
}

// IsExchanger reports whether account holds the swap-execution permission.
func (c *Controller) IsExchanger(ctx context.Context, account domain.Address) (bool, error) {
	return c.store.Has(ctx, account, domain.RoleExchanger)
}

// Members retrieves all accounts holding role.
func (c *Controller) Members(ctx context.Context, role domain.Role) ([]domain.Address, error) {
	return c.store.Members(ctx, role)
}
