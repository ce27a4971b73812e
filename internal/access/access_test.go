package access

import (
	"context"
	"errors"
	"testing"

	"pegswap/internal/domain"
	"pegswap/internal/storage/memory"
)

const (
	admin   = domain.Address("4Nd1mYvM6kbeQN4rXYJiEXpQ6XvkRaCCpqMMj5mwM2Gz")
	trader  = domain.Address("7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU")
	someone = domain.Address("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
)

func newController(t *testing.T) (*Controller, *[]domain.Event) {
	t.Helper()
	var events []domain.Event
	c, err := NewController(context.Background(), memory.NewRoleStore(), admin, domain.EmitterFunc(func(e domain.Event) {
		events = append(events, e)
	}))
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	return c, &events
}

func TestNewController_SeedsAdmin(t *testing.T) {
	c, _ := newController(t)

	isAdmin, err := c.IsAdmin(context.Background(), admin)
	if err != nil {
		t.Fatalf("IsAdmin failed: %v", err)
	}
	if !isAdmin {
		t.Error("Expected initial admin to hold admin role")
	}
}

func TestNewController_RejectsNullAdmin(t *testing.T) {
	_, err := NewController(context.Background(), memory.NewRoleStore(), domain.ZeroAddress, nil)
	if !errors.Is(err, domain.ErrZeroAddress) {
		t.Errorf("Expected ErrZeroAddress, got %v", err)
	}
}

func TestNewController_RejectsMalformedAdmin(t *testing.T) {
	_, err := NewController(context.Background(), memory.NewRoleStore(), "not-base58-0OIl", nil)
	if !errors.Is(err, domain.ErrInvalidAddress) {
		t.Errorf("Expected ErrInvalidAddress, got %v", err)
	}
}

func TestRequire_MissingRole(t *testing.T) {
	c, _ := newController(t)

	err := c.Require(context.Background(), trader, domain.RoleExchanger)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}

	// The error carries caller identity and required role.
	var authErr *AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatal("Expected AuthorizationError")
	}
	if authErr.Caller != trader || authErr.Role != domain.RoleExchanger {
		t.Errorf("Error fields wrong: %+v", authErr)
	}
}

func TestSetExchanger_GrantAndRevoke(t *testing.T) {
	c, events := newController(t)
	ctx := context.Background()

	if err := c.SetExchanger(ctx, admin, trader, true); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if err := c.Require(ctx, trader, domain.RoleExchanger); err != nil {
		t.Errorf("Expected exchanger role after grant: %v", err)
	}

	if err := c.SetExchanger(ctx, admin, trader, false); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if err := c.Require(ctx, trader, domain.RoleExchanger); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized after revoke, got %v", err)
	}

	if len(*events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(*events))
	}
}

func TestSetExchanger_IdempotentButObservable(t *testing.T) {
	c, events := newController(t)
	ctx := context.Background()

	// Re-granting a holder and revoking a non-holder both succeed, and
	// each action still emits the resulting membership.
	if err := c.SetExchanger(ctx, admin, trader, true); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if err := c.SetExchanger(ctx, admin, trader, true); err != nil {
		t.Errorf("Re-grant must not error: %v", err)
	}
	if err := c.SetExchanger(ctx, admin, someone, false); err != nil {
		t.Errorf("Revoke of non-holder must not error: %v", err)
	}

	if len(*events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(*events))
	}
	last := (*events)[2].(domain.RoleUpdated)
	if last.Granted || last.Account != someone {
		t.Errorf("Unexpected final event: %+v", last)
	}
}

func TestSetExchanger_RequiresAdmin(t *testing.T) {
	c, _ := newController(t)

	err := c.SetExchanger(context.Background(), trader, someone, true)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestSetExchanger_RejectsNullGrant(t *testing.T) {
	c, _ := newController(t)

	err := c.SetExchanger(context.Background(), admin, domain.ZeroAddress, true)
	if !errors.Is(err, domain.ErrZeroAddress) {
		t.Errorf("Expected ErrZeroAddress, got %v", err)
	}
}

func TestSetExchanger_RevokeNullIsNoOp(t *testing.T) {
	c, events := newController(t)

	// Null validation applies to grants only; the null identity is
	// never a member, so revoking it succeeds and still emits.
	if err := c.SetExchanger(context.Background(), admin, domain.ZeroAddress, false); err != nil {
		t.Fatalf("Revoke of null identity must not error: %v", err)
	}

	if len(*events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(*events))
	}
	ev := (*events)[0].(domain.RoleUpdated)
	if ev.Granted || ev.Account != domain.ZeroAddress {
		t.Errorf("Unexpected event: %+v", ev)
	}
}
