package memory

import (
	"context"
	"math/big"
	"testing"

	"pegswap/internal/domain"
	"pegswap/internal/storage"
)

func TestLiquidityEventStore_InsertAssignsID(t *testing.T) {
	store := NewLiquidityEventStore()
	ctx := context.Background()

	event := &domain.LiquidityEvent{
		Token:     tokenA,
		Amount:    big.NewInt(1000),
		Direction: domain.LiquidityDirectionFund,
		Actor:     adminAcct,
		Timestamp: 1000,
	}
	if err := store.Insert(ctx, event); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if event.ID == 0 {
		t.Error("Expected ID assigned on insert")
	}
	if event.CreatedAt == 0 {
		t.Error("Expected CreatedAt assigned on insert")
	}
}

func TestLiquidityEventStore_InsertInvalid(t *testing.T) {
	store := NewLiquidityEventStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); err != storage.ErrInvalidInput {
		t.Errorf("Expected ErrInvalidInput for nil event, got %v", err)
	}
	if err := store.Insert(ctx, &domain.LiquidityEvent{Amount: big.NewInt(1)}); err != storage.ErrInvalidInput {
		t.Errorf("Expected ErrInvalidInput for null token, got %v", err)
	}
	if err := store.Insert(ctx, &domain.LiquidityEvent{Token: tokenA}); err != storage.ErrInvalidInput {
		t.Errorf("Expected ErrInvalidInput for nil amount, got %v", err)
	}
}

func TestLiquidityEventStore_GetByToken(t *testing.T) {
	store := NewLiquidityEventStore()
	ctx := context.Background()

	events := []*domain.LiquidityEvent{
		{Token: tokenA, Amount: big.NewInt(500), Direction: domain.LiquidityDirectionWithdraw, Actor: adminAcct, Timestamp: 2000},
		{Token: tokenA, Amount: big.NewInt(1000), Direction: domain.LiquidityDirectionFund, Actor: adminAcct, Timestamp: 1000},
		{Token: tokenB, Amount: big.NewInt(77), Direction: domain.LiquidityDirectionFund, Actor: adminAcct, Timestamp: 1500},
	}
	for _, e := range events {
		if err := store.Insert(ctx, e); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.GetByToken(ctx, tokenA)
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(got))
	}
	// Ordered by timestamp.
	if got[0].Direction != domain.LiquidityDirectionFund || got[1].Direction != domain.LiquidityDirectionWithdraw {
		t.Error("Events not ordered by timestamp")
	}

	// Returned events are copies.
	got[0].Amount.SetInt64(999)
	again, _ := store.GetByToken(ctx, tokenA)
	if again[0].Amount.Cmp(big.NewInt(1000)) != 0 {
		t.Error("Stored event aliased by caller mutation")
	}
}
