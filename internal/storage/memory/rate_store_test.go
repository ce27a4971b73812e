package memory

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"pegswap/internal/domain"
	"pegswap/internal/storage"
)

const (
	tokenA = domain.Address("So11111111111111111111111111111111111111112")
	tokenB = domain.Address("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
)

func TestRateStore_PutAndGet(t *testing.T) {
	store := NewRateStore()
	ctx := context.Background()

	rate := &domain.Rate{
		TokenIn:   tokenA,
		TokenOut:  tokenB,
		Value:     big.NewInt(2e18),
		Source:    domain.RateSourceManual,
		UpdatedAt: 1704067200000,
	}

	if err := store.Put(ctx, rate); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, tokenA, tokenB)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got.Value.Cmp(big.NewInt(2e18)) != 0 {
		t.Errorf("Value mismatch: got %s, want 2e18", got.Value)
	}
}

func TestRateStore_GetAbsent(t *testing.T) {
	store := NewRateStore()
	ctx := context.Background()

	_, err := store.Get(ctx, tokenA, tokenB)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRateStore_Directional(t *testing.T) {
	store := NewRateStore()
	ctx := context.Background()

	rate := &domain.Rate{TokenIn: tokenA, TokenOut: tokenB, Value: big.NewInt(1e18)}
	if err := store.Put(ctx, rate); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Reverse direction is independent and unset.
	_, err := store.Get(ctx, tokenB, tokenA)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for reverse pair, got %v", err)
	}
}

func TestRateStore_Overwrite(t *testing.T) {
	store := NewRateStore()
	ctx := context.Background()

	first := &domain.Rate{TokenIn: tokenA, TokenOut: tokenB, Value: big.NewInt(1e18)}
	if err := store.Put(ctx, first); err != nil {
		t.Fatalf("First put failed: %v", err)
	}

	// Overwrite to zero disables the pair but remains stored.
	second := &domain.Rate{TokenIn: tokenA, TokenOut: tokenB, Value: big.NewInt(0)}
	if err := store.Put(ctx, second); err != nil {
		t.Fatalf("Second put failed: %v", err)
	}

	got, err := store.Get(ctx, tokenA, tokenB)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Value.Sign() != 0 {
		t.Errorf("Expected zero rate, got %s", got.Value)
	}
}

func TestRateStore_CloneIsolation(t *testing.T) {
	store := NewRateStore()
	ctx := context.Background()

	rate := &domain.Rate{TokenIn: tokenA, TokenOut: tokenB, Value: big.NewInt(5)}
	if err := store.Put(ctx, rate); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Mutating the caller's copy must not affect stored state.
	rate.Value.SetInt64(999)

	got, _ := store.Get(ctx, tokenA, tokenB)
	if got.Value.Cmp(big.NewInt(5)) != 0 {
		t.Errorf("Stored rate aliased caller memory: got %s", got.Value)
	}

	// Mutating the returned copy must not affect stored state either.
	got.Value.SetInt64(777)
	again, _ := store.Get(ctx, tokenA, tokenB)
	if again.Value.Cmp(big.NewInt(5)) != 0 {
		t.Errorf("Returned rate aliased stored memory: got %s", again.Value)
	}
}

func TestRateStore_All(t *testing.T) {
	store := NewRateStore()
	ctx := context.Background()

	pairs := []*domain.Rate{
		{TokenIn: tokenB, TokenOut: tokenA, Value: big.NewInt(2)},
		{TokenIn: tokenA, TokenOut: tokenB, Value: big.NewInt(1)},
	}
	for _, r := range pairs {
		if err := store.Put(ctx, r); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 rates, got %d", len(all))
	}
	if all[0].TokenIn > all[1].TokenIn {
		t.Errorf("Results not ordered by token_in")
	}
}
