package memory

import (
	"context"
	"math/big"
	"testing"

	"pegswap/internal/domain"
)

func TestReceiptStore_InsertAndGetByCaller(t *testing.T) {
	store := NewReceiptStore()
	ctx := context.Background()

	receipt := &domain.SwapReceipt{
		Caller:    traderA,
		TokenIn:   tokenA,
		TokenOut:  tokenB,
		AmountIn:  big.NewInt(100_000000),
		AmountOut: big.NewInt(100_000000),
		Rate:      big.NewInt(1e18),
		Timestamp: 1704067200000,
	}

	if err := store.Insert(ctx, receipt); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	result, err := store.GetByCaller(ctx, traderA)
	if err != nil {
		t.Fatalf("GetByCaller failed: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("Expected 1 receipt, got %d", len(result))
	}
	if result[0].ID == 0 {
		t.Error("Expected assigned ID")
	}
	if result[0].AmountOut.Cmp(big.NewInt(100_000000)) != 0 {
		t.Errorf("AmountOut mismatch: got %s", result[0].AmountOut)
	}
}

func TestReceiptStore_GetByPairOrdering(t *testing.T) {
	store := NewReceiptStore()
	ctx := context.Background()

	timestamps := []int64{3000, 1000, 2000}
	for _, ts := range timestamps {
		r := &domain.SwapReceipt{
			Caller:    traderA,
			TokenIn:   tokenA,
			TokenOut:  tokenB,
			AmountIn:  big.NewInt(1),
			AmountOut: big.NewInt(1),
			Rate:      big.NewInt(1e18),
			Timestamp: ts,
		}
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	result, err := store.GetByPair(ctx, tokenA, tokenB)
	if err != nil {
		t.Fatalf("GetByPair failed: %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("Expected 3 receipts, got %d", len(result))
	}
	for i := 1; i < len(result); i++ {
		if result[i].Timestamp < result[i-1].Timestamp {
			t.Errorf("Results not ordered: %d < %d", result[i].Timestamp, result[i-1].Timestamp)
		}
	}

	// Reverse pair sees nothing.
	reverse, _ := store.GetByPair(ctx, tokenB, tokenA)
	if len(reverse) != 0 {
		t.Errorf("Expected 0 receipts for reverse pair, got %d", len(reverse))
	}
}

func TestLiquidityEventStore_InsertAndGet(t *testing.T) {
	store := NewLiquidityEventStore()
	ctx := context.Background()

	events := []*domain.LiquidityEvent{
		{Token: tokenA, Amount: big.NewInt(500), Direction: domain.LiquidityDirectionFund, Actor: adminAcct, Timestamp: 1000},
		{Token: tokenA, Amount: big.NewInt(200), Direction: domain.LiquidityDirectionWithdraw, Actor: adminAcct, Timestamp: 2000},
		{Token: tokenB, Amount: big.NewInt(900), Direction: domain.LiquidityDirectionFund, Actor: adminAcct, Timestamp: 1500},
	}
	for _, e := range events {
		if err := store.Insert(ctx, e); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	result, err := store.GetByToken(ctx, tokenA)
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(result))
	}
	if result[0].Direction != domain.LiquidityDirectionFund || result[1].Direction != domain.LiquidityDirectionWithdraw {
		t.Error("Events out of order")
	}
}
