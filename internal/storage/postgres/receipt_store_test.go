package postgres

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"pegswap/internal/domain"
)

func insertTestReceipt(t *testing.T, store *ReceiptStore, caller, tokenIn, tokenOut domain.Address, amountIn int64, ts int64) *domain.SwapReceipt {
	t.Helper()

	receipt := &domain.SwapReceipt{
		Caller:    caller,
		TokenIn:   tokenIn,
		TokenOut:  tokenOut,
		AmountIn:  big.NewInt(amountIn),
		AmountOut: big.NewInt(amountIn * 2),
		Rate:      new(big.Int).Mul(big.NewInt(2), domain.RatePrecision),
		Timestamp: ts,
	}
	require.NoError(t, store.Insert(context.Background(), receipt))
	return receipt
}

func TestReceiptStore_InsertAssignsID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewReceiptStore(pool)

	first := insertTestReceipt(t, store, testTrader, testTokenA, testTokenB, 100, 1000)
	second := insertTestReceipt(t, store, testTrader, testTokenA, testTokenB, 200, 2000)

	require.NotZero(t, first.ID)
	require.Greater(t, second.ID, first.ID)
	require.NotZero(t, first.CreatedAt)
}

func TestReceiptStore_GetByCaller(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewReceiptStore(pool)

	insertTestReceipt(t, store, testTrader, testTokenA, testTokenB, 100, 2000)
	insertTestReceipt(t, store, testTrader, testTokenB, testTokenA, 50, 1000)
	insertTestReceipt(t, store, testAdmin, testTokenA, testTokenB, 999, 1500)

	receipts, err := store.GetByCaller(ctx, testTrader)
	require.NoError(t, err)
	require.Len(t, receipts, 2)

	// Ordered by timestamp.
	require.Equal(t, int64(1000), receipts[0].Timestamp)
	require.Equal(t, int64(2000), receipts[1].Timestamp)
	require.Zero(t, receipts[0].AmountIn.Cmp(big.NewInt(50)))
	require.Zero(t, receipts[1].AmountIn.Cmp(big.NewInt(100)))

	receipts, err = store.GetByCaller(ctx, testTokenA)
	require.NoError(t, err)
	require.Empty(t, receipts)
}

func TestReceiptStore_GetByPair(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewReceiptStore(pool)

	insertTestReceipt(t, store, testTrader, testTokenA, testTokenB, 100, 1000)
	insertTestReceipt(t, store, testAdmin, testTokenA, testTokenB, 200, 2000)
	insertTestReceipt(t, store, testTrader, testTokenB, testTokenA, 300, 1500)

	receipts, err := store.GetByPair(ctx, testTokenA, testTokenB)
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	require.Equal(t, testTrader, receipts[0].Caller)
	require.Equal(t, testAdmin, receipts[1].Caller)

	// The reverse direction is a different pair.
	receipts, err = store.GetByPair(ctx, testTokenB, testTokenA)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	require.Zero(t, receipts[0].AmountIn.Cmp(big.NewInt(300)))
}

func TestReceiptStore_LargeAmountRoundTrip(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewReceiptStore(pool)

	amountIn, ok := new(big.Int).SetString("340282366920938463463374607431768211456", 10)
	require.True(t, ok)

	receipt := &domain.SwapReceipt{
		Caller:    testTrader,
		TokenIn:   testTokenA,
		TokenOut:  testTokenB,
		AmountIn:  amountIn,
		AmountOut: new(big.Int).Lsh(amountIn, 1),
		Rate:      new(big.Int).Mul(big.NewInt(2), domain.RatePrecision),
		Timestamp: 1000,
	}
	require.NoError(t, store.Insert(ctx, receipt))

	receipts, err := store.GetByCaller(ctx, testTrader)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	require.Zero(t, amountIn.Cmp(receipts[0].AmountIn))
	require.Zero(t, receipt.AmountOut.Cmp(receipts[0].AmountOut))
}
