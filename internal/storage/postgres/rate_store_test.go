package postgres

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"pegswap/internal/domain"
	"pegswap/internal/storage"
)

const (
	testTokenA = domain.Address("So11111111111111111111111111111111111111112")
	testTokenB = domain.Address("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	testAdmin  = domain.Address("4Nd1mYvM6kbeQN4rXYJiEXpQ6XvkRaCCpqMMj5mwM2Gz")
	testTrader = domain.Address("7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU")
)

func TestRateStore_PutGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRateStore(pool)

	rate := &domain.Rate{
		TokenIn:   testTokenA,
		TokenOut:  testTokenB,
		Value:     new(big.Int).Mul(big.NewInt(2), domain.RatePrecision),
		Source:    domain.RateSourceManual,
		UpdatedBy: testAdmin,
		UpdatedAt: 1700000000000,
	}
	require.NoError(t, store.Put(ctx, rate))

	got, err := store.Get(ctx, testTokenA, testTokenB)
	require.NoError(t, err)
	require.Equal(t, testTokenA, got.TokenIn)
	require.Equal(t, testTokenB, got.TokenOut)
	require.Zero(t, rate.Value.Cmp(got.Value))
	require.Equal(t, domain.RateSourceManual, got.Source)
	require.Equal(t, testAdmin, got.UpdatedBy)
	require.Equal(t, int64(1700000000000), got.UpdatedAt)
}

func TestRateStore_GetMissing(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := NewRateStore(pool).Get(context.Background(), testTokenA, testTokenB)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRateStore_PutOverwrites(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRateStore(pool)

	first := &domain.Rate{
		TokenIn:   testTokenA,
		TokenOut:  testTokenB,
		Value:     big.NewInt(100),
		Source:    domain.RateSourceManual,
		UpdatedBy: testAdmin,
		UpdatedAt: 1,
	}
	require.NoError(t, store.Put(ctx, first))

	second := &domain.Rate{
		TokenIn:   testTokenA,
		TokenOut:  testTokenB,
		Value:     big.NewInt(0),
		Source:    domain.RateSourceOracle,
		UpdatedBy: testTrader,
		UpdatedAt: 2,
	}
	require.NoError(t, store.Put(ctx, second))

	got, err := store.Get(ctx, testTokenA, testTokenB)
	require.NoError(t, err)
	require.Zero(t, got.Value.Sign())
	require.Equal(t, domain.RateSourceOracle, got.Source)
	require.Equal(t, testTrader, got.UpdatedBy)
	require.Equal(t, int64(2), got.UpdatedAt)
}

func TestRateStore_DirectionalIndependence(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRateStore(pool)

	forward := &domain.Rate{
		TokenIn: testTokenA, TokenOut: testTokenB,
		Value: big.NewInt(2), Source: domain.RateSourceManual,
		UpdatedBy: testAdmin, UpdatedAt: 1,
	}
	require.NoError(t, store.Put(ctx, forward))

	_, err := store.Get(ctx, testTokenB, testTokenA)
	require.ErrorIs(t, err, storage.ErrNotFound)

	reverse := &domain.Rate{
		TokenIn: testTokenB, TokenOut: testTokenA,
		Value: big.NewInt(3), Source: domain.RateSourceManual,
		UpdatedBy: testAdmin, UpdatedAt: 2,
	}
	require.NoError(t, store.Put(ctx, reverse))

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestRateStore_LargeValueRoundTrip(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRateStore(pool)

	// Well past uint64 to exercise the TEXT column encoding.
	huge, ok := new(big.Int).SetString("123456789012345678901234567890123456789", 10)
	require.True(t, ok)

	rate := &domain.Rate{
		TokenIn: testTokenA, TokenOut: testTokenB,
		Value: huge, Source: domain.RateSourceManual,
		UpdatedBy: testAdmin, UpdatedAt: 1,
	}
	require.NoError(t, store.Put(ctx, rate))

	got, err := store.Get(ctx, testTokenA, testTokenB)
	require.NoError(t, err)
	require.Zero(t, huge.Cmp(got.Value))
}
