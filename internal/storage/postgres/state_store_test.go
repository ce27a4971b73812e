package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateStore_Defaults(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewStateStore(pool)

	paused, err := store.Paused(ctx)
	require.NoError(t, err)
	require.False(t, paused)

	endpoint, err := store.OracleEndpoint(ctx)
	require.NoError(t, err)
	require.Empty(t, endpoint)
}

func TestStateStore_PausedRoundTrip(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewStateStore(pool)

	require.NoError(t, store.SetPaused(ctx, true))

	paused, err := store.Paused(ctx)
	require.NoError(t, err)
	require.True(t, paused)

	require.NoError(t, store.SetPaused(ctx, false))

	paused, err = store.Paused(ctx)
	require.NoError(t, err)
	require.False(t, paused)
}

func TestStateStore_OracleEndpointRoundTrip(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewStateStore(pool)

	require.NoError(t, store.SetOracleEndpoint(ctx, "https://oracle.example.com/rpc"))

	endpoint, err := store.OracleEndpoint(ctx)
	require.NoError(t, err)
	require.Equal(t, "https://oracle.example.com/rpc", endpoint)
}

func TestStateStore_FieldsSurviveEachOther(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewStateStore(pool)

	require.NoError(t, store.SetPaused(ctx, true))
	require.NoError(t, store.SetOracleEndpoint(ctx, "wss://oracle.example.com/ws"))

	paused, err := store.Paused(ctx)
	require.NoError(t, err)
	require.True(t, paused)

	endpoint, err := store.OracleEndpoint(ctx)
	require.NoError(t, err)
	require.Equal(t, "wss://oracle.example.com/ws", endpoint)
}
