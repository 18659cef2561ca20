// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package snapshotcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/xg2g/internal/config"
	"github.com/ManuGH/xg2g/internal/store"
	"github.com/rs/zerolog"
)

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *Cache) {
	t.Helper()
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	c, err := New(config.SnapshotCacheConfig{Enabled: true, Addr: mr.Addr()}, zerolog.Nop())
	require.NoError(t, err)
	return mr, c
}

func TestCache_PutGet_RoundTrips(t *testing.T) {
	_, c := setupMiniRedis(t)
	ctx := context.Background()

	want := store.Snapshot{
		SequenceID: "seq-1", SequenceNumber: 42,
		ClipState: `[{"id":"clip-1"}]`, CreatedAt: time.Now().Truncate(time.Millisecond),
	}
	c.Put(ctx, 42, want)

	got, ok := c.Get(ctx, "seq-1", 42)
	require.True(t, ok)
	require.Equal(t, want.SequenceID, got.SequenceID)
	require.Equal(t, want.SequenceNumber, got.SequenceNumber)
	require.Equal(t, want.ClipState, got.ClipState)
	require.Equal(t, want.CreatedAt.UnixMilli(), got.CreatedAt.UnixMilli())
}

func TestCache_Get_MissReturnsFalse(t *testing.T) {
	_, c := setupMiniRedis(t)
	_, ok := c.Get(context.Background(), "no-such-sequence", 1)
	require.False(t, ok)
}

func TestNew_DisabledYieldsNoOpCache(t *testing.T) {
	c, err := New(config.SnapshotCacheConfig{Enabled: false}, zerolog.Nop())
	require.NoError(t, err)

	c.Put(context.Background(), 1, store.Snapshot{SequenceID: "seq-3", SequenceNumber: 1})
	_, ok := c.Get(context.Background(), "seq-3", 1)
	require.False(t, ok, "disabled cache must never report a hit")
}
