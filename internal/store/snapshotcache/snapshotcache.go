// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package snapshotcache provides an optional, multi-process-shared cache of
// the Timeline Store's latest-snapshot lookups (spec §4.4.6 replay entry
// point). It is an acceleration layer only: the Timeline Store's SQLite
// tables remain the single source of truth, and a cache miss or a disabled
// cache always falls back to Tx.LatestSnapshotAtOrBefore.
package snapshotcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ManuGH/xg2g/internal/cache"
	"github.com/ManuGH/xg2g/internal/config"
	"github.com/ManuGH/xg2g/internal/store"
	"github.com/rs/zerolog"
)

// ttl bounds how long a cached snapshot lookup is trusted before a fresh
// replay would re-derive it from the store anyway; short enough that a
// stale entry served after a rollback-heavy undo/redo burst self-heals
// quickly.
const ttl = 30 * time.Second

// Cache fronts LatestSnapshotAtOrBefore lookups with a shared backing store,
// keyed by sequence id and target sequence number.
type Cache struct {
	backing cache.Cache
}

// New constructs a Cache. When cfg.Enabled is false, the returned Cache
// wraps a no-op backing store, so callers never need to branch on whether
// the snapshot cache is configured.
func New(cfg config.SnapshotCacheConfig, logger zerolog.Logger) (*Cache, error) {
	if !cfg.Enabled {
		return &Cache{backing: cache.NewNoOpCache()}, nil
	}
	backing, err := cache.NewRedisCache(cache.RedisConfig{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("snapshotcache: %w", err)
	}
	return &Cache{backing: backing}, nil
}

type cachedSnapshot struct {
	SequenceID     string `json:"sequence_id"`
	SequenceNumber int64  `json:"sequence_number"`
	ClipState      string `json:"clip_state"`
	CreatedAtMS    int64  `json:"created_at_ms"`
}

func key(sequenceID string, target int64) string {
	return fmt.Sprintf("snap:%s:%d", sequenceID, target)
}

// Get returns a cached snapshot for (sequenceID, target) if present. A
// found=false return means the caller must fall back to the store.
func (c *Cache) Get(_ context.Context, sequenceID string, target int64) (store.Snapshot, bool) {
	raw, ok := c.backing.Get(key(sequenceID, target))
	if !ok {
		return store.Snapshot{}, false
	}
	s, ok := raw.(string)
	if !ok {
		return store.Snapshot{}, false
	}
	var cs cachedSnapshot
	if err := json.Unmarshal([]byte(s), &cs); err != nil {
		return store.Snapshot{}, false
	}
	return store.Snapshot{
		SequenceID:     cs.SequenceID,
		SequenceNumber: cs.SequenceNumber,
		ClipState:      cs.ClipState,
		CreatedAt:      time.UnixMilli(cs.CreatedAtMS),
	}, true
}

// Put caches a snapshot lookup result for (sequenceID, target).
func (c *Cache) Put(_ context.Context, target int64, s store.Snapshot) {
	cs := cachedSnapshot{
		SequenceID:     s.SequenceID,
		SequenceNumber: s.SequenceNumber,
		ClipState:      s.ClipState,
		CreatedAtMS:    s.CreatedAt.UnixMilli(),
	}
	data, err := json.Marshal(cs)
	if err != nil {
		return
	}
	c.backing.Set(key(s.SequenceID, target), string(data), ttl)
}
