// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package pcmcache caches decoded PCM ranges so the cooperative pump and
// burst playback can reuse recently-decoded audio instead of re-invoking the
// decoder (spec §4.5: play_burst "reuses cached PCM in a window around the
// requested time").
package pcmcache

import (
	"fmt"
	"time"

	"github.com/ManuGH/xg2g/internal/cache"
)

// Entry is one decoded, mixed PCM range keyed by its start time.
type Entry struct {
	StartUS int64
	EndUS   int64
	Frames  []float32
}

// Cache stores decoded PCM ranges keyed by their start time; an entry stops
// being returned rangeSecs after it was stored. A rangeSecs of 0 disables
// caching entirely (every lookup misses), matching config.AudioConfig.PCMCacheRangeSecs=0.
type Cache struct {
	backing cache.Cache
	ttl     time.Duration
}

// New builds a Cache whose entries expire rangeSecs after they are stored
// (internal/config.AudioConfig.PCMCacheRangeSecs). rangeSecs<=0 yields a
// no-op cache. No background cleanup goroutine is started: expired entries
// are skipped by Get and released by Clear.
func New(rangeSecs int) *Cache {
	if rangeSecs <= 0 {
		return &Cache{backing: cache.NewNoOpCache()}
	}
	ttl := time.Duration(rangeSecs) * time.Second
	return &Cache{backing: cache.NewMemoryCache(0), ttl: ttl}
}

func key(startUS int64) string {
	return fmt.Sprintf("pcm:%d", startUS)
}

// Get returns the cached entry starting exactly at startUS, if present.
func (c *Cache) Get(startUS int64) (Entry, bool) {
	v, ok := c.backing.Get(key(startUS))
	if !ok {
		return Entry{}, false
	}
	e, ok := v.(Entry)
	return e, ok
}

// Put stores a decoded PCM range, retained for this cache's configured TTL.
func (c *Cache) Put(e Entry) {
	c.backing.Set(key(e.StartUS), e, c.ttl)
}

// Clear empties the cache (spec §4.5 reanchor: "clear PCM-range cache").
func (c *Cache) Clear() {
	c.backing.Clear()
}
