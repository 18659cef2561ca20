// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package gapcache caches a track's computed gap list (spec §4.3 "gap
// discovery between clips") so repeated reads — e.g. a UI's gap-closing
// affordances re-querying the same track between edits — don't re-walk the
// clip list each time. It is invalidated per-track whenever that track's
// clips change, since gaps are exact given the current clip layout rather
// than a decaying approximation; entries also carry a long TTL (entryTTL)
// as a backstop.
package gapcache

import (
	"fmt"
	"time"

	"github.com/ManuGH/xg2g/internal/cache"
)

// entryTTL is deliberately long: a track's gap list is exact, not a decaying
// approximation, and the real invalidation path is Invalidate (called on
// every insert/update/delete/bulk-shift touching the track, spec §4.3). The
// TTL exists only as a safety net against a missed invalidation call, not as
// the intended eviction mechanism.
const entryTTL = time.Hour

// Cache stores a track's last-computed gap list, keyed by track id.
type Cache struct {
	backing cache.Cache
}

// New builds an empty gap cache. No background cleanup goroutine is
// started: expired entries are skipped by Get.
func New() *Cache {
	return &Cache{backing: cache.NewMemoryCache(0)}
}

func key(trackID string) string {
	return fmt.Sprintf("gaps:%s", trackID)
}

// Get returns the cached gap list for trackID, if present.
func (c *Cache) Get(trackID string) ([]Gap, bool) {
	v, ok := c.backing.Get(key(trackID))
	if !ok {
		return nil, false
	}
	gaps, ok := v.([]Gap)
	return gaps, ok
}

// Put stores trackID's computed gap list.
func (c *Cache) Put(trackID string, gaps []Gap) {
	c.backing.Set(key(trackID), gaps, entryTTL)
}

// Invalidate evicts a single track's cached gap list, called whenever that
// track's clips change (insert/update/delete/bulk shift).
func (c *Cache) Invalidate(trackID string) {
	c.backing.Delete(key(trackID))
}

// Gap mirrors timeline.Gap's fields. Declared independently so this package
// has no import-cycle dependency on internal/timeline; timeline converts to
// and from this shape at its cache call sites.
type Gap struct {
	TrackID        string
	StartFrame     int64
	DurationFrames int64
}
