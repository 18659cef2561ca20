// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package timeline implements the Timeline Model (spec §4.3): an in-memory
// projection over the Timeline Store. It provides sorted per-track clip
// lists, gap discovery, edge-movement constraint calculators, and link-group
// expansion. It never writes to the store directly — executors do that —
// but it is the cache executors and the UI consult before and after a
// command runs.
package timeline

import (
	"sort"

	"github.com/ManuGH/xg2g/internal/errs"
	"github.com/ManuGH/xg2g/internal/store"
	"github.com/ManuGH/xg2g/internal/timeline/gapcache"
)

// Model is a mutable, in-memory cache of one sequence's tracks and clips.
// It is rebuilt wholesale on a full reload and patched incrementally by
// applying Mutations recorded by executors (spec §4.4.3 step 13).
type Model struct {
	SequenceID   string
	tracks       map[string]store.Track    // track id -> track
	clipsByTrack map[string][]store.Clip   // track id -> clips, sorted by TimelineStartFrame
	clipsByID    map[string]store.Clip
	linksByClip  map[string][]store.ClipLink
	gaps         *gapcache.Cache
}

// NewModel builds an empty model for a sequence; call Reload to populate it.
func NewModel(sequenceID string) *Model {
	return &Model{
		SequenceID:   sequenceID,
		tracks:       map[string]store.Track{},
		clipsByTrack: map[string][]store.Clip{},
		clipsByID:    map[string]store.Clip{},
		linksByClip:  map[string][]store.ClipLink{},
		gaps:         gapcache.New(),
	}
}

// Reload replaces the model's entire contents from store data — used on
// startup, after an undo/redo that skipped mutation recording, and whenever
// an executor did not record precise timeline mutations (spec §4.4.3 step 13
// fallback: "full reload of the affected sequence").
func (m *Model) Reload(tracks []store.Track, clips []store.Clip, links []store.ClipLink) {
	m.tracks = make(map[string]store.Track, len(tracks))
	for _, t := range tracks {
		m.tracks[t.ID] = t
	}

	m.clipsByTrack = map[string][]store.Clip{}
	m.clipsByID = make(map[string]store.Clip, len(clips))
	for _, c := range clips {
		m.clipsByID[c.ID] = c
		m.clipsByTrack[c.TrackID] = append(m.clipsByTrack[c.TrackID], c)
	}
	for trackID := range m.clipsByTrack {
		sortClipsByStart(m.clipsByTrack[trackID])
	}

	m.linksByClip = map[string][]store.ClipLink{}
	for _, l := range links {
		m.linksByClip[l.ClipID] = append(m.linksByClip[l.ClipID], l)
	}

	m.gaps = gapcache.New()
}

func sortClipsByStart(clips []store.Clip) {
	sort.Slice(clips, func(i, j int) bool {
		return clips[i].TimelineStartFrame < clips[j].TimelineStartFrame
	})
}

// Track returns a cached track by id.
func (m *Model) Track(id string) (store.Track, bool) {
	t, ok := m.tracks[id]
	return t, ok
}

// Clip returns a cached clip by id.
func (m *Model) Clip(id string) (store.Clip, bool) {
	c, ok := m.clipsByID[id]
	return c, ok
}

// ClipsOnTrack returns a track's clips sorted by TimelineStartFrame. The
// returned slice is a defensive copy; callers must not mutate it in place.
func (m *Model) ClipsOnTrack(trackID string) []store.Clip {
	src := m.clipsByTrack[trackID]
	out := make([]store.Clip, len(src))
	copy(out, src)
	return out
}

// AllClips returns every clip in the model across all tracks, in no
// particular order. Used for whole-sequence digests (project state hash)
// rather than per-track layout queries.
func (m *Model) AllClips() []store.Clip {
	out := make([]store.Clip, 0, len(m.clipsByID))
	for _, c := range m.clipsByID {
		out = append(out, c)
	}
	return out
}

// AllTrackIDs returns every track id the model knows about, in no
// particular order.
func (m *Model) AllTrackIDs() []string {
	ids := make([]string, 0, len(m.tracks))
	for id := range m.tracks {
		ids = append(ids, id)
	}
	return ids
}

// upsertClip replaces (or inserts) a single clip in the cache and
// re-sorts its track's clip list. Used by ApplyMutations.
func (m *Model) upsertClip(c store.Clip) {
	if old, ok := m.clipsByID[c.ID]; ok && old.TrackID != c.TrackID {
		m.removeFromTrack(old.TrackID, old.ID)
		m.gaps.Invalidate(old.TrackID)
	}
	m.clipsByID[c.ID] = c
	list := m.clipsByTrack[c.TrackID]
	replaced := false
	for i, existing := range list {
		if existing.ID == c.ID {
			list[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, c)
	}
	sortClipsByStart(list)
	m.clipsByTrack[c.TrackID] = list
	m.gaps.Invalidate(c.TrackID)
}

func (m *Model) removeClip(id string) {
	c, ok := m.clipsByID[id]
	if !ok {
		return
	}
	delete(m.clipsByID, id)
	m.removeFromTrack(c.TrackID, id)
	m.gaps.Invalidate(c.TrackID)
}

func (m *Model) removeFromTrack(trackID, clipID string) {
	list := m.clipsByTrack[trackID]
	for i, c := range list {
		if c.ID == clipID {
			m.clipsByTrack[trackID] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Gap describes empty timeline space between two clips (or between t=0 and
// the first clip, or after the last clip on a finite-bounded view).
type Gap struct {
	TrackID        string
	StartFrame     int64
	DurationFrames int64 // -1 means "extends to infinity" (after the last clip)
}

// Gaps returns the gaps on a track: before the first clip (if its start is
// > 0), between consecutive clips, and after the last clip (unbounded,
// DurationFrames == -1). Cached per track (internal/timeline/gapcache) and
// invalidated whenever that track's clips change, since recomputing this by
// walking the full clip list on every UI gap-closing query would otherwise
// repeat the same scan for an unchanged layout.
func (m *Model) Gaps(trackID string) []Gap {
	if cached, ok := m.gaps.Get(trackID); ok {
		return gapsFromCache(trackID, cached)
	}

	clips := m.clipsByTrack[trackID]
	var gaps []Gap
	cursor := int64(0)
	for _, c := range clips {
		if c.TimelineStartFrame > cursor {
			gaps = append(gaps, Gap{TrackID: trackID, StartFrame: cursor, DurationFrames: c.TimelineStartFrame - cursor})
		}
		if c.End() > cursor {
			cursor = c.End()
		}
	}
	gaps = append(gaps, Gap{TrackID: trackID, StartFrame: cursor, DurationFrames: -1})

	m.gaps.Put(trackID, toCacheGaps(gaps))
	return gaps
}

func toCacheGaps(gaps []Gap) []gapcache.Gap {
	out := make([]gapcache.Gap, len(gaps))
	for i, g := range gaps {
		out[i] = gapcache.Gap{TrackID: g.TrackID, StartFrame: g.StartFrame, DurationFrames: g.DurationFrames}
	}
	return out
}

func gapsFromCache(trackID string, cached []gapcache.Gap) []Gap {
	out := make([]Gap, len(cached))
	for i, g := range cached {
		out[i] = Gap{TrackID: trackID, StartFrame: g.StartFrame, DurationFrames: g.DurationFrames}
	}
	return out
}

// MaterializeGap turns a gap handle into a virtual clip: start and duration
// identical to the gap, source in/out spanning an equal unit window (spec
// §4.3's "materialized gap" helper — used so ripple/trim math can treat a
// gap edge uniformly with a real clip edge).
func MaterializeGap(g Gap) store.Clip {
	return store.Clip{
		ID:                 "",
		TimelineStartFrame: g.StartFrame,
		DurationFrames:     g.DurationFrames,
		SourceInFrame:      0,
		SourceOutFrame:     g.DurationFrames,
	}
}

// ExpandLinkGroup returns clipIDs plus every clip linked (with Enabled=true)
// to any clip already in the set, transitively — spec §4.3's link
// expansion, consulted by Nudge. MoveClipToTrack does not use it and moves
// only the clip it names.
func (m *Model) ExpandLinkGroup(clipIDs []string) []string {
	seen := map[string]bool{}
	queue := append([]string{}, clipIDs...)
	for _, id := range clipIDs {
		seen[id] = true
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, link := range m.linksByClip[id] {
			if !link.Enabled {
				continue
			}
			for _, other := range m.groupMembers(link.LinkGroupID) {
				if !seen[other] {
					seen[other] = true
					queue = append(queue, other)
				}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	return out
}

// groupMembers returns every clip id belonging to a link group, from the
// cached link index (built by Reload/ApplyMutations, not a store round-trip).
func (m *Model) groupMembers(groupID string) []string {
	var out []string
	for clipID, links := range m.linksByClip {
		for _, l := range links {
			if l.LinkGroupID == groupID {
				out = append(out, clipID)
				break
			}
		}
	}
	return out
}

// EdgeKind distinguishes the two trimmable edges of a clip.
type EdgeKind int

const (
	EdgeIn EdgeKind = iota
	EdgeOut
)

// EdgeMovementBounds reports how far an edge may move, in frames, before it
// would hit a neighboring clip, the track start, or the source media's
// bounds (spec §4.3). minDelta/maxDelta bound the signed Δ passed to a trim:
// for EdgeIn, positive Δ trims the clip shorter (moves start right); for
// EdgeOut, positive Δ extends the clip (moves end right).
func (m *Model) EdgeMovementBounds(clipID string, edge EdgeKind) (minDelta, maxDelta int64, err error) {
	c, ok := m.clipsByID[clipID]
	if !ok {
		return 0, 0, errs.NotFound("clip", clipID)
	}
	neighbors := m.clipsByTrack[c.TrackID]

	switch edge {
	case EdgeIn:
		// Cannot trim so far that duration drops below 1 frame.
		maxDelta = c.DurationFrames - 1
		// Cannot pull source_in negative.
		minDelta = -c.SourceInFrame
		if prevEnd, ok := previousClipEnd(neighbors, c); ok {
			if bound := prevEnd - c.TimelineStartFrame; bound > minDelta {
				minDelta = bound
			}
		} else if bound := -c.TimelineStartFrame; bound > minDelta {
			minDelta = bound
		}
		return minDelta, maxDelta, nil
	case EdgeOut:
		minDelta = -(c.DurationFrames - 1)
		sourceRoom, err := sourceMediaRoom(c)
		if err != nil {
			return 0, 0, err
		}
		maxDelta = sourceRoom
		if nextStart, ok := nextClipStart(neighbors, c); ok {
			if bound := nextStart - c.End(); bound < maxDelta {
				maxDelta = bound
			}
		}
		return minDelta, maxDelta, nil
	default:
		return 0, 0, errs.InvalidArgument("unknown edge kind %d", edge)
	}
}

// sourceMediaRoom returns how many additional frames the clip's out-edge may
// extend before hitting source_out_frame's ceiling. Without a media
// duration_frames lookup at this layer, the model trusts the clip's own
// source_out_frame as the maximum (callers with the Media row may tighten
// this further).
func sourceMediaRoom(c store.Clip) (int64, error) {
	room := c.SourceOutFrame - (c.SourceInFrame + c.DurationFrames)
	if room < 0 {
		return 0, errs.ConstraintViolation("clip %s has source window shorter than its duration", c.ID)
	}
	return room, nil
}

func previousClipEnd(clips []store.Clip, self store.Clip) (int64, bool) {
	var best int64
	found := false
	for _, c := range clips {
		if c.ID == self.ID {
			continue
		}
		if c.End() <= self.TimelineStartFrame && (!found || c.End() > best) {
			best = c.End()
			found = true
		}
	}
	return best, found
}

func nextClipStart(clips []store.Clip, self store.Clip) (int64, bool) {
	var best int64
	found := false
	for _, c := range clips {
		if c.ID == self.ID {
			continue
		}
		if c.TimelineStartFrame >= self.End() && (!found || c.TimelineStartFrame < best) {
			best = c.TimelineStartFrame
			found = true
		}
	}
	return best, found
}
