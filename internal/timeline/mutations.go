// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package timeline

import "github.com/ManuGH/xg2g/internal/store"

// BulkShift records a track-wide shift applied by the store (spec §4.2's
// bulk track-shift): every clip on TrackID whose start is >= Anchor moved
// by Delta frames.
type BulkShift struct {
	TrackID string
	Anchor  int64
	Delta   int64
}

// MutationBuffer is the "timeline mutations" side-channel an executor
// records into the command bag (spec §4.4.3 step 8, §9's
// `__timeline_mutations` redesign): a complete description of what changed,
// sufficient for the model cache to patch itself without a full reload.
// Each insert/update carries the clip's full payload, never just an id.
type MutationBuffer struct {
	Inserts    []store.Clip
	Updates    []store.Clip
	Deletes    []string
	BulkShifts []BulkShift
}

// IsEmpty reports whether the buffer recorded nothing, signaling callers to
// fall back to a full reload (spec §4.4.3 step 13).
func (b MutationBuffer) IsEmpty() bool {
	return len(b.Inserts) == 0 && len(b.Updates) == 0 && len(b.Deletes) == 0 && len(b.BulkShifts) == 0
}

// ApplyMutations patches the model in place. bulkShiftLookup resolves the
// clip list a BulkShift affects at application time (the ids actually
// shifted, as returned by store.Tx.BulkShiftTrack), since the buffer itself
// only records the intent (track/anchor/delta), not every affected id.
func (m *Model) ApplyMutations(b MutationBuffer, shiftedIDs map[int][]string) {
	for _, c := range b.Inserts {
		m.upsertClip(c)
	}
	for _, c := range b.Updates {
		m.upsertClip(c)
	}
	for _, id := range b.Deletes {
		m.removeClip(id)
	}
	for i, shift := range b.BulkShifts {
		for _, id := range shiftedIDs[i] {
			if c, ok := m.clipsByID[id]; ok {
				c.TimelineStartFrame += shift.Delta
				m.upsertClip(c)
			}
		}
	}
}
