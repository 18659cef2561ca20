// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package timeline

import (
	"testing"

	"github.com/ManuGH/xg2g/internal/store"
	"github.com/stretchr/testify/require"
)

func clip(id, trackID string, start, duration int64) store.Clip {
	return store.Clip{
		ID: id, TrackID: trackID, TimelineStartFrame: start, DurationFrames: duration,
		SourceInFrame: 0, SourceOutFrame: duration, FPSNumerator: 24, FPSDenominator: 1, Enabled: true,
	}
}

func TestReload_SortsClipsByStart(t *testing.T) {
	m := NewModel("s1")
	m.Reload(
		[]store.Track{{ID: "t1", TrackType: store.TrackVideo}},
		[]store.Clip{clip("B", "t1", 150, 100), clip("A", "t1", 0, 100)},
		nil,
	)
	clips := m.ClipsOnTrack("t1")
	require.Len(t, clips, 2)
	require.Equal(t, "A", clips[0].ID)
	require.Equal(t, "B", clips[1].ID)
}

func TestGaps_BeforeBetweenAfter(t *testing.T) {
	m := NewModel("s1")
	m.Reload(
		[]store.Track{{ID: "t1", TrackType: store.TrackVideo}},
		[]store.Clip{clip("A", "t1", 10, 100), clip("B", "t1", 200, 50)},
		nil,
	)
	gaps := m.Gaps("t1")
	require.Len(t, gaps, 3)
	require.Equal(t, Gap{TrackID: "t1", StartFrame: 0, DurationFrames: 10}, gaps[0])
	require.Equal(t, Gap{TrackID: "t1", StartFrame: 110, DurationFrames: 90}, gaps[1])
	require.Equal(t, Gap{TrackID: "t1", StartFrame: 250, DurationFrames: -1}, gaps[2])
}

func TestGaps_InvalidatedByMutation(t *testing.T) {
	m := NewModel("s1")
	m.Reload(
		[]store.Track{{ID: "t1", TrackType: store.TrackVideo}},
		[]store.Clip{clip("A", "t1", 0, 100)},
		nil,
	)

	gaps := m.Gaps("t1")
	require.Len(t, gaps, 1)
	require.Equal(t, Gap{TrackID: "t1", StartFrame: 100, DurationFrames: -1}, gaps[0])

	m.ApplyMutations(MutationBuffer{Inserts: []store.Clip{clip("B", "t1", 200, 50)}}, nil)

	gaps = m.Gaps("t1")
	require.Len(t, gaps, 2)
	require.Equal(t, Gap{TrackID: "t1", StartFrame: 100, DurationFrames: 100}, gaps[0])
	require.Equal(t, Gap{TrackID: "t1", StartFrame: 250, DurationFrames: -1}, gaps[1])
}

func TestExpandLinkGroup_TransitiveAndRespectsEnabled(t *testing.T) {
	m := NewModel("s1")
	m.Reload(
		[]store.Track{{ID: "t1"}, {ID: "t2"}},
		[]store.Clip{clip("V", "t1", 0, 100), clip("A", "t2", 0, 100), clip("X", "t2", 500, 10)},
		[]store.ClipLink{
			{LinkGroupID: "g1", ClipID: "V", Role: store.LinkVideo, Enabled: true},
			{LinkGroupID: "g1", ClipID: "A", Role: store.LinkAudio, Enabled: true},
			{LinkGroupID: "g2", ClipID: "X", Role: store.LinkAudio, Enabled: false},
		},
	)
	expanded := m.ExpandLinkGroup([]string{"V"})
	require.ElementsMatch(t, []string{"V", "A"}, expanded)

	soloX := m.ExpandLinkGroup([]string{"X"})
	require.ElementsMatch(t, []string{"X"}, soloX) // link disabled, no expansion
}

func TestEdgeMovementBounds_InEdgeClampedByPreviousClip(t *testing.T) {
	m := NewModel("s1")
	m.Reload(
		[]store.Track{{ID: "t1"}},
		[]store.Clip{
			{ID: "A", TrackID: "t1", TimelineStartFrame: 0, DurationFrames: 100, SourceInFrame: 0, SourceOutFrame: 100},
			{ID: "B", TrackID: "t1", TimelineStartFrame: 150, DurationFrames: 100, SourceInFrame: 100, SourceOutFrame: 250},
		},
		nil,
	)
	minD, maxD, err := m.EdgeMovementBounds("B", EdgeIn)
	require.NoError(t, err)
	require.Equal(t, int64(-50), minD) // A's end (100) is the tighter bound vs. source_in room of -100
	require.Equal(t, int64(99), maxD)  // duration-1
}

func TestEdgeMovementBounds_OutEdgeClampedByNextClipAndSource(t *testing.T) {
	m := NewModel("s1")
	m.Reload(
		[]store.Track{{ID: "t1"}},
		[]store.Clip{
			{ID: "A", TrackID: "t1", TimelineStartFrame: 0, DurationFrames: 100, SourceInFrame: 0, SourceOutFrame: 110},
			{ID: "B", TrackID: "t1", TimelineStartFrame: 150, DurationFrames: 50, SourceInFrame: 0, SourceOutFrame: 50},
		},
		nil,
	)
	minD, maxD, err := m.EdgeMovementBounds("A", EdgeOut)
	require.NoError(t, err)
	require.Equal(t, int64(-99), minD)
	// source room = 110 - (0+100) = 10; next clip gap = 150-100 = 50; min of the two is 10.
	require.Equal(t, int64(10), maxD)
}

func TestApplyMutations_InsertUpdateDeleteAndBulkShift(t *testing.T) {
	m := NewModel("s1")
	m.Reload([]store.Track{{ID: "t1"}}, []store.Clip{clip("A", "t1", 0, 100), clip("B", "t1", 150, 50)}, nil)

	buf := MutationBuffer{
		Inserts:    []store.Clip{clip("N", "t1", 150, 50)},
		Deletes:    nil,
		BulkShifts: []BulkShift{{TrackID: "t1", Anchor: 150, Delta: 50}},
	}
	m.ApplyMutations(buf, map[int][]string{0: {"B"}})

	clips := m.ClipsOnTrack("t1")
	require.Len(t, clips, 3)
	byID := map[string]store.Clip{}
	for _, c := range clips {
		byID[c.ID] = c
	}
	require.Equal(t, int64(0), byID["A"].TimelineStartFrame)
	require.Equal(t, int64(150), byID["N"].TimelineStartFrame)
	require.Equal(t, int64(200), byID["B"].TimelineStartFrame)
}
