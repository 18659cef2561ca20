// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ManuGH/xg2g/internal/errs"
	"github.com/ManuGH/xg2g/internal/store/sqlite"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.sqlite")
	s, err := Open(path, sqlite.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// seedProjectSequenceTrack creates a minimal project/sequence/video-track
// fixture and returns their ids.
func seedProjectSequenceTrack(t *testing.T, s *Store) (projectID, sequenceID, trackID string) {
	t.Helper()
	ctx := context.Background()
	tx, err := s.Begin(ctx)
	require.NoError(t, err)

	now := time.Now()
	projectID, sequenceID, trackID = "p1", "s1", "t1"
	require.NoError(t, tx.InsertProject(ctx, Project{ID: projectID, Name: "Proj", CreatedAt: now, ModifiedAt: now}))
	require.NoError(t, tx.InsertSequence(ctx, Sequence{
		ID: sequenceID, ProjectID: projectID, Name: "Seq", Kind: SequenceTimeline,
		FPSNumerator: 24, FPSDenominator: 1, AudioRate: 48000, Width: 1920, Height: 1080,
	}))
	require.NoError(t, tx.InsertTrack(ctx, Track{
		ID: trackID, SequenceID: sequenceID, Name: "V1", TrackType: TrackVideo, TrackIndex: 1, Enabled: true,
	}))
	require.NoError(t, tx.Commit())
	return
}

func TestSchemaMigration_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.sqlite")
	s1, err := Open(path, sqlite.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path, sqlite.DefaultConfig())
	require.NoError(t, err)
	defer s2.Close()
	require.NoError(t, s2.Ping(context.Background()))
}

func TestVideoOverlap_RejectedOnInsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, _, trackID := seedProjectSequenceTrack(t, s)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	clipA := Clip{
		ID: "a", ProjectID: "p1", ClipKind: ClipTimeline, OwnerSequenceID: "s1", TrackID: trackID,
		TimelineStartFrame: 0, DurationFrames: 100, SourceInFrame: 0, SourceOutFrame: 100,
		FPSNumerator: 24, FPSDenominator: 1, Enabled: true,
	}
	require.NoError(t, tx.InsertClip(ctx, clipA))

	clipB := clipA
	clipB.ID = "b"
	clipB.TimelineStartFrame = 50 // overlaps [0,100)
	err = tx.InsertClip(ctx, clipB)
	require.Error(t, err)
	var overlapErr *errs.VideoOverlapError
	require.ErrorAs(t, err, &overlapErr)
	require.Equal(t, "video_overlap", errs.Kind(err))
}

func TestAudioOverlap_Allowed(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	projectID, sequenceID, _ := seedProjectSequenceTrack(t, s)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.InsertTrack(ctx, Track{
		ID: "a1", SequenceID: sequenceID, Name: "A1", TrackType: TrackAudio, TrackIndex: 1, Enabled: true,
	}))
	require.NoError(t, tx.Commit())

	tx, err = s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	clipA := Clip{
		ID: "a", ProjectID: projectID, ClipKind: ClipTimeline, OwnerSequenceID: sequenceID, TrackID: "a1",
		TimelineStartFrame: 0, DurationFrames: 100, SourceInFrame: 0, SourceOutFrame: 100,
		FPSNumerator: 24, FPSDenominator: 1, Enabled: true,
	}
	require.NoError(t, tx.InsertClip(ctx, clipA))
	clipB := clipA
	clipB.ID = "b"
	clipB.TimelineStartFrame = 50
	require.NoError(t, tx.InsertClip(ctx, clipB)) // audio overlap allowed
	require.NoError(t, tx.Commit())
}

func TestCascadeDelete_ProjectRemovesEverything(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	projectID, sequenceID, trackID := seedProjectSequenceTrack(t, s)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.InsertClip(ctx, Clip{
		ID: "c1", ProjectID: projectID, ClipKind: ClipTimeline, OwnerSequenceID: sequenceID, TrackID: trackID,
		TimelineStartFrame: 0, DurationFrames: 10, SourceInFrame: 0, SourceOutFrame: 10,
		FPSNumerator: 24, FPSDenominator: 1, Enabled: true,
	}))
	require.NoError(t, tx.UpsertProperty(ctx, Property{ID: "pr1", ClipID: "c1", PropertyName: "opacity", PropertyValue: `{"value":1}`}))
	require.NoError(t, tx.Commit())

	tx, err = s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.DeleteProject(ctx, projectID))
	require.NoError(t, tx.Commit())

	tx, err = s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()
	_, err = tx.GetClip(ctx, "c1")
	require.ErrorIs(t, err, errs.ErrNotFound)
	props, err := tx.ListPropertiesByClip(ctx, "c1")
	require.NoError(t, err)
	require.Empty(t, props)
}

func TestBulkShiftTrack_CollisionSafeOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	projectID, sequenceID, trackID := seedProjectSequenceTrack(t, s)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	// A(0,100) B(150,100) C(300,50) -- Insert(150,50) inserts N and ripples B,C by +50.
	for _, c := range []Clip{
		{ID: "A", TimelineStartFrame: 0, DurationFrames: 100},
		{ID: "B", TimelineStartFrame: 150, DurationFrames: 100},
		{ID: "C", TimelineStartFrame: 300, DurationFrames: 50},
	} {
		c.ProjectID, c.OwnerSequenceID, c.TrackID = projectID, sequenceID, trackID
		c.ClipKind, c.Enabled = ClipTimeline, true
		c.SourceOutFrame = c.DurationFrames
		c.FPSNumerator, c.FPSDenominator = 24, 1
		require.NoError(t, tx.InsertClip(ctx, c))
	}
	require.NoError(t, tx.Commit())

	tx, err = s.Begin(ctx)
	require.NoError(t, err)
	shifted, err := tx.BulkShiftTrack(ctx, trackID, 150, 50)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"B", "C"}, shifted)
	require.NoError(t, tx.Commit())

	tx, err = s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()
	clips, err := tx.ListClipsByTrack(ctx, trackID)
	require.NoError(t, err)
	byID := map[string]Clip{}
	for _, c := range clips {
		byID[c.ID] = c
	}
	require.Equal(t, int64(0), byID["A"].TimelineStartFrame)
	require.Equal(t, int64(200), byID["B"].TimelineStartFrame)
	require.Equal(t, int64(350), byID["C"].TimelineStartFrame)
}

func TestUniqueMediaFilePath(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	projectID, _, _ := seedProjectSequenceTrack(t, s)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	m := Media{ID: "m1", ProjectID: projectID, Name: "clip.mov", FilePath: "/media/clip.mov",
		DurationFrames: 240, FPSNumerator: 24, FPSDenominator: 1}
	require.NoError(t, tx.InsertMedia(ctx, m))

	dup := m
	dup.ID = "m2"
	err = tx.InsertMedia(ctx, dup)
	require.Error(t, err)
	require.Equal(t, "constraint_violation", errs.Kind(err))
}

func TestEventLog_WalkToRoot(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, sequenceID, _ := seedProjectSequenceTrack(t, s)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	require.NoError(t, tx.AppendCommand(ctx, Command{
		ID: "cmd1", SequenceNumber: 1, SequenceID: sequenceID, CommandType: "CreateClip",
		CommandArgs: "{}", Timestamp: time.Now(), PlayheadNum: 24, PlayheadDen: 1,
	}))
	parent := int64(1)
	require.NoError(t, tx.AppendCommand(ctx, Command{
		ID: "cmd2", SequenceNumber: 2, SequenceID: sequenceID, CommandType: "SplitClip",
		CommandArgs: "{}", ParentSequenceNumber: &parent, Timestamp: time.Now(), PlayheadNum: 24, PlayheadDen: 1,
	}))

	chain, err := tx.WalkToRoot(ctx, 2)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	require.Equal(t, int64(1), chain[0].SequenceNumber)
	require.Equal(t, int64(2), chain[1].SequenceNumber)

	max, err := tx.GetMaxSequenceNumber(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), max)
}

func TestSnapshot_LatestAtOrBefore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, sequenceID, _ := seedProjectSequenceTrack(t, s)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	require.NoError(t, tx.WriteSnapshot(ctx, Snapshot{SequenceID: sequenceID, SequenceNumber: 5, ClipState: "[]", CreatedAt: time.Now()}))
	require.NoError(t, tx.WriteSnapshot(ctx, Snapshot{SequenceID: sequenceID, SequenceNumber: 10, ClipState: "[]", CreatedAt: time.Now()}))

	snap, ok, err := tx.LatestSnapshotAtOrBefore(ctx, sequenceID, 7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(5), snap.SequenceNumber)

	_, ok, err = tx.LatestSnapshotAtOrBefore(ctx, sequenceID, 1)
	require.NoError(t, err)
	require.False(t, ok)
}
