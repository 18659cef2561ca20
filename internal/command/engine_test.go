// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package command_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ManuGH/xg2g/internal/command"
	"github.com/ManuGH/xg2g/internal/command/commands"
	"github.com/ManuGH/xg2g/internal/config"
	"github.com/ManuGH/xg2g/internal/store"
	"github.com/ManuGH/xg2g/internal/store/sqlite"
)

func newTestEngine(t *testing.T, cadence int) (*store.Store, *command.Engine, string, string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.sqlite")
	st, err := store.Open(path, sqlite.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	tx, err := st.Begin(ctx)
	require.NoError(t, err)
	now := time.Now()
	projectID, sequenceID, trackID := "p1", "s1", "t1"
	require.NoError(t, tx.InsertProject(ctx, store.Project{ID: projectID, Name: "Proj", CreatedAt: now, ModifiedAt: now}))
	require.NoError(t, tx.InsertSequence(ctx, store.Sequence{
		ID: sequenceID, ProjectID: projectID, Name: "Seq", Kind: store.SequenceTimeline,
		FPSNumerator: 24, FPSDenominator: 1, AudioRate: 48000, Width: 1920, Height: 1080,
	}))
	require.NoError(t, tx.InsertTrack(ctx, store.Track{
		ID: trackID, SequenceID: sequenceID, Name: "V1", TrackType: store.TrackVideo, TrackIndex: 1, Enabled: true,
	}))
	require.NoError(t, tx.Commit())

	registry := command.NewRegistry()
	commands.RegisterAll(registry)
	eng := command.NewEngine(st, registry, config.UndoStackPerSequence, cadence, 0)
	return st, eng, projectID, sequenceID, trackID
}

func mustPayload(t *testing.T, v any) json.RawMessage {
	t.Helper()
	buf, err := json.Marshal(v)
	require.NoError(t, err)
	return buf
}

func TestEngine_SplitClip_ExecuteUndoRedo(t *testing.T) {
	st, eng, projectID, sequenceID, trackID := newTestEngine(t, 50)
	ctx := context.Background()

	createPayload := mustPayload(t, commands.CreateClipRecord{
		TrackID: trackID, Name: "X", TimelineStartFrame: 0, DurationFrames: 240,
		SourceInFrame: 0, SourceOutFrame: 240, FPSNumerator: 24, FPSDenominator: 1,
	})
	res, err := eng.Execute(ctx, &command.Envelope{Type: "CreateClip", ProjectID: projectID, SequenceID: sequenceID, Payload: createPayload})
	require.NoError(t, err)
	require.True(t, res.Success)

	var created commands.CreateClipRecord
	require.NoError(t, json.Unmarshal(res.ResultData, &created))
	clipID := created.ClipID

	splitPayload := mustPayload(t, commands.SplitClipRecord{ClipID: clipID, SplitTimeFrame: 100})
	res, err = eng.Execute(ctx, &command.Envelope{Type: "SplitClip", ProjectID: projectID, SequenceID: sequenceID, Payload: splitPayload})
	require.NoError(t, err)
	require.True(t, res.Success)

	tx, err := st.Begin(ctx)
	require.NoError(t, err)
	x, err := tx.GetClip(ctx, clipID)
	require.NoError(t, err)
	require.Equal(t, int64(100), x.DurationFrames)
	require.Equal(t, int64(100), x.SourceOutFrame)

	var split commands.SplitClipRecord
	require.NoError(t, json.Unmarshal(res.ResultData, &split))
	y, err := tx.GetClip(ctx, split.NewClipID)
	require.NoError(t, err)
	require.Equal(t, int64(100), y.TimelineStartFrame)
	require.Equal(t, int64(140), y.DurationFrames)
	require.Equal(t, int64(100), y.SourceInFrame)
	require.Equal(t, int64(240), y.SourceOutFrame)
	require.NoError(t, tx.Rollback())

	// Undo: X restored, Y absent.
	_, err = eng.Undo(ctx, sequenceID)
	require.NoError(t, err)

	tx, err = st.Begin(ctx)
	require.NoError(t, err)
	x, err = tx.GetClip(ctx, clipID)
	require.NoError(t, err)
	require.Equal(t, int64(240), x.DurationFrames)
	require.Equal(t, int64(240), x.SourceOutFrame)
	_, err = tx.GetClip(ctx, split.NewClipID)
	require.Error(t, err)
	require.NoError(t, tx.Rollback())

	// Redo: Y re-created with the same id.
	_, err = eng.Redo(ctx, sequenceID)
	require.NoError(t, err)

	tx, err = st.Begin(ctx)
	require.NoError(t, err)
	y2, err := tx.GetClip(ctx, split.NewClipID)
	require.NoError(t, err)
	require.Equal(t, split.NewClipID, y2.ID)
	require.NoError(t, tx.Rollback())
}

func TestEngine_Insert_RipplesAndUndoes(t *testing.T) {
	st, eng, projectID, sequenceID, trackID := newTestEngine(t, 50)
	ctx := context.Background()

	mustCreate := func(start, duration int64) string {
		res, err := eng.Execute(ctx, &command.Envelope{
			Type: "CreateClip", ProjectID: projectID, SequenceID: sequenceID,
			Payload: mustPayload(t, commands.CreateClipRecord{
				TrackID: trackID, TimelineStartFrame: start, DurationFrames: duration,
				SourceInFrame: 0, SourceOutFrame: duration, FPSNumerator: 24, FPSDenominator: 1,
			}),
		})
		require.NoError(t, err)
		var rec commands.CreateClipRecord
		require.NoError(t, json.Unmarshal(res.ResultData, &rec))
		return rec.ClipID
	}

	mustCreate(0, 100)
	bID := mustCreate(150, 100)
	cID := mustCreate(300, 50)

	res, err := eng.Execute(ctx, &command.Envelope{
		Type: "Insert", ProjectID: projectID, SequenceID: sequenceID,
		Payload: mustPayload(t, commands.InsertRecord{
			TrackID: trackID, InsertTimeFrame: 150, DurationFrames: 50,
			SourceInFrame: 0, SourceOutFrame: 50, FPSNumerator: 24, FPSDenominator: 1,
		}),
	})
	require.NoError(t, err)
	require.True(t, res.Success)

	var inserted commands.InsertRecord
	require.NoError(t, json.Unmarshal(res.ResultData, &inserted))
	require.NotEmpty(t, inserted.ClipID)

	tx, err := st.Begin(ctx)
	require.NoError(t, err)
	b, err := tx.GetClip(ctx, bID)
	require.NoError(t, err)
	require.Equal(t, int64(200), b.TimelineStartFrame)
	c, err := tx.GetClip(ctx, cID)
	require.NoError(t, err)
	require.Equal(t, int64(350), c.TimelineStartFrame)
	require.NoError(t, tx.Rollback())

	_, err = eng.Undo(ctx, sequenceID)
	require.NoError(t, err)

	tx, err = st.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.GetClip(ctx, inserted.ClipID)
	require.Error(t, err)
	b, err = tx.GetClip(ctx, bID)
	require.NoError(t, err)
	require.Equal(t, int64(150), b.TimelineStartFrame)
	c, err = tx.GetClip(ctx, cID)
	require.NoError(t, err)
	require.Equal(t, int64(300), c.TimelineStartFrame)
	require.NoError(t, tx.Rollback())
}

func TestEngine_RippleEdit_InEdgePreservesOwnPositionAndUndoRestores(t *testing.T) {
	st, eng, projectID, sequenceID, trackID := newTestEngine(t, 50)
	ctx := context.Background()

	mustCreate := func(start, duration int64) string {
		res, err := eng.Execute(ctx, &command.Envelope{
			Type: "CreateClip", ProjectID: projectID, SequenceID: sequenceID,
			Payload: mustPayload(t, commands.CreateClipRecord{
				TrackID: trackID, TimelineStartFrame: start, DurationFrames: duration,
				SourceInFrame: 100, SourceOutFrame: 100 + duration, FPSNumerator: 24, FPSDenominator: 1,
			}),
		})
		require.NoError(t, err)
		var rec commands.CreateClipRecord
		require.NoError(t, json.Unmarshal(res.ResultData, &rec))
		return rec.ClipID
	}

	aID := mustCreate(0, 500)
	bID := mustCreate(500, 300)

	res, err := eng.Execute(ctx, &command.Envelope{
		Type: "RippleEdit", ProjectID: projectID, SequenceID: sequenceID,
		Payload: mustPayload(t, commands.RippleEditRecord{ClipID: bID, Edge: "in", DeltaFrames: 200}),
	})
	require.NoError(t, err)
	require.True(t, res.Success)

	tx, err := st.Begin(ctx)
	require.NoError(t, err)
	b, err := tx.GetClip(ctx, bID)
	require.NoError(t, err)
	require.Equal(t, int64(500), b.TimelineStartFrame, "trimming a clip's own in-edge must not move its own start")
	require.Equal(t, int64(100), b.DurationFrames)
	require.Equal(t, int64(300), b.SourceInFrame)
	require.NoError(t, tx.Rollback())

	_, err = eng.Undo(ctx, sequenceID)
	require.NoError(t, err)

	tx, err = st.Begin(ctx)
	require.NoError(t, err)
	a, err := tx.GetClip(ctx, aID)
	require.NoError(t, err)
	require.Equal(t, int64(0), a.TimelineStartFrame)
	b, err = tx.GetClip(ctx, bID)
	require.NoError(t, err)
	require.Equal(t, int64(500), b.TimelineStartFrame)
	require.Equal(t, int64(300), b.DurationFrames)
	require.Equal(t, int64(100), b.SourceInFrame)
	require.NoError(t, tx.Rollback())
}

func TestEngine_Replay_RestoresSnapshotThenReexecutesTail(t *testing.T) {
	// cadence=3 so the 3rd CreateClip forces a snapshot write (spec §4.4.3
	// step 11), letting this test reach a post-snapshot target without
	// committing 50+ commands.
	st, eng, projectID, sequenceID, trackID := newTestEngine(t, 3)
	ctx := context.Background()

	var lastSeqNum int64
	mustCreate := func(start, duration int64) string {
		env := &command.Envelope{
			Type: "CreateClip", ProjectID: projectID, SequenceID: sequenceID,
			Payload: mustPayload(t, commands.CreateClipRecord{
				TrackID: trackID, TimelineStartFrame: start, DurationFrames: duration,
				SourceInFrame: 0, SourceOutFrame: duration, FPSNumerator: 24, FPSDenominator: 1,
			}),
		}
		res, err := eng.Execute(ctx, env)
		require.NoError(t, err)
		require.True(t, res.Success)
		lastSeqNum = env.SequenceNumber
		var rec commands.CreateClipRecord
		require.NoError(t, json.Unmarshal(res.ResultData, &rec))
		return rec.ClipID
	}

	// Five clips: seq 1-3 land before/at the cadence-3 snapshot boundary,
	// seq 4-5 are the tail Replay must deterministically re-execute.
	for i, start := range []int64{0, 100, 200, 300, 400} {
		mustCreate(start, 50)
		_ = i
	}
	target := lastSeqNum

	tx, err := st.Begin(ctx)
	require.NoError(t, err)
	want, err := tx.ListClipsBySequence(ctx, sequenceID)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())
	require.Len(t, want, 5, "directly-executed state must have all five clips")

	require.NoError(t, eng.Replay(ctx, sequenceID, target))

	tx, err = st.Begin(ctx)
	require.NoError(t, err)
	got, err := tx.ListClipsBySequence(ctx, sequenceID)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	require.Len(t, got, len(want), "replay past the snapshot boundary must reconstruct every clip, not just the post-snapshot tail")
	byID := make(map[string]store.Clip, len(want))
	for _, c := range want {
		byID[c.ID] = c
	}
	for _, c := range got {
		w, ok := byID[c.ID]
		require.True(t, ok, "replayed clip %q not present in directly-executed state", c.ID)
		require.Equal(t, w.TimelineStartFrame, c.TimelineStartFrame)
		require.Equal(t, w.DurationFrames, c.DurationFrames)
	}
}

func TestEngine_VideoOverlap_RejectedAndNoStateMutated(t *testing.T) {
	_, eng, projectID, sequenceID, trackID := newTestEngine(t, 50)
	ctx := context.Background()

	res, err := eng.Execute(ctx, &command.Envelope{
		Type: "CreateClip", ProjectID: projectID, SequenceID: sequenceID,
		Payload: mustPayload(t, commands.CreateClipRecord{
			TrackID: trackID, TimelineStartFrame: 0, DurationFrames: 100,
			SourceInFrame: 0, SourceOutFrame: 100, FPSNumerator: 24, FPSDenominator: 1,
		}),
	})
	require.NoError(t, err)
	require.True(t, res.Success)

	_, err = eng.Execute(ctx, &command.Envelope{
		Type: "CreateClip", ProjectID: projectID, SequenceID: sequenceID,
		Payload: mustPayload(t, commands.CreateClipRecord{
			TrackID: trackID, TimelineStartFrame: 50, DurationFrames: 100,
			SourceInFrame: 0, SourceOutFrame: 100, FPSNumerator: 24, FPSDenominator: 1,
		}),
	})
	require.Error(t, err)

	// A failed execute must not have advanced the undo head: Undo should
	// still reach "nothing to undo" after exactly one successful command.
	_, err = eng.Undo(ctx, sequenceID)
	require.NoError(t, err)
	_, err = eng.Undo(ctx, sequenceID)
	require.Error(t, err)
}
