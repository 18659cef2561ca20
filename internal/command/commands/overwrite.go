// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package commands

import (
	"context"

	"github.com/ManuGH/xg2g/internal/command"
	"github.com/ManuGH/xg2g/internal/store"
	"github.com/ManuGH/xg2g/internal/timeline"
)

// OverwriteRecord is the Overwrite payload. Removed captures the full state
// of every clip the overwrite displaced, the first time the command runs,
// so undo can recreate them exactly (spec §4.4.8: "find overlaps ...; if a
// single existing clip is fully covered, reuse its id").
type OverwriteRecord struct {
	ClipID             string       `json:"clip_id,omitempty"`
	TrackID            string       `json:"track_id"`
	OverwriteTimeFrame int64        `json:"overwrite_time_frame"`
	DurationFrames     int64        `json:"duration_frames"`
	MediaID            *string      `json:"media_id,omitempty"`
	Name               string       `json:"name"`
	SourceInFrame      int64        `json:"source_in_frame"`
	SourceOutFrame     int64        `json:"source_out_frame"`
	FPSNumerator       int64        `json:"fps_numerator"`
	FPSDenominator     int64        `json:"fps_denominator"`
	Removed            []store.Clip `json:"removed,omitempty"`
	ReusedExistingID   bool         `json:"reused_existing_id,omitempty"`
}

// OverwriteExecutor implements Overwrite.
func OverwriteExecutor(ctx context.Context, tx *store.Tx, model *timeline.Model, env *command.Envelope) (command.Result, error) {
	var rec OverwriteRecord
	if err := decode(env.Payload, &rec); err != nil {
		return command.Result{}, err
	}

	windowEnd := rec.OverwriteTimeFrame + rec.DurationFrames
	firstRun := rec.Removed == nil

	var overlapping []store.Clip
	for _, c := range model.ClipsOnTrack(rec.TrackID) {
		if c.TimelineStartFrame < windowEnd && c.End() > rec.OverwriteTimeFrame {
			overlapping = append(overlapping, c)
		}
	}

	if firstRun {
		fullyCovered := len(overlapping) == 1 &&
			overlapping[0].TimelineStartFrame >= rec.OverwriteTimeFrame && overlapping[0].End() <= windowEnd
		if fullyCovered {
			rec.ClipID = overlapping[0].ID
			rec.ReusedExistingID = true
			rec.Removed = []store.Clip{overlapping[0]}
		} else {
			rec.ClipID = reuseOrGenerateID(rec.ClipID)
			rec.Removed = overlapping
		}
	}

	if !rec.ReusedExistingID {
		for _, c := range overlapping {
			if err := tx.DeleteClip(ctx, c.ID); err != nil {
				return command.Result{}, err
			}
			env.Mutations.Deletes = append(env.Mutations.Deletes, c.ID)
		}
	}

	clip := store.Clip{
		ID: rec.ClipID, ProjectID: env.ProjectID, ClipKind: store.ClipTimeline,
		OwnerSequenceID: env.SequenceID, TrackID: rec.TrackID, MediaID: rec.MediaID, Name: rec.Name,
		TimelineStartFrame: rec.OverwriteTimeFrame, DurationFrames: rec.DurationFrames,
		SourceInFrame: rec.SourceInFrame, SourceOutFrame: rec.SourceOutFrame,
		FPSNumerator: rec.FPSNumerator, FPSDenominator: rec.FPSDenominator, Enabled: true,
	}
	if rec.ReusedExistingID {
		if err := tx.UpdateClip(ctx, clip); err != nil {
			return command.Result{}, err
		}
		env.Mutations.Updates = append(env.Mutations.Updates, clip)
	} else {
		if err := tx.InsertClip(ctx, clip); err != nil {
			return command.Result{}, err
		}
		env.Mutations.Inserts = append(env.Mutations.Inserts, clip)
	}

	payload, err := encode(rec)
	if err != nil {
		return command.Result{}, err
	}
	env.Payload = payload
	return command.Result{Success: true, ResultData: payload}, nil
}

// OverwriteUndoer reverses an Overwrite: restores the reused clip's
// original state, or deletes the new clip and recreates every displaced one.
func OverwriteUndoer(ctx context.Context, tx *store.Tx, model *timeline.Model, env *command.Envelope) error {
	var rec OverwriteRecord
	if err := decode(env.Payload, &rec); err != nil {
		return err
	}

	if rec.ReusedExistingID {
		orig := rec.Removed[0]
		if err := tx.UpdateClip(ctx, orig); err != nil {
			return err
		}
		env.Mutations.Updates = append(env.Mutations.Updates, orig)
		return nil
	}

	if err := tx.DeleteClip(ctx, rec.ClipID); err != nil {
		return err
	}
	env.Mutations.Deletes = append(env.Mutations.Deletes, rec.ClipID)

	for _, c := range rec.Removed {
		if err := tx.InsertClip(ctx, c); err != nil {
			return err
		}
		env.Mutations.Inserts = append(env.Mutations.Inserts, c)
	}
	return nil
}
