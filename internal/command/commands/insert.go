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

// InsertRecord is the Insert payload: ripple every clip on TrackID at or
// after InsertTimeFrame forward by DurationFrames, then create the new clip
// in the gap this opens (spec §4.4.8, §8 scenario 2).
type InsertRecord struct {
	ClipID             string  `json:"clip_id,omitempty"`
	TrackID            string  `json:"track_id"`
	InsertTimeFrame    int64   `json:"insert_time_frame"`
	DurationFrames     int64   `json:"duration_frames"`
	MediaID            *string `json:"media_id,omitempty"`
	Name               string  `json:"name"`
	SourceInFrame      int64   `json:"source_in_frame"`
	SourceOutFrame     int64   `json:"source_out_frame"`
	FPSNumerator       int64   `json:"fps_numerator"`
	FPSDenominator     int64   `json:"fps_denominator"`
}

// InsertExecutor implements Insert.
func InsertExecutor(ctx context.Context, tx *store.Tx, model *timeline.Model, env *command.Envelope) (command.Result, error) {
	var rec InsertRecord
	if err := decode(env.Payload, &rec); err != nil {
		return command.Result{}, err
	}
	rec.ClipID = reuseOrGenerateID(rec.ClipID)

	shifted, err := tx.BulkShiftTrack(ctx, rec.TrackID, rec.InsertTimeFrame, rec.DurationFrames)
	if err != nil {
		return command.Result{}, err
	}
	shiftIdx := len(env.Mutations.BulkShifts)
	env.Mutations.BulkShifts = append(env.Mutations.BulkShifts,
		timeline.BulkShift{TrackID: rec.TrackID, Anchor: rec.InsertTimeFrame, Delta: rec.DurationFrames})
	if env.ShiftedIDsByBulkShift == nil {
		env.ShiftedIDsByBulkShift = map[int][]string{}
	}
	env.ShiftedIDsByBulkShift[shiftIdx] = shifted

	clip := store.Clip{
		ID: rec.ClipID, ProjectID: env.ProjectID, ClipKind: store.ClipTimeline,
		OwnerSequenceID: env.SequenceID, TrackID: rec.TrackID, MediaID: rec.MediaID, Name: rec.Name,
		TimelineStartFrame: rec.InsertTimeFrame, DurationFrames: rec.DurationFrames,
		SourceInFrame: rec.SourceInFrame, SourceOutFrame: rec.SourceOutFrame,
		FPSNumerator: rec.FPSNumerator, FPSDenominator: rec.FPSDenominator, Enabled: true,
	}
	if err := tx.InsertClip(ctx, clip); err != nil {
		return command.Result{}, err
	}
	env.Mutations.Inserts = append(env.Mutations.Inserts, clip)

	payload, err := encode(rec)
	if err != nil {
		return command.Result{}, err
	}
	env.Payload = payload
	return command.Result{Success: true, ResultData: payload}, nil
}

// InsertUndoer deletes the inserted clip and shifts the rippled clips back.
func InsertUndoer(ctx context.Context, tx *store.Tx, model *timeline.Model, env *command.Envelope) error {
	var rec InsertRecord
	if err := decode(env.Payload, &rec); err != nil {
		return err
	}

	if err := tx.DeleteClip(ctx, rec.ClipID); err != nil {
		return err
	}
	env.Mutations.Deletes = append(env.Mutations.Deletes, rec.ClipID)

	shifted, err := tx.BulkShiftTrack(ctx, rec.TrackID, rec.InsertTimeFrame+rec.DurationFrames, -rec.DurationFrames)
	if err != nil {
		return err
	}
	shiftIdx := len(env.Mutations.BulkShifts)
	env.Mutations.BulkShifts = append(env.Mutations.BulkShifts,
		timeline.BulkShift{TrackID: rec.TrackID, Anchor: rec.InsertTimeFrame + rec.DurationFrames, Delta: -rec.DurationFrames})
	if env.ShiftedIDsByBulkShift == nil {
		env.ShiftedIDsByBulkShift = map[int][]string{}
	}
	env.ShiftedIDsByBulkShift[shiftIdx] = shifted
	return nil
}
