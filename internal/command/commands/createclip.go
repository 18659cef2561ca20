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

// CreateClipRecord is the CreateClip/InsertClipToTimeline payload: caller
// fields plus the clip id the executor assigns the first time it runs
// (spec §4.4.8: "stable id, reused on replay").
type CreateClipRecord struct {
	ClipID             string  `json:"clip_id,omitempty"`
	TrackID            string  `json:"track_id"`
	MediaID            *string `json:"media_id,omitempty"`
	Name               string  `json:"name"`
	TimelineStartFrame int64   `json:"timeline_start_frame"`
	DurationFrames     int64   `json:"duration_frames"`
	SourceInFrame      int64   `json:"source_in_frame"`
	SourceOutFrame     int64   `json:"source_out_frame"`
	FPSNumerator       int64   `json:"fps_numerator"`
	FPSDenominator     int64   `json:"fps_denominator"`
}

// CreateClipExecutor implements CreateClip/InsertClipToTimeline.
func CreateClipExecutor(ctx context.Context, tx *store.Tx, model *timeline.Model, env *command.Envelope) (command.Result, error) {
	var rec CreateClipRecord
	if err := decode(env.Payload, &rec); err != nil {
		return command.Result{}, err
	}
	rec.ClipID = reuseOrGenerateID(rec.ClipID)

	clip := store.Clip{
		ID: rec.ClipID, ProjectID: env.ProjectID, ClipKind: store.ClipTimeline,
		OwnerSequenceID: env.SequenceID, TrackID: rec.TrackID, MediaID: rec.MediaID, Name: rec.Name,
		TimelineStartFrame: rec.TimelineStartFrame, DurationFrames: rec.DurationFrames,
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

// CreateClipUndoer deletes the created clip.
func CreateClipUndoer(ctx context.Context, tx *store.Tx, model *timeline.Model, env *command.Envelope) error {
	var rec CreateClipRecord
	if err := decode(env.Payload, &rec); err != nil {
		return err
	}
	if err := tx.DeleteClip(ctx, rec.ClipID); err != nil {
		return err
	}
	env.Mutations.Deletes = append(env.Mutations.Deletes, rec.ClipID)
	return nil
}
