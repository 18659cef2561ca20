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

// MoveClipToTrackRecord reassigns a clip's track, keeping the original for
// undo (spec §4.4.8).
type MoveClipToTrackRecord struct {
	ClipID           string `json:"clip_id"`
	NewTrackID       string `json:"new_track_id"`
	OriginalTrackID  string `json:"original_track_id,omitempty"`
}

// MoveClipToTrackExecutor implements MoveClipToTrack.
func MoveClipToTrackExecutor(ctx context.Context, tx *store.Tx, model *timeline.Model, env *command.Envelope) (command.Result, error) {
	var rec MoveClipToTrackRecord
	if err := decode(env.Payload, &rec); err != nil {
		return command.Result{}, err
	}
	c, err := tx.GetClip(ctx, rec.ClipID)
	if err != nil {
		return command.Result{}, err
	}
	if rec.OriginalTrackID == "" {
		rec.OriginalTrackID = c.TrackID
	}
	c.TrackID = rec.NewTrackID
	if err := tx.UpdateClip(ctx, c); err != nil {
		return command.Result{}, err
	}
	env.Mutations.Updates = append(env.Mutations.Updates, c)

	payload, err := encode(rec)
	if err != nil {
		return command.Result{}, err
	}
	env.Payload = payload
	return command.Result{Success: true, ResultData: payload}, nil
}

// MoveClipToTrackUndoer restores the clip's original track.
func MoveClipToTrackUndoer(ctx context.Context, tx *store.Tx, model *timeline.Model, env *command.Envelope) error {
	var rec MoveClipToTrackRecord
	if err := decode(env.Payload, &rec); err != nil {
		return err
	}
	c, err := tx.GetClip(ctx, rec.ClipID)
	if err != nil {
		return err
	}
	c.TrackID = rec.OriginalTrackID
	if err := tx.UpdateClip(ctx, c); err != nil {
		return err
	}
	env.Mutations.Updates = append(env.Mutations.Updates, c)
	return nil
}
