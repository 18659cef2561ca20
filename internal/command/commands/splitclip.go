// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package commands

import (
	"context"

	"github.com/ManuGH/xg2g/internal/command"
	"github.com/ManuGH/xg2g/internal/errs"
	"github.com/ManuGH/xg2g/internal/store"
	"github.com/ManuGH/xg2g/internal/timeline"
)

// SplitClipRecord is the SplitClip payload. OriginalDuration/OriginalSourceOut
// are captured on first execute (never on redo, since the clip has already
// been restored to that state by an intervening undo); NewClipID is
// generated once and reused on redo so the re-created clip matches the id
// recorded in the original command (spec §8 scenario 1).
type SplitClipRecord struct {
	ClipID            string `json:"clip_id"`
	SplitTimeFrame    int64  `json:"split_time_frame"`
	NewClipID         string `json:"new_clip_id,omitempty"`
	OriginalDuration  int64  `json:"original_duration,omitempty"`
	OriginalSourceOut int64  `json:"original_source_out,omitempty"`
}

// SplitClipExecutor implements SplitClip(clip_id, split_time).
func SplitClipExecutor(ctx context.Context, tx *store.Tx, model *timeline.Model, env *command.Envelope) (command.Result, error) {
	var rec SplitClipRecord
	if err := decode(env.Payload, &rec); err != nil {
		return command.Result{}, err
	}

	c, err := tx.GetClip(ctx, rec.ClipID)
	if err != nil {
		return command.Result{}, err
	}
	if rec.SplitTimeFrame <= c.TimelineStartFrame || rec.SplitTimeFrame >= c.End() {
		return command.Result{}, errs.InvalidArgument("split_time %d must be strictly inside clip %s [%d,%d)",
			rec.SplitTimeFrame, c.ID, c.TimelineStartFrame, c.End())
	}

	if rec.OriginalDuration == 0 {
		rec.OriginalDuration = c.DurationFrames
		rec.OriginalSourceOut = c.SourceOutFrame
	}
	rec.NewClipID = reuseOrGenerateID(rec.NewClipID)

	firstDuration := rec.SplitTimeFrame - c.TimelineStartFrame
	secondDuration := c.DurationFrames - firstDuration

	second := c
	second.ID = rec.NewClipID
	second.TimelineStartFrame = rec.SplitTimeFrame
	second.DurationFrames = secondDuration
	second.SourceInFrame = c.SourceInFrame + firstDuration
	second.SourceOutFrame = c.SourceOutFrame
	if err := tx.InsertClip(ctx, second); err != nil {
		return command.Result{}, err
	}

	first := c
	first.DurationFrames = firstDuration
	first.SourceOutFrame = c.SourceInFrame + firstDuration
	if err := tx.UpdateClip(ctx, first); err != nil {
		return command.Result{}, err
	}

	env.Mutations.Updates = append(env.Mutations.Updates, first)
	env.Mutations.Inserts = append(env.Mutations.Inserts, second)

	payload, err := encode(rec)
	if err != nil {
		return command.Result{}, err
	}
	env.Payload = payload
	return command.Result{Success: true, ResultData: payload}, nil
}

// SplitClipUndoer restores the original clip and deletes the split-off clip.
func SplitClipUndoer(ctx context.Context, tx *store.Tx, model *timeline.Model, env *command.Envelope) error {
	var rec SplitClipRecord
	if err := decode(env.Payload, &rec); err != nil {
		return err
	}

	if err := tx.DeleteClip(ctx, rec.NewClipID); err != nil {
		return err
	}
	env.Mutations.Deletes = append(env.Mutations.Deletes, rec.NewClipID)

	c, err := tx.GetClip(ctx, rec.ClipID)
	if err != nil {
		return err
	}
	c.DurationFrames = rec.OriginalDuration
	c.SourceOutFrame = rec.OriginalSourceOut
	if err := tx.UpdateClip(ctx, c); err != nil {
		return err
	}
	env.Mutations.Updates = append(env.Mutations.Updates, c)
	return nil
}
