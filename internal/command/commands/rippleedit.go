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

// RippleEditRecord is the RippleEdit(edge, Δ) payload. OriginalClip and
// ShiftedTrackIDs are captured on first run for undo (spec §4.4.8, §8
// scenario 3: "record original state for undo and the list of shifted clip
// ids").
type RippleEditRecord struct {
	ClipID        string      `json:"clip_id"`
	Edge          string      `json:"edge"` // "in" or "out"
	DeltaFrames   int64       `json:"delta_frames"`
	OriginalClip  *store.Clip `json:"original_clip,omitempty"`
	AppliedDelta  int64       `json:"applied_delta,omitempty"`
	ShiftTrackIDs []string    `json:"shift_track_ids,omitempty"`
	// ShiftAnchors[i] is the anchor frame used for the forward shift on
	// ShiftTrackIDs[i] — recorded rather than recomputed so undo reverses
	// the exact same set of clips without re-deriving the per-track
	// exclusion of the edited clip's own unmoved edge.
	ShiftAnchors []int64 `json:"shift_anchors,omitempty"`
}

// RippleEditExecutor implements RippleEdit.
func RippleEditExecutor(ctx context.Context, tx *store.Tx, model *timeline.Model, env *command.Envelope) (command.Result, error) {
	var rec RippleEditRecord
	if err := decode(env.Payload, &rec); err != nil {
		return command.Result{}, err
	}

	c, err := tx.GetClip(ctx, rec.ClipID)
	if err != nil {
		return command.Result{}, err
	}
	if rec.OriginalClip == nil {
		orig := c
		rec.OriginalClip = &orig
	}

	edge := timeline.EdgeIn
	if rec.Edge == "out" {
		edge = timeline.EdgeOut
	}
	minDelta, maxDelta, err := model.EdgeMovementBounds(rec.ClipID, edge)
	if err != nil {
		return command.Result{}, err
	}
	delta := clamp(rec.DeltaFrames, minDelta, maxDelta)
	rec.AppliedDelta = delta

	var ripplePoint, shiftDelta int64
	switch edge {
	case timeline.EdgeIn:
		// Trimming the in-edge never moves the clip's own timeline
		// position (spec §4.3): only duration and source_in change.
		c.DurationFrames -= delta
		c.SourceInFrame += delta
		ripplePoint = rec.OriginalClip.TimelineStartFrame
		shiftDelta = -delta
	case timeline.EdgeOut:
		c.DurationFrames += delta
		c.SourceOutFrame += delta
		ripplePoint = rec.OriginalClip.End()
		shiftDelta = delta
	}
	if err := tx.UpdateClip(ctx, c); err != nil {
		return command.Result{}, err
	}
	env.Mutations.Updates = append(env.Mutations.Updates, c)

	trackIDs := rec.ShiftTrackIDs
	if trackIDs == nil {
		trackIDs = model.AllTrackIDs()
	}
	anchors := make([]int64, len(trackIDs))
	for i, trackID := range trackIDs {
		anchor := ripplePoint
		if trackID == c.TrackID && edge == timeline.EdgeIn {
			// The edited clip's own start stays at ripplePoint; exclude
			// it from its own track's downstream shift.
			anchor++
		}
		anchors[i] = anchor
		if shiftDelta == 0 {
			continue
		}
		shifted, err := tx.BulkShiftTrack(ctx, trackID, anchor, shiftDelta)
		if err != nil {
			return command.Result{}, err
		}
		idx := len(env.Mutations.BulkShifts)
		env.Mutations.BulkShifts = append(env.Mutations.BulkShifts, timeline.BulkShift{TrackID: trackID, Anchor: anchor, Delta: shiftDelta})
		if env.ShiftedIDsByBulkShift == nil {
			env.ShiftedIDsByBulkShift = map[int][]string{}
		}
		env.ShiftedIDsByBulkShift[idx] = shifted
	}
	rec.ShiftTrackIDs = trackIDs
	rec.ShiftAnchors = anchors

	payload, err := encode(rec)
	if err != nil {
		return command.Result{}, err
	}
	env.Payload = payload
	return command.Result{Success: true, ResultData: payload}, nil
}

// RippleEditUndoer restores the edited clip and reverses every downstream
// shift.
func RippleEditUndoer(ctx context.Context, tx *store.Tx, model *timeline.Model, env *command.Envelope) error {
	var rec RippleEditRecord
	if err := decode(env.Payload, &rec); err != nil {
		return err
	}

	// Reverse each forward shift exactly: the forward pass moved clips at
	// forwardAnchor by forwardDelta, so they now sit at forwardAnchor +
	// forwardDelta; shifting that same threshold back by -forwardDelta
	// restores their original positions.
	forwardDelta := -rec.AppliedDelta
	if rec.Edge == "out" {
		forwardDelta = rec.AppliedDelta
	}
	for i, trackID := range rec.ShiftTrackIDs {
		if forwardDelta == 0 {
			continue
		}
		anchor := rec.ShiftAnchors[i] + forwardDelta
		shifted, err := tx.BulkShiftTrack(ctx, trackID, anchor, -forwardDelta)
		if err != nil {
			return err
		}
		idx := len(env.Mutations.BulkShifts)
		env.Mutations.BulkShifts = append(env.Mutations.BulkShifts, timeline.BulkShift{TrackID: trackID, Anchor: anchor, Delta: -forwardDelta})
		if env.ShiftedIDsByBulkShift == nil {
			env.ShiftedIDsByBulkShift = map[int][]string{}
		}
		env.ShiftedIDsByBulkShift[idx] = shifted
	}

	if err := tx.UpdateClip(ctx, *rec.OriginalClip); err != nil {
		return err
	}
	env.Mutations.Updates = append(env.Mutations.Updates, *rec.OriginalClip)
	return nil
}
