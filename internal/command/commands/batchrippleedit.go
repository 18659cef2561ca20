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

// BatchEdgeTarget is one edge participating in a BatchRippleEdit.
type BatchEdgeTarget struct {
	ClipID string `json:"clip_id"`
	Edge   string `json:"edge"` // "in" or "out"
}

// BatchRippleEditRecord is the BatchRippleEdit(edges[], Δ) payload.
// Originals and AppliedDelta are captured on first run; the single
// downstream shift (spec §4.4.8: "perform a single downstream shift ... one
// edge's duration delta, tracks are parallel, not summed") uses the sign of
// whichever edge produced the smallest clamped magnitude (PrimarySign) and
// the earliest ripple point across all edges.
type BatchRippleEditRecord struct {
	Edges         []BatchEdgeTarget `json:"edges"`
	DeltaFrames   int64             `json:"delta_frames"`
	Originals     []store.Clip      `json:"originals,omitempty"`
	AppliedDelta  int64             `json:"applied_delta,omitempty"`
	PrimarySign   int64             `json:"primary_sign,omitempty"`
	ShiftTrackIDs []string          `json:"shift_track_ids,omitempty"`
	ShiftAnchors  []int64           `json:"shift_anchors,omitempty"`
}

// BatchRippleEditExecutor implements BatchRippleEdit.
func BatchRippleEditExecutor(ctx context.Context, tx *store.Tx, model *timeline.Model, env *command.Envelope) (command.Result, error) {
	var rec BatchRippleEditRecord
	if err := decode(env.Payload, &rec); err != nil {
		return command.Result{}, err
	}
	firstRun := rec.Originals == nil

	var originals []store.Clip
	var minAbsDelta int64 = -1
	var earliestRipple int64
	haveRipple := false
	var primarySign int64

	for _, target := range rec.Edges {
		c, err := tx.GetClip(ctx, target.ClipID)
		if err != nil {
			return command.Result{}, err
		}
		if firstRun {
			originals = append(originals, c)
		}
		edge := timeline.EdgeIn
		sign := int64(-1)
		if target.Edge == "out" {
			edge = timeline.EdgeOut
			sign = 1
		}
		minDelta, maxDelta, err := model.EdgeMovementBounds(target.ClipID, edge)
		if err != nil {
			return command.Result{}, err
		}
		// Opposite bracket types get -Δ applied to maintain relative
		// timing; clamp each edge's own bracket-adjusted delta, then keep
		// the most restrictive magnitude across all edges.
		requested := rec.DeltaFrames
		if sign < 0 {
			requested = -rec.DeltaFrames
		}
		applied := clamp(requested, minDelta, maxDelta)
		absApplied := applied
		if absApplied < 0 {
			absApplied = -absApplied
		}
		if minAbsDelta == -1 || absApplied < minAbsDelta {
			minAbsDelta = absApplied
			primarySign = sign
		}

		var ripple int64
		if edge == timeline.EdgeIn {
			ripple = c.TimelineStartFrame
		} else {
			ripple = c.End()
		}
		if !haveRipple || ripple < earliestRipple {
			earliestRipple = ripple
			haveRipple = true
		}
	}
	if minAbsDelta < 0 {
		minAbsDelta = 0
	}

	for _, target := range rec.Edges {
		c, err := tx.GetClip(ctx, target.ClipID)
		if err != nil {
			return command.Result{}, err
		}
		edge := timeline.EdgeIn
		if target.Edge == "out" {
			edge = timeline.EdgeOut
		}
		// minAbsDelta is a magnitude (spec §4.4.8: "apply all trims" at the
		// shared most-restrictive size); the per-edge-type formula below
		// already encodes the correct sign. Own timeline position never
		// moves for an in-edge trim (spec §4.3).
		switch edge {
		case timeline.EdgeIn:
			c.DurationFrames -= minAbsDelta
			c.SourceInFrame += minAbsDelta
		case timeline.EdgeOut:
			c.DurationFrames += minAbsDelta
			c.SourceOutFrame += minAbsDelta
		}
		if err := tx.UpdateClip(ctx, c); err != nil {
			return command.Result{}, err
		}
		env.Mutations.Updates = append(env.Mutations.Updates, c)
	}

	shiftDelta := minAbsDelta * primarySign
	if shiftDelta < 0 {
		// Never push a clip below timeline_start=0.
		if -earliestRipple > shiftDelta {
			shiftDelta = -earliestRipple
		}
	}

	trackIDs := rec.ShiftTrackIDs
	if trackIDs == nil {
		trackIDs = model.AllTrackIDs()
	}
	anchors := make([]int64, len(trackIDs))
	for i, trackID := range trackIDs {
		anchor := earliestRipple
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

	if firstRun {
		rec.Originals = originals
	}
	rec.AppliedDelta = minAbsDelta
	rec.PrimarySign = primarySign
	rec.ShiftTrackIDs = trackIDs
	rec.ShiftAnchors = anchors

	payload, err := encode(rec)
	if err != nil {
		return command.Result{}, err
	}
	env.Payload = payload
	return command.Result{Success: true, ResultData: payload}, nil
}

// BatchRippleEditUndoer restores every edited clip and reverses the single
// downstream shift.
func BatchRippleEditUndoer(ctx context.Context, tx *store.Tx, model *timeline.Model, env *command.Envelope) error {
	var rec BatchRippleEditRecord
	if err := decode(env.Payload, &rec); err != nil {
		return err
	}

	forwardDelta := rec.AppliedDelta * rec.PrimarySign

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

	for _, orig := range rec.Originals {
		if err := tx.UpdateClip(ctx, orig); err != nil {
			return err
		}
		env.Mutations.Updates = append(env.Mutations.Updates, orig)
	}
	return nil
}
