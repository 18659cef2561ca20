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

// EdgeSelection names one clip edge targeted by Nudge.
type EdgeSelection struct {
	ClipID string `json:"clip_id"`
	Edge   string `json:"edge"` // "in" or "out"
}

// NudgeRecord is the Nudge(amount, selection) payload. Originals captures
// each affected clip's pre-nudge state the first time the command runs, so
// undo restores exact values rather than attempting to invert a clamped
// amount (spec §4.4.8: "never allow duration < 1 frame or negative
// timeline_start").
type NudgeRecord struct {
	AmountFrames   int64           `json:"amount_frames"`
	ClipIDs        []string        `json:"clip_ids,omitempty"`
	EdgeSelections []EdgeSelection `json:"edge_selections,omitempty"`
	Originals      []store.Clip    `json:"originals,omitempty"`
}

// NudgeExecutor implements Nudge. When edges are selected, it trims those
// edges; otherwise it moves the selected clips (expanded through enabled
// link groups) by AmountFrames.
func NudgeExecutor(ctx context.Context, tx *store.Tx, model *timeline.Model, env *command.Envelope) (command.Result, error) {
	var rec NudgeRecord
	if err := decode(env.Payload, &rec); err != nil {
		return command.Result{}, err
	}

	firstRun := rec.Originals == nil
	var originals []store.Clip

	if len(rec.EdgeSelections) > 0 {
		for _, sel := range rec.EdgeSelections {
			c, err := tx.GetClip(ctx, sel.ClipID)
			if err != nil {
				return command.Result{}, err
			}
			if firstRun {
				originals = append(originals, c)
			}
			edge := timeline.EdgeIn
			if sel.Edge == "out" {
				edge = timeline.EdgeOut
			}
			minDelta, maxDelta, err := model.EdgeMovementBounds(sel.ClipID, edge)
			if err != nil {
				return command.Result{}, err
			}
			delta := clamp(rec.AmountFrames, minDelta, maxDelta)
			switch edge {
			case timeline.EdgeIn:
				c.TimelineStartFrame += delta
				c.DurationFrames -= delta
				c.SourceInFrame += delta
			case timeline.EdgeOut:
				c.DurationFrames += delta
				c.SourceOutFrame += delta
			}
			if c.DurationFrames < 1 {
				return command.Result{}, errs.ConstraintViolation("nudge would leave clip %s with duration < 1 frame", c.ID)
			}
			if err := tx.UpdateClip(ctx, c); err != nil {
				return command.Result{}, err
			}
			env.Mutations.Updates = append(env.Mutations.Updates, c)
		}
	} else {
		expanded := model.ExpandLinkGroup(rec.ClipIDs)
		for _, id := range expanded {
			c, err := tx.GetClip(ctx, id)
			if err != nil {
				return command.Result{}, err
			}
			if firstRun {
				originals = append(originals, c)
			}
			newStart := c.TimelineStartFrame + rec.AmountFrames
			if newStart < 0 {
				return command.Result{}, errs.ConstraintViolation("nudge would move clip %s to negative timeline_start", c.ID)
			}
			c.TimelineStartFrame = newStart
			if err := tx.UpdateClip(ctx, c); err != nil {
				return command.Result{}, err
			}
			env.Mutations.Updates = append(env.Mutations.Updates, c)
		}
	}

	if firstRun {
		rec.Originals = originals
	}

	payload, err := encode(rec)
	if err != nil {
		return command.Result{}, err
	}
	env.Payload = payload
	return command.Result{Success: true, ResultData: payload}, nil
}

// NudgeUndoer restores every affected clip to its captured original state.
func NudgeUndoer(ctx context.Context, tx *store.Tx, model *timeline.Model, env *command.Envelope) error {
	var rec NudgeRecord
	if err := decode(env.Payload, &rec); err != nil {
		return err
	}
	for _, orig := range rec.Originals {
		if err := tx.UpdateClip(ctx, orig); err != nil {
			return err
		}
		env.Mutations.Updates = append(env.Mutations.Updates, orig)
	}
	return nil
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
