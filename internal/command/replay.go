// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package command

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ManuGH/xg2g/internal/errs"
	"github.com/ManuGH/xg2g/internal/store"
	"github.com/ManuGH/xg2g/internal/telemetry"
)

// JumpToSequence moves sequenceID's undo head to an arbitrary point anywhere
// in the branching undo forest (spec §4.4.5): it computes the lowest common
// ancestor of the current head and target, undoes back to the LCA, then
// deterministically redoes forward along target's branch.
func (e *Engine) JumpToSequence(ctx context.Context, sequenceID string, target int64) (Result, error) {
	stackKey := e.stackKeyForSequence(sequenceID)
	head := e.headFor(stackKey)

	tx, err := e.st.Begin(ctx)
	if err != nil {
		return Result{}, err
	}
	var currentChain, targetChain []store.Command
	if head != nil {
		currentChain, err = tx.WalkToRoot(ctx, *head)
		if err != nil {
			_ = tx.Rollback()
			return Result{}, err
		}
	}
	targetChain, err = tx.WalkToRoot(ctx, target)
	if err != nil {
		_ = tx.Rollback()
		return Result{}, err
	}
	_ = tx.Rollback()

	lca, lcaIdx := lowestCommonAncestor(currentChain, targetChain)

	for {
		h := e.headFor(stackKey)
		if (h == nil && lca == nil) || (h != nil && lca != nil && *h == *lca) {
			break
		}
		if h == nil {
			return Result{}, fmt.Errorf("%w: head became nil before reaching LCA", errs.ErrInternalInvariant)
		}
		if _, err := e.Undo(ctx, sequenceID); err != nil {
			return Result{}, err
		}
	}

	for _, cmd := range targetChain[lcaIdx:] {
		if _, err := e.reexecuteDeterministically(ctx, sequenceID, cmd); err != nil {
			return Result{}, err
		}
	}

	return Result{Success: true}, nil
}

// lowestCommonAncestor compares two root-first command chains and returns
// the sequence_number of their last shared node (nil if they share none,
// i.e. the LCA is pre-history) and the index into b just past that shared
// prefix.
func lowestCommonAncestor(a, b []store.Command) (*int64, int) {
	var lca *int64
	i := 0
	for i < len(a) && i < len(b) && a[i].SequenceNumber == b[i].SequenceNumber {
		seq := a[i].SequenceNumber
		lca = &seq
		i++
	}
	return lca, i
}

// Replay reconstructs a sequence's Timeline Model from the nearest snapshot
// at or before target, then deterministically re-executes every command on
// the active branch between the snapshot and target (spec §4.4.6). Replay
// failure is fatal — it is never silently skipped, since a corrupted replay
// would otherwise surface as silently wrong timeline state.
func (e *Engine) Replay(ctx context.Context, sequenceID string, target int64) (err error) {
	ctx, span := telemetry.Tracer("command").Start(ctx, "command.Replay")
	span.SetAttributes(
		attribute.String(telemetry.CommandSequenceIDKey, sequenceID),
		attribute.Int64(telemetry.CommandSequenceNumberKey, target),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	tx, err := e.st.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var snap store.Snapshot
	var ok bool
	if e.snapCache != nil {
		snap, ok = e.snapCache.Get(ctx, sequenceID, target)
	}
	if !ok {
		snap, ok, err = tx.LatestSnapshotAtOrBefore(ctx, sequenceID, target)
		if err != nil {
			return err
		}
		if ok && e.snapCache != nil {
			e.snapCache.Put(ctx, target, snap)
		}
	}

	var fromSeqNum int64
	var restored []store.Clip
	if ok {
		fromSeqNum = snap.SequenceNumber
		restored, err = unmarshalSnapshotState(snap.ClipState)
		if err != nil {
			return fmt.Errorf("%w: unmarshal snapshot %d state: %v", errs.ErrInternalInvariant, snap.SequenceNumber, err)
		}
	}

	chain, err := tx.WalkToRoot(ctx, target)
	if err != nil {
		return err
	}

	// Clear the sequence's clips and restore the snapshot's clip set (or
	// leave it empty for pre-history) in one transaction, so a mid-replay
	// failure below leaves the store at this valid floor state rather than
	// partway between empty and rebuilt.
	clips, err := tx.ListClipsBySequence(ctx, sequenceID)
	if err != nil {
		return err
	}
	for _, c := range clips {
		if err := tx.DeleteClip(ctx, c.ID); err != nil {
			return err
		}
	}
	for _, c := range restored {
		if err := tx.InsertClip(ctx, c); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	if _, err := e.refreshModel(ctx, sequenceID); err != nil {
		return err
	}

	replayFrom := 0
	for i, cmd := range chain {
		if cmd.SequenceNumber == fromSeqNum {
			replayFrom = i + 1
			break
		}
	}

	for _, cmd := range chain[replayFrom:] {
		if _, err := e.reexecuteDeterministically(ctx, sequenceID, cmd); err != nil {
			return errs.ReplayCorruption("replay of sequence %s halted at command %q (seq %d): %v",
				sequenceID, cmd.CommandType, cmd.SequenceNumber, err)
		}
	}
	return nil
}
