// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package command

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ManuGH/xg2g/internal/config"
	"github.com/ManuGH/xg2g/internal/errs"
	"github.com/ManuGH/xg2g/internal/metrics"
	"github.com/ManuGH/xg2g/internal/store"
	"github.com/ManuGH/xg2g/internal/telemetry"
)

// Undo reverses the command at the current head of sequenceID's stack,
// moving the head to its parent (spec §4.4.4). A command with no registered
// undoer is a hard error: the engine never falls back to forward
// re-execution to fake an undo.
func (e *Engine) Undo(ctx context.Context, sequenceID string) (res Result, err error) {
	ctx, span := telemetry.Tracer("command").Start(ctx, "command.Undo")
	span.SetAttributes(attribute.String(telemetry.CommandSequenceIDKey, sequenceID))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	defer func() {
		outcome := metrics.ResultSuccess
		if err != nil {
			outcome = metrics.ResultError
		}
		metrics.CommandUndoTotal.WithLabelValues(outcome).Inc()
	}()

	stackKey := e.stackKeyForSequence(sequenceID)
	head := e.headFor(stackKey)
	if head == nil {
		return Result{}, fmt.Errorf("%w: nothing to undo", errs.ErrInvalidArgument)
	}

	tx, err := e.st.Begin(ctx)
	if err != nil {
		return Result{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	cmdRow, err := tx.GetCommandBySequenceNumber(ctx, *head)
	if err != nil {
		return Result{}, err
	}
	_, undoer, nonRecording, ok := e.registry.Lookup(cmdRow.CommandType)
	if !ok || nonRecording {
		return Result{}, fmt.Errorf("%w: command type %q has no registration", errs.ErrInternalInvariant, cmdRow.CommandType)
	}
	if undoer == nil {
		return Result{}, fmt.Errorf("%w: command type %q has no undoer, cannot undo", errs.ErrInvalidArgument, cmdRow.CommandType)
	}

	model, err := e.modelFor(ctx, tx, sequenceID)
	if err != nil {
		return Result{}, err
	}

	env := &Envelope{
		Type: cmdRow.CommandType, SequenceID: sequenceID,
		Payload: []byte(cmdRow.CommandArgs),
		SequenceNumber: cmdRow.SequenceNumber, ParentSequenceNumber: cmdRow.ParentSequenceNumber,
		PreSelection: Selection{
			ClipIDsJSON: cmdRow.SelectedClipsPreJSON, EdgesJSON: cmdRow.SelectedEdgesPreJSON, GapsJSON: cmdRow.SelectedGapsPreJSON,
			PlayheadFrame: cmdRow.PlayheadPreFrame, PlayheadNum: cmdRow.PlayheadNum, PlayheadDen: cmdRow.PlayheadDen,
		},
	}

	if err := undoer.Undo(ctx, tx, model, env); err != nil {
		return Result{}, fmt.Errorf("%w: undo of command %q: %w", errs.ErrInternalInvariant, cmdRow.CommandType, err)
	}

	if err := tx.SetSequenceHead(ctx, sequenceID, cmdRow.ParentSequenceNumber); err != nil {
		return Result{}, err
	}
	if err := tx.UpdateSequenceSelection(ctx, sequenceID,
		cmdRow.SelectedClipsPreJSON, cmdRow.SelectedEdgesPreJSON, cmdRow.SelectedGapsPreJSON); err != nil {
		return Result{}, err
	}

	if err := tx.Commit(); err != nil {
		return Result{}, err
	}
	committed = true
	e.setHead(stackKey, cmdRow.ParentSequenceNumber)

	if env.Mutations.IsEmpty() {
		if _, err := e.refreshModel(ctx, sequenceID); err != nil {
			return Result{}, err
		}
	} else {
		model.ApplyMutations(env.Mutations, env.ShiftedIDsByBulkShift)
	}

	e.notify("undo", env)
	return Result{Success: true}, nil
}

// Redo re-executes the command with the greatest sequence_number among the
// current head's children (spec §4.4.4: when history has branched, redo
// always advances down the most-recently-created branch).
func (e *Engine) Redo(ctx context.Context, sequenceID string) (res Result, err error) {
	ctx, span := telemetry.Tracer("command").Start(ctx, "command.Redo")
	span.SetAttributes(attribute.String(telemetry.CommandSequenceIDKey, sequenceID))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	defer func() {
		outcome := metrics.ResultSuccess
		if err != nil {
			outcome = metrics.ResultError
		}
		metrics.CommandRedoTotal.WithLabelValues(outcome).Inc()
	}()

	stackKey := e.stackKeyForSequence(sequenceID)
	head := e.headFor(stackKey)

	tx, err := e.st.Begin(ctx)
	if err != nil {
		return Result{}, err
	}
	defer tx.Rollback()

	children, err := tx.ListChildren(ctx, sequenceID, head)
	if err != nil {
		return Result{}, err
	}
	if len(children) == 0 {
		return Result{}, fmt.Errorf("%w: nothing to redo", errs.ErrInvalidArgument)
	}
	target := children[0]
	for _, c := range children[1:] {
		if c.SequenceNumber > target.SequenceNumber {
			target = c
		}
	}
	if err := tx.Rollback(); err != nil {
		return Result{}, err
	}

	return e.reexecuteDeterministically(ctx, sequenceID, target)
}

// reexecuteDeterministically re-runs a previously-committed command using
// its originally recorded payload and sequence/parent numbers, rather than
// allocating new ones — the mechanism shared by redo and replay (spec
// §4.4.4, §4.4.6). It does not append a new event-log row; instead it
// advances the head to the existing row's sequence_number.
func (e *Engine) reexecuteDeterministically(ctx context.Context, sequenceID string, cmdRow store.Command) (Result, error) {
	stackKey := e.stackKeyForSequence(sequenceID)

	tx, err := e.st.Begin(ctx)
	if err != nil {
		return Result{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	executor, err := e.registry.MustLookupExecutor(cmdRow.CommandType)
	if err != nil {
		return Result{}, err
	}
	model, err := e.modelFor(ctx, tx, sequenceID)
	if err != nil {
		return Result{}, err
	}

	env := &Envelope{
		Type: cmdRow.CommandType, SequenceID: sequenceID,
		Payload: []byte(cmdRow.CommandArgs),
		SequenceNumber: cmdRow.SequenceNumber, ParentSequenceNumber: cmdRow.ParentSequenceNumber,
		Timestamp: cmdRow.Timestamp,
		PostSelection: Selection{
			ClipIDsJSON: cmdRow.SelectedClipsJSON, EdgesJSON: cmdRow.SelectedEdgesJSON, GapsJSON: cmdRow.SelectedGapsJSON,
			PlayheadFrame: cmdRow.PlayheadFrame, PlayheadNum: cmdRow.PlayheadNum, PlayheadDen: cmdRow.PlayheadDen,
		},
	}

	res, execErr := executor.Execute(ctx, tx, model, env)
	if execErr != nil || !res.Success {
		return Result{}, errs.ReplayCorruption("deterministic re-execution of command %q (seq %d) failed: %v",
			cmdRow.CommandType, cmdRow.SequenceNumber, execErr)
	}

	seqNum := cmdRow.SequenceNumber
	if err := tx.SetSequenceHead(ctx, sequenceID, &seqNum); err != nil {
		return Result{}, err
	}
	if err := tx.UpdateSequenceSelection(ctx, sequenceID,
		cmdRow.SelectedClipsJSON, cmdRow.SelectedEdgesJSON, cmdRow.SelectedGapsJSON); err != nil {
		return Result{}, err
	}

	if err := tx.Commit(); err != nil {
		return Result{}, err
	}
	committed = true
	e.setHead(stackKey, &seqNum)

	if env.Mutations.IsEmpty() {
		if _, err := e.refreshModel(ctx, sequenceID); err != nil {
			return Result{}, err
		}
	} else {
		model.ApplyMutations(env.Mutations, env.ShiftedIDsByBulkShift)
	}

	e.notify("redo", env)
	return res, nil
}

// stackKeyForSequence resolves the stack key for undo/redo, which always
// act on a specific sequence and so never consult a per-type resolver
// override (those only apply to forward Execute per spec §4.4.7).
func (e *Engine) stackKeyForSequence(sequenceID string) string {
	if e.mode == config.UndoStackGlobal {
		return globalStackKey
	}
	return sequenceID
}
