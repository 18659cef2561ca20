// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package command

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"

	"github.com/ManuGH/xg2g/internal/config"
	"github.com/ManuGH/xg2g/internal/errs"
	"github.com/ManuGH/xg2g/internal/log"
	"github.com/ManuGH/xg2g/internal/metrics"
	"github.com/ManuGH/xg2g/internal/store"
	"github.com/ManuGH/xg2g/internal/store/snapshotcache"
	"github.com/ManuGH/xg2g/internal/telemetry"
	"github.com/ManuGH/xg2g/internal/timeline"
)

// globalStackKey is the single stack id used when the engine is configured
// for config.UndoStackGlobal.
const globalStackKey = "__global__"

// Listener is notified after execute/undo/redo, per spec §4.4.3 step 14.
type Listener func(event string, env *Envelope)

// Engine is the Command Engine (spec §4.4): it resolves the active undo
// stack, runs the execute pipeline inside a store transaction, and
// maintains the branching undo forest.
type Engine struct {
	st        *store.Store
	registry  *Registry
	mode      config.UndoStackMode
	cadence   int
	snapCache *snapshotcache.Cache // optional; nil disables cross-process snapshot caching

	mu            sync.Mutex
	models        map[string]*timeline.Model // sequence id -> cache
	heads         map[string]*int64          // stack key -> current head sequence_number
	nextSeqNumber int64                      // atomic; next sequence_number to allocate

	stackResolvers map[string]func(env *Envelope) string
	listeners      []Listener
}

// NewEngine constructs an Engine. initialMaxSeqNumber should come from
// store.Tx.GetMaxSequenceNumber at startup so the allocator resumes after
// the highest number ever committed.
func NewEngine(st *store.Store, registry *Registry, mode config.UndoStackMode, cadence int, initialMaxSeqNumber int64) *Engine {
	if cadence < 1 {
		cadence = 1
	}
	return &Engine{
		st: st, registry: registry, mode: mode, cadence: cadence,
		models: map[string]*timeline.Model{}, heads: map[string]*int64{},
		nextSeqNumber:  initialMaxSeqNumber + 1,
		stackResolvers: map[string]func(env *Envelope) string{},
	}
}

// SetSnapshotCache attaches an optional cross-process cache accelerating
// Replay's nearest-snapshot lookup (spec §4.4.6). Passing nil is a no-op:
// Replay always falls back to the store when no cache is attached or on a
// cache miss.
func (e *Engine) SetSnapshotCache(c *snapshotcache.Cache) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snapCache = c
}

// SetStackResolver overrides stack-key resolution for a specific command
// type (spec §4.4.7's per-type stack_resolver).
func (e *Engine) SetStackResolver(commandType string, resolver func(env *Envelope) string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stackResolvers[commandType] = resolver
}

// AddListener registers a callback for execute/undo/redo notifications.
func (e *Engine) AddListener(l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

func (e *Engine) notify(event string, env *Envelope) {
	e.mu.Lock()
	listeners := append([]Listener(nil), e.listeners...)
	e.mu.Unlock()
	for _, l := range listeners {
		l(event, env)
	}
}

func (e *Engine) stackKey(env *Envelope) string {
	if resolver, ok := e.stackResolvers[env.Type]; ok {
		return resolver(env)
	}
	if e.mode == config.UndoStackGlobal {
		return globalStackKey
	}
	return env.SequenceID
}

func (e *Engine) allocateSequenceNumber() int64 {
	return atomic.AddInt64(&e.nextSeqNumber, 1) - 1
}

func (e *Engine) releaseSequenceNumber() {
	atomic.AddInt64(&e.nextSeqNumber, -1)
}

// headFor returns the current head for a stack key, or nil if unset
// ("pre-history", spec §3 invariant 7).
func (e *Engine) headFor(stackKey string) *int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.heads[stackKey]
}

func (e *Engine) setHead(stackKey string, seqNum *int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.heads[stackKey] = seqNum
}

// modelFor returns (loading if necessary) the cached Timeline Model for a
// sequence.
func (e *Engine) modelFor(ctx context.Context, tx *store.Tx, sequenceID string) (*timeline.Model, error) {
	e.mu.Lock()
	m, ok := e.models[sequenceID]
	e.mu.Unlock()
	if ok {
		return m, nil
	}
	m, err := e.reloadModel(ctx, tx, sequenceID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.models[sequenceID] = m
	e.mu.Unlock()
	return m, nil
}

func (e *Engine) reloadModel(ctx context.Context, tx *store.Tx, sequenceID string) (*timeline.Model, error) {
	tracks, err := tx.ListTracksBySequence(ctx, sequenceID)
	if err != nil {
		return nil, err
	}
	clips, err := tx.ListClipsBySequence(ctx, sequenceID)
	if err != nil {
		return nil, err
	}
	var links []store.ClipLink
	for _, c := range clips {
		cl, err := tx.ListLinksByClip(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		links = append(links, cl...)
	}
	m := timeline.NewModel(sequenceID)
	m.Reload(tracks, clips, links)
	return m, nil
}

// Execute runs the pipeline of spec §4.4.3 for env. env.Type and
// env.ProjectID must be set; env.SequenceID is required unless the type is
// non-recording.
func (e *Engine) Execute(ctx context.Context, env *Envelope) (res Result, err error) {
	// 1. Normalize/validate.
	if env.Type == "" {
		return Result{}, errs.InvalidArgument("command type must not be empty")
	}
	if env.ProjectID == "" {
		return Result{}, errs.InvalidArgument("project_id must not be empty")
	}

	ctx, span := telemetry.Tracer("command").Start(ctx, "command.Execute")
	span.SetAttributes(telemetry.CommandAttributes(env.Type, env.SequenceNumber, env.SequenceID, env.DryRun)...)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	start := time.Now()
	defer func() {
		metrics.CommandExecuteDuration.WithLabelValues(env.Type).Observe(time.Since(start).Seconds())
		outcome := metrics.ResultSuccess
		if err != nil || !res.Success {
			outcome = metrics.ResultError
		}
		metrics.CommandExecuteTotal.WithLabelValues(env.Type, outcome).Inc()
	}()

	executor, undoer, nonRecording, ok := e.registry.Lookup(env.Type)
	if !ok {
		return Result{}, errs.InvalidArgument("unknown command type %q", env.Type)
	}
	_ = undoer

	// 2. Non-recording types bypass the log.
	if nonRecording {
		tx, err := e.st.Begin(ctx)
		if err != nil {
			return Result{}, err
		}
		defer tx.Rollback()
		model, err := e.modelFor(ctx, tx, env.SequenceID)
		if err != nil {
			return Result{}, err
		}
		res, err := executor.Execute(ctx, tx, model, env)
		if err != nil {
			return Result{}, err
		}
		if err := tx.Commit(); err != nil {
			return Result{}, err
		}
		return res, nil
	}

	if env.SequenceID == "" {
		return Result{}, errs.InvalidArgument("sequence_id must not be empty for a recording command")
	}

	// 3. Resolve active stack.
	stackKey := e.stackKey(env)

	// 4. BEGIN TRANSACTION.
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

	model, err := e.modelFor(ctx, tx, env.SequenceID)
	if err != nil {
		return Result{}, err
	}

	// 5. Optionally compute pre_hash.
	var preHash *string
	if env.Flags.SuppressIfUnchanged {
		h, err := ProjectStateHash(model.AllClips())
		if err == nil {
			preHash = &h
		}
	}

	// 6. Allocate sequence_number and parent_sequence_number.
	seqNum := e.allocateSequenceNumber()
	parent := e.headFor(stackKey)
	if parent == nil {
		existing, existsErr := tx.GetMaxSequenceNumber(ctx)
		if existsErr == nil && existing != 0 {
			// A head was never cached in-memory for this stack (cold
			// start) but the log is non-empty: this is a programming
			// error, not a user error — the engine must be primed from
			// store state before first use.
			e.releaseSequenceNumber()
			return Result{}, fmt.Errorf("%w: stack %q has committed history but no cached head", errs.ErrInternalInvariant, stackKey)
		}
	}
	env.SequenceNumber = seqNum
	env.ParentSequenceNumber = parent
	env.Timestamp = time.Now()

	// 7. Capture pre-selection/playhead unless skipped.
	if !env.Flags.SkipSelectionSnapshot {
		seq, err := tx.GetSequence(ctx, env.SequenceID)
		if err != nil {
			e.releaseSequenceNumber()
			return Result{}, err
		}
		env.PreSelection = Selection{
			ClipIDsJSON: seq.SelectedClipsJSON, EdgesJSON: seq.SelectedEdgesJSON, GapsJSON: seq.SelectedGapsJSON,
			PlayheadFrame: seq.PlayheadFrame, PlayheadNum: seq.FPSNumerator, PlayheadDen: seq.FPSDenominator,
		}
	}

	// 8. Invoke executor.
	res, execErr := executor.Execute(ctx, tx, model, env)
	if execErr != nil {
		e.releaseSequenceNumber()
		return Result{}, fmt.Errorf("%w: command %q: %w", errs.ErrInternalInvariant, env.Type, execErr)
	}
	if !res.Success {
		e.releaseSequenceNumber()
		return res, nil
	}

	// 9. Optional post_hash + no-op suppression.
	if env.Flags.SuppressIfUnchanged && preHash != nil {
		postHash, err := ProjectStateHash(model.AllClips())
		if err == nil && postHash == *preHash {
			e.releaseSequenceNumber()
			return Result{Success: true, ErrorMessage: "no-op: state unchanged"}, nil
		}
	}

	// 10. Persist the event-log row; advance head.
	cmdRow := e.buildCommandRow(env)
	if err := tx.AppendCommand(ctx, cmdRow); err != nil {
		e.releaseSequenceNumber()
		return Result{}, err
	}
	e.setHead(stackKey, &seqNum)
	if err := tx.SetSequenceHead(ctx, env.SequenceID, &seqNum); err != nil {
		e.releaseSequenceNumber()
		return Result{}, err
	}

	// 11. Snapshot cadence.
	if env.Flags.ForceSnapshot || seqNum%int64(e.cadence) == 0 {
		if err := e.writeSnapshot(ctx, tx, env.SequenceID, seqNum); err != nil {
			return Result{}, err
		}
	}

	// 12. COMMIT.
	if err := tx.Commit(); err != nil {
		e.releaseSequenceNumber()
		return Result{}, err
	}
	committed = true

	// 13. Apply mutations to the model cache (or full reload).
	if env.Flags.SkipTimelineReload {
		// caller takes responsibility for consistency
	} else if env.Mutations.IsEmpty() {
		if _, err := e.refreshModel(ctx, env.SequenceID); err != nil {
			log.WithComponent("command").Warn().Err(err).Msg("post-commit model reload failed")
		}
	} else {
		model.ApplyMutations(env.Mutations, env.ShiftedIDsByBulkShift)
	}

	// 14. Notify listeners.
	e.notify("execute", env)

	return res, nil
}

func (e *Engine) refreshModel(ctx context.Context, sequenceID string) (*timeline.Model, error) {
	tx, err := e.st.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	m, err := e.reloadModel(ctx, tx, sequenceID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.models[sequenceID] = m
	e.mu.Unlock()
	return m, nil
}

func (e *Engine) writeSnapshot(ctx context.Context, tx *store.Tx, sequenceID string, seqNum int64) error {
	clips, err := tx.ListClipsBySequence(ctx, sequenceID)
	if err != nil {
		return err
	}
	state, err := marshalSnapshotState(clips)
	if err != nil {
		return err
	}
	snap := store.Snapshot{
		SequenceID: sequenceID, SequenceNumber: seqNum, ClipState: state, CreatedAt: time.Now(),
	}
	if err := tx.WriteSnapshot(ctx, snap); err != nil {
		return err
	}
	metrics.SnapshotWriteTotal.Inc()
	// No eager cache population here: the cache is keyed by replay target
	// (Replay's read-through Get/Put pair in replay.go), and a replay target
	// is almost never exactly this snapshot's own sequence number, so a Put
	// keyed by seqNum would never be read back.
	return nil
}

func (e *Engine) buildCommandRow(env *Envelope) store.Command {
	var parentID *string
	return store.Command{
		ID:                   uuid.NewString(),
		ParentID:             parentID,
		SequenceNumber:       env.SequenceNumber,
		SequenceID:           env.SequenceID,
		CommandType:          env.Type,
		CommandArgs:          string(env.Payload),
		ParentSequenceNumber: env.ParentSequenceNumber,
		Timestamp:            env.Timestamp,
		SelectedClipsJSON:    env.PostSelection.ClipIDsJSON,
		SelectedEdgesJSON:    env.PostSelection.EdgesJSON,
		SelectedGapsJSON:     env.PostSelection.GapsJSON,
		SelectedClipsPreJSON: env.PreSelection.ClipIDsJSON,
		SelectedEdgesPreJSON: env.PreSelection.EdgesJSON,
		SelectedGapsPreJSON:  env.PreSelection.GapsJSON,
		PlayheadFrame:        env.PostSelection.PlayheadFrame,
		PlayheadPreFrame:     env.PreSelection.PlayheadFrame,
		PlayheadNum:          env.PreSelection.PlayheadNum,
		PlayheadDen:          env.PreSelection.PlayheadDen,
	}
}
