// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package command

import (
	"context"

	"github.com/ManuGH/xg2g/internal/errs"
	"github.com/ManuGH/xg2g/internal/store"
	"github.com/ManuGH/xg2g/internal/timeline"
)

// Executor performs one command's forward effect inside an open store
// transaction, mutating the model cache via env.Mutations. It returns a
// structured Result rather than (only) an error so the engine can
// distinguish "executed, but reported failure" from a hard transaction
// abort (spec §4.4.1).
type Executor interface {
	Execute(ctx context.Context, tx *store.Tx, model *timeline.Model, env *Envelope) (Result, error)
}

// Undoer reverses a previously-executed command's effect, restoring captured
// prior state. A missing undoer is a hard error — the engine never
// silently re-executes forward to "undo" (spec §4.4.4).
type Undoer interface {
	Undo(ctx context.Context, tx *store.Tx, model *timeline.Model, env *Envelope) error
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context, tx *store.Tx, model *timeline.Model, env *Envelope) (Result, error)

func (f ExecutorFunc) Execute(ctx context.Context, tx *store.Tx, model *timeline.Model, env *Envelope) (Result, error) {
	return f(ctx, tx, model, env)
}

// UndoerFunc adapts a plain function to the Undoer interface.
type UndoerFunc func(ctx context.Context, tx *store.Tx, model *timeline.Model, env *Envelope) error

func (f UndoerFunc) Undo(ctx context.Context, tx *store.Tx, model *timeline.Model, env *Envelope) error {
	return f(ctx, tx, model, env)
}

type registration struct {
	executor    Executor
	undoer      Undoer // nil for non-recording types
	nonRecording bool   // pure UI-state commands (spec §4.4.3 step 2): bypass the log entirely
}

// Registry associates command-type names with executors and optional
// undoers. It refuses to execute unknown types (spec §4.4.1), reserving a
// small set of test-only pseudo-commands that succeed trivially.
type Registry struct {
	entries map[string]registration
}

// NewRegistry returns an empty registry pre-seeded with the test-only
// pseudo-commands "__noop_success" and "__noop_failure".
func NewRegistry() *Registry {
	r := &Registry{entries: map[string]registration{}}
	r.Register("__noop_success", ExecutorFunc(func(_ context.Context, _ *store.Tx, _ *timeline.Model, _ *Envelope) (Result, error) {
		return Result{Success: true}, nil
	}), UndoerFunc(func(_ context.Context, _ *store.Tx, _ *timeline.Model, _ *Envelope) error { return nil }))
	r.Register("__noop_failure", ExecutorFunc(func(_ context.Context, _ *store.Tx, _ *timeline.Model, _ *Envelope) (Result, error) {
		return Result{Success: false, ErrorMessage: "test-only forced failure"}, nil
	}), nil)
	return r
}

// Register associates a command type with its executor and (optionally) its
// undoer. A nil undoer means: this type, once committed, can never be
// undone (attempting to do so is a hard error at Undo time).
func (r *Registry) Register(commandType string, executor Executor, undoer Undoer) {
	r.entries[commandType] = registration{executor: executor, undoer: undoer}
}

// RegisterNonRecording registers a pure UI-state command (e.g. "select
// all") that executes directly and bypasses the event log entirely (spec
// §4.4.3 step 2).
func (r *Registry) RegisterNonRecording(commandType string, executor Executor) {
	r.entries[commandType] = registration{executor: executor, nonRecording: true}
}

// Lookup returns the executor/undoer/non-recording flag for a command type.
// ok is false for an unregistered type.
func (r *Registry) Lookup(commandType string) (Executor, Undoer, bool, bool) {
	reg, ok := r.entries[commandType]
	if !ok {
		return nil, nil, false, false
	}
	return reg.executor, reg.undoer, reg.nonRecording, true
}

// MustLookupExecutor returns the executor for commandType or an
// InvalidArgument error for an unknown type (spec §4.4.1).
func (r *Registry) MustLookupExecutor(commandType string) (Executor, error) {
	exec, _, _, ok := r.Lookup(commandType)
	if !ok {
		return nil, errs.InvalidArgument("unknown command type %q", commandType)
	}
	return exec, nil
}

// Describe returns every registered command type name, for diagnostics.
func (r *Registry) Describe() []string {
	out := make([]string, 0, len(r.entries))
	for name := range r.entries {
		out = append(out, name)
	}
	return out
}
