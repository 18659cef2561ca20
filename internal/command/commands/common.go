// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package commands implements the Command Library (spec §4.4.8): one
// executor/undoer pair per representative command. Every payload is a
// "record" type: the fields a caller supplies, plus fields the executor
// fills in the first time it runs (generated clip ids, captured prior
// state) and re-marshals into env.Payload so the persisted CommandArgs is
// self-sufficient for undo, redo, and replay — none of them ever re-derive
// an id or a prior value from current store state, since by the time undo
// runs that state has already moved on.
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/ManuGH/xg2g/internal/errs"
)

// decode unmarshals an envelope payload into a typed record.
func decode[T any](payload json.RawMessage, out *T) error {
	if len(payload) == 0 {
		return errs.InvalidArgument("command payload is empty")
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidArgument, err)
	}
	return nil
}

// encode re-marshals a record, for the executor to hand back as the
// envelope's new payload (becomes CommandArgs once the engine persists it).
func encode[T any](rec T) (json.RawMessage, error) {
	buf, err := json.Marshal(rec)
	if err != nil {
		return nil, errs.Serialization(err)
	}
	return buf, nil
}

// reuseOrGenerateID returns existing unchanged if non-empty (a redo/replay
// of a command that already generated an id), otherwise a fresh uuid.
func reuseOrGenerateID(existing string) string {
	if existing != "" {
		return existing
	}
	return uuid.NewString()
}
