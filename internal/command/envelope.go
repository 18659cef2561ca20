// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package command implements the Command Engine (spec §4.4): executor
// registry, the execute pipeline, undo/redo, branching undo-tree history,
// and event-replay reconstruction. The string-keyed parameter bag with
// sentinel "__" keys from the source system is replaced by an explicit
// CommandEnvelope with a typed Flags struct and a Mutations side-channel
// (spec §9's redesign guidance).
package command

import (
	"encoding/json"
	"time"

	"github.com/ManuGH/xg2g/internal/timeline"
)

// Flags are the command engine's engine-only directives (spec §4.4.2).
type Flags struct {
	SuppressIfUnchanged bool
	SkipSelectionSnapshot bool
	SkipTimelineReload  bool
	ForceSnapshot       bool
	DryRun              bool
}

// Selection is a playhead + selected-object snapshot, captured before and
// after execution (spec §3 Command, invariant 8).
type Selection struct {
	ClipIDsJSON string // serialized clip id array
	EdgesJSON   string // serialized edge-info array
	GapsJSON    string // serialized gap-info array
	PlayheadFrame int64
	PlayheadNum   int64
	PlayheadDen   int64
}

// Envelope is one command submission: a type name, the owning project and
// sequence, an arbitrary JSON-serializable payload, and engine flags. The
// engine assigns SequenceNumber/ParentSequenceNumber/timestamps/hashes; the
// caller never sets them.
type Envelope struct {
	Type       string
	ProjectID  string
	SequenceID string
	Payload    json.RawMessage
	Flags      Flags

	// Populated by the engine during Execute; read-only to callers.
	SequenceNumber       int64
	ParentSequenceNumber *int64
	Timestamp            time.Time
	PreSelection          Selection
	PostSelection         Selection
	Mutations             timeline.MutationBuffer
	ShiftedIDsByBulkShift map[int][]string
}

// Result is what an executor returns.
type Result struct {
	Success      bool
	ErrorMessage string
	ResultData   json.RawMessage
}
