// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldSessionID       = "session_id"
	FieldCorrelationID   = "correlation_id"
	FieldRequestID       = "request_id"
	FieldClientRequestID = "client_request_id"
	FieldCommandID       = "command_id"
	FieldSequenceID      = "sequence_id"
	FieldTrackID         = "track_id"
	FieldClipID          = "clip_id"
	FieldProjectID       = "project_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Command engine fields
	FieldCommandType    = "command_type"
	FieldSequenceNumber = "sequence_number"
	FieldBranchID       = "branch_id"

	// Audio engine fields
	FieldQualityMode = "quality_mode"
	FieldSpeed       = "speed"
	FieldTransport   = "transport_state"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// Path fields
	FieldPath     = "path"
	FieldDataPath = "data_path"
)
