// SPDX-License-Identifier: MIT

// Package telemetry provides OpenTelemetry tracing utilities for the
// timeline engine.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the engine.
const (
	// Command engine attributes
	CommandTypeKey           = "command.type"
	CommandSequenceNumberKey = "command.sequence_number"
	CommandBranchIDKey       = "command.branch_id"
	CommandSequenceIDKey     = "command.sequence_id"
	CommandDryRunKey         = "command.dry_run"

	// Timeline Store attributes
	StoreProjectIDKey = "store.project_id"
	StoreTableKey      = "store.table"

	// Audio engine attributes
	AudioSessionIDKey    = "audio.session_id"
	AudioSpeedKey        = "audio.speed"
	AudioQualityModeKey  = "audio.quality_mode"
	AudioTransportKey    = "audio.transport_state"
	AudioBurstKey        = "audio.burst"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// CommandAttributes creates common Command Engine span attributes.
func CommandAttributes(commandType string, sequenceNumber int64, sequenceID string, dryRun bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(CommandTypeKey, commandType),
		attribute.Int64(CommandSequenceNumberKey, sequenceNumber),
		attribute.String(CommandSequenceIDKey, sequenceID),
		attribute.Bool(CommandDryRunKey, dryRun),
	}
}

// StoreAttributes creates Timeline Store span attributes.
func StoreAttributes(projectID, table string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if projectID != "" {
		attrs = append(attrs, attribute.String(StoreProjectIDKey, projectID))
	}
	if table != "" {
		attrs = append(attrs, attribute.String(StoreTableKey, table))
	}
	return attrs
}

// AudioAttributes creates audio engine span attributes.
func AudioAttributes(sessionID string, speed float64, qualityMode, transportState string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AudioSessionIDKey, sessionID),
		attribute.Float64(AudioSpeedKey, speed),
		attribute.String(AudioQualityModeKey, qualityMode),
		attribute.String(AudioTransportKey, transportState),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
