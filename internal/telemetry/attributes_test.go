// SPDX-License-Identifier: MIT
package telemetry

import (
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestCommandAttributes(t *testing.T) {
	attrs := CommandAttributes("ripple_edit", 42, "seq-1", false)

	if len(attrs) != 4 {
		t.Fatalf("Expected 4 attributes, got %d", len(attrs))
	}

	verifyAttribute(t, attrs, CommandTypeKey, "ripple_edit")
	verifyInt64Attribute(t, attrs, CommandSequenceNumberKey, 42)
	verifyAttribute(t, attrs, CommandSequenceIDKey, "seq-1")
	verifyBoolAttribute(t, attrs, CommandDryRunKey, false)
}

func TestStoreAttributes(t *testing.T) {
	tests := []struct {
		name      string
		projectID string
		table     string
		wantLen   int
	}{
		{"all fields", "proj-1", "clips", 2},
		{"only project", "proj-1", "", 1},
		{"empty fields", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := StoreAttributes(tt.projectID, tt.table)
			if len(attrs) != tt.wantLen {
				t.Errorf("Expected %d attributes, got %d", tt.wantLen, len(attrs))
			}
			if tt.projectID != "" {
				verifyAttribute(t, attrs, StoreProjectIDKey, tt.projectID)
			}
			if tt.table != "" {
				verifyAttribute(t, attrs, StoreTableKey, tt.table)
			}
		})
	}
}

func TestAudioAttributes(t *testing.T) {
	attrs := AudioAttributes("sess-1", 2.0, "Q1", "playing")

	if len(attrs) != 4 {
		t.Fatalf("Expected 4 attributes, got %d", len(attrs))
	}

	verifyAttribute(t, attrs, AudioSessionIDKey, "sess-1")
	verifyAttribute(t, attrs, AudioQualityModeKey, "Q1")
	verifyAttribute(t, attrs, AudioTransportKey, "playing")
}

func TestErrorAttributes(t *testing.T) {
	err := errors.New("test error")
	attrs := ErrorAttributes(err, "replay_corruption")

	if len(attrs) != 2 {
		t.Fatalf("Expected 2 attributes, got %d", len(attrs))
	}

	verifyBoolAttribute(t, attrs, ErrorKey, true)
	verifyAttribute(t, attrs, ErrorTypeKey, "replay_corruption")
}

func TestAttributeKeys_Consistency(t *testing.T) {
	keys := []string{
		CommandTypeKey,
		CommandSequenceNumberKey,
		StoreProjectIDKey,
		AudioSessionIDKey,
		ErrorKey,
	}

	for _, key := range keys {
		if key == "" {
			t.Errorf("Expected non-empty attribute key")
		}
	}
}

// Helper functions for attribute verification

func verifyAttribute(t *testing.T, attrs []attribute.KeyValue, key, expectedValue string) {
	t.Helper()
	for _, attr := range attrs {
		if string(attr.Key) == key {
			if attr.Value.AsString() != expectedValue {
				t.Errorf("Expected %s=%s, got %s", key, expectedValue, attr.Value.AsString())
			}
			return
		}
	}
	t.Errorf("Attribute %s not found", key)
}

func verifyInt64Attribute(t *testing.T, attrs []attribute.KeyValue, key string, expectedValue int64) {
	t.Helper()
	for _, attr := range attrs {
		if string(attr.Key) == key {
			if attr.Value.AsInt64() != expectedValue {
				t.Errorf("Expected %s=%d, got %d", key, expectedValue, attr.Value.AsInt64())
			}
			return
		}
	}
	t.Errorf("Attribute %s not found", key)
}

func verifyBoolAttribute(t *testing.T, attrs []attribute.KeyValue, key string, expectedValue bool) {
	t.Helper()
	for _, attr := range attrs {
		if string(attr.Key) == key {
			if attr.Value.AsBool() != expectedValue {
				t.Errorf("Expected %s=%t, got %t", key, expectedValue, attr.Value.AsBool())
			}
			return
		}
	}
	t.Errorf("Attribute %s not found", key)
}
