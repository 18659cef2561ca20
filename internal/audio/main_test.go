// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package audio

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies no test in this package leaks a goroutine — in
// particular the pump's scheduled timer callback (spec §5: "at most one
// pump timer outstanding"), which a bug in cancelPumpLocked could leave
// running past a session's Shutdown.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
