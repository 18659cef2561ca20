// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package command

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies no test in this package leaks a goroutine.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
