// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package engine

// Version identifies this build in health responses and telemetry resource
// attributes. Overridden at link time via:
//
//	-ldflags "-X github.com/ManuGH/xg2g/internal/engine.Version=v1.2.3"
var Version = "dev"
