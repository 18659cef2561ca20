// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package audio

import "github.com/ManuGH/xg2g/internal/errs"

func errInvalidSpeed(speed float64) error {
	return errs.InternalInvariant("speed %f exceeds the |s|<=16 transport bound", speed)
}

func errReentrantPump() error {
	return errs.InternalInvariant("pump tick re-entered while a prior tick's timer was still outstanding")
}

func errNegativePlayheadDelta(prev, cur int64) error {
	return errs.InternalInvariant("device playhead moved backward: %d -> %d", prev, cur)
}

func errSessionNotReady(op string) error {
	return errs.SessionNotReady("audio session not ready for %s", op)
}
