// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package audio

import "math"

// GetTimeUS derives the master clock (spec §4.5): the media time implied by
// how far the device has actually played since the last reanchor, corrected
// for fixed output latency and scaled by playback speed. epochUS is the
// device playhead captured at the last reanchor; anchorMediaUS is the media
// time SET_TARGET was called with at that reanchor; devicePlayheadUS is the
// device's current monotonic playhead; outputLatencyUS is the fixed
// hardware+mixer latency to subtract before scaling. maxMediaUS clamps the
// result to the sequence's duration.
//
// Floors for positive speed and ceils for negative speed, so repeated calls
// during steady playback never report time moving backward relative to the
// true elapsed device time (spec §4.5, §8 clock-monotone scenario).
func GetTimeUS(anchorMediaUS, epochUS, devicePlayheadUS, outputLatencyUS int64, speed float64, maxMediaUS int64) int64 {
	elapsed := devicePlayheadUS - epochUS - outputLatencyUS
	if elapsed < 0 {
		elapsed = 0
	}
	scaled := float64(elapsed) * speed
	var delta int64
	if speed >= 0 {
		delta = int64(math.Floor(scaled))
	} else {
		delta = int64(math.Ceil(scaled))
	}
	t := anchorMediaUS + delta
	if t < 0 {
		t = 0
	}
	if maxMediaUS > 0 && t > maxMediaUS {
		t = maxMediaUS
	}
	return t
}

// Quality-mode speed thresholds (spec §4.5).
const (
	q2UpperBound = 0.25
	q1UpperBound = 1.0
	q1MaxSpeed   = 4.0
	q3MaxSpeed   = 16.0
)

// SelectQualityMode chooses the stretch engine's processing mode from the
// magnitude of the requested playback speed (spec §4.5):
//
//	|s| < 0.25          -> Q2 (pitch-corrected stretch, extreme slowdown)
//	0.25 <= |s| < 1      -> Q3 (decimate/varispeed, natural pitch drop)
//	1 <= |s| <= 4        -> Q1 (editor-quality stretch)
//	4 < |s| <= 16        -> Q3 (sample-skipping, no pitch correction)
//
// |s| > 16 is a caller-side precondition violation: every transport path
// must clamp speed before reaching here, so this returns ErrInternalInvariant
// rather than silently picking a mode.
func SelectQualityMode(speed float64) (QualityMode, error) {
	s := math.Abs(speed)
	switch {
	case s > q3MaxSpeed:
		return 0, errInvalidSpeed(speed)
	case s < q2UpperBound:
		return QualityQ2, nil
	case s < q1UpperBound:
		return QualityQ3, nil
	case s <= q1MaxSpeed:
		return QualityQ1, nil
	default: // q1MaxSpeed < s <= q3MaxSpeed
		return QualityQ3, nil
	}
}
