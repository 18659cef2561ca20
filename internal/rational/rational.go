// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package rational implements exact rational frame-time arithmetic: an
// integer frame count at a rational rate (num/den). Internal math never
// leaves the rational domain; seconds conversion is a UI-facing helper only.
package rational

import (
	"fmt"
	"math"

	"github.com/ManuGH/xg2g/internal/errs"
)

// RoundMode selects how a rescale operation resolves a non-integer result.
type RoundMode int

const (
	RoundNearest RoundMode = iota
	RoundFloor
	RoundCeil
)

// Time is an exact frame count at a rational rate. The zero value is not a
// valid Time (rate 0/0); always construct via New or FromSeconds.
type Time struct {
	Frames int64
	Num    int64 // rate numerator, > 0
	Den    int64 // rate denominator, > 0
}

// New validates the rate and returns a Time. Frames may be any integer
// (including negative, representing time before the sequence start).
func New(frames, num, den int64) (Time, error) {
	if num <= 0 || den <= 0 {
		return Time{}, errs.InvalidArgument("rate must be positive, got %d/%d", num, den)
	}
	return Time{Frames: frames, Num: num, Den: den}, nil
}

// MustNew is New but panics on error; for use with compile-time-known rates.
func MustNew(frames, num, den int64) Time {
	t, err := New(frames, num, den)
	if err != nil {
		panic(err)
	}
	return t
}

// FromSeconds converts a floating-point second count to the nearest frame at
// the given rate. Round-nearest. UI ingress helper only — never used in
// internal arithmetic paths.
func FromSeconds(sec float64, num, den int64) (Time, error) {
	if num <= 0 || den <= 0 {
		return Time{}, errs.InvalidArgument("rate must be positive, got %d/%d", num, den)
	}
	framesPerSec := float64(num) / float64(den)
	frames := int64(math.Round(sec * framesPerSec))
	return Time{Frames: frames, Num: num, Den: den}, nil
}

// ToSeconds converts to a floating-point second count. UI egress helper only.
func (t Time) ToSeconds() float64 {
	return float64(t.Frames) * float64(t.Den) / float64(t.Num)
}

func (t Time) String() string {
	return fmt.Sprintf("%d@%d/%d", t.Frames, t.Num, t.Den)
}

// rescale rescales t's frame count to newNum/newDen under the given rounding mode.
func (t Time) rescale(newNum, newDen int64, mode RoundMode) (Time, error) {
	if newNum <= 0 || newDen <= 0 {
		return Time{}, errs.InvalidArgument("rescale target rate must be positive, got %d/%d", newNum, newDen)
	}
	if t.Num == newNum && t.Den == newDen {
		return t, nil
	}
	// new_frames = frames * (t.Den/t.Num) * (newNum/newDen)
	num := t.Frames * t.Den * newNum
	den := t.Num * newDen
	var frames int64
	switch mode {
	case RoundFloor:
		frames = floorDiv(num, den)
	case RoundCeil:
		frames = -floorDiv(-num, den)
	default: // RoundNearest
		frames = roundDiv(num, den)
	}
	return Time{Frames: frames, Num: newNum, Den: newDen}, nil
}

// Rescale rescales to a new rate, rounding to the nearest frame.
func (t Time) Rescale(newNum, newDen int64) (Time, error) {
	return t.rescale(newNum, newDen, RoundNearest)
}

// RescaleFloor rescales to a new rate, rounding down.
func (t Time) RescaleFloor(newNum, newDen int64) (Time, error) {
	return t.rescale(newNum, newDen, RoundFloor)
}

// RescaleCeil rescales to a new rate, rounding up.
func (t Time) RescaleCeil(newNum, newDen int64) (Time, error) {
	return t.rescale(newNum, newDen, RoundCeil)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func roundDiv(a, b int64) int64 {
	if b < 0 {
		a, b = -a, -b
	}
	if a >= 0 {
		return (a + b/2) / b
	}
	return -((-a + b/2) / b)
}

// Add returns t + other, rescaling other to t's rate first.
func (t Time) Add(other Time) (Time, error) {
	rhs, err := other.Rescale(t.Num, t.Den)
	if err != nil {
		return Time{}, err
	}
	return Time{Frames: t.Frames + rhs.Frames, Num: t.Num, Den: t.Den}, nil
}

// Sub returns t - other, rescaling other to t's rate first.
func (t Time) Sub(other Time) (Time, error) {
	rhs, err := other.Rescale(t.Num, t.Den)
	if err != nil {
		return Time{}, err
	}
	return Time{Frames: t.Frames - rhs.Frames, Num: t.Num, Den: t.Den}, nil
}

// MulScalar returns t scaled by an integer scalar.
func (t Time) MulScalar(scalar int64) Time {
	return Time{Frames: t.Frames * scalar, Num: t.Num, Den: t.Den}
}

// DivScalar returns t divided by an integer scalar, rounding to nearest.
// Fails on division by zero.
func (t Time) DivScalar(scalar int64) (Time, error) {
	if scalar == 0 {
		return Time{}, errs.InvalidArgument("division by zero scalar")
	}
	return Time{Frames: roundDiv(t.Frames, scalar), Num: t.Num, Den: t.Den}, nil
}

// Neg returns -t.
func (t Time) Neg() Time {
	return Time{Frames: -t.Frames, Num: t.Num, Den: t.Den}
}

// Equal compares t and other for equality, cross-multiplying to compare
// across differing rates without leaving the rational domain.
func (t Time) Equal(other Time) bool {
	return t.Frames*t.Den*other.Num == other.Frames*other.Den*t.Num
}

// Cmp returns -1, 0, or 1 as t is less than, equal to, or greater than other,
// via cross-multiplication (no rescale/rounding involved, so it is exact
// even across differing rates).
func (t Time) Cmp(other Time) int {
	lhs := t.Frames * t.Den * other.Num
	rhs := other.Frames * other.Den * t.Num
	// cross terms scale with Num and Den, which are always positive, so sign is preserved
	switch {
	case lhs < rhs:
		return -1
	case lhs > rhs:
		return 1
	default:
		return 0
	}
}

// Less reports whether t < other.
func (t Time) Less(other Time) bool { return t.Cmp(other) < 0 }

// LessEqual reports whether t <= other.
func (t Time) LessEqual(other Time) bool { return t.Cmp(other) <= 0 }

// Max returns the later of t and other, in t's rate.
func (t Time) Max(other Time) (Time, error) {
	if t.Cmp(other) >= 0 {
		return t, nil
	}
	return other.Rescale(t.Num, t.Den)
}

// Min returns the earlier of t and other, in t's rate.
func (t Time) Min(other Time) (Time, error) {
	if t.Cmp(other) <= 0 {
		return t, nil
	}
	return other.Rescale(t.Num, t.Den)
}

// DivRational returns the dimensionless ratio t/other (duration ratio).
// Fails if other represents zero duration.
func (t Time) DivRational(other Time) (float64, error) {
	if other.Frames == 0 {
		return 0, errs.InvalidArgument("division by zero-duration rational time")
	}
	tSec := t.ToSeconds()
	oSec := other.ToSeconds()
	return tSec / oSec, nil
}

// IsZero reports whether the frame count is zero (rate-independent).
func (t Time) IsZero() bool { return t.Frames == 0 }
