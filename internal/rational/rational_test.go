// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package rational

import (
	"testing"

	"github.com/ManuGH/xg2g/internal/errs"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsNonPositiveRate(t *testing.T) {
	_, err := New(10, 0, 1)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = New(10, 1, -1)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestAddCommutative(t *testing.T) {
	a := MustNew(10, 24, 1)
	b := MustNew(20, 24, 1)

	ab, err := a.Add(b)
	require.NoError(t, err)
	ba, err := b.Add(a)
	require.NoError(t, err)
	require.True(t, ab.Equal(ba))
}

func TestSubSelfIsZero(t *testing.T) {
	a := MustNew(123, 30, 1)
	z, err := a.Sub(a)
	require.NoError(t, err)
	require.True(t, z.IsZero())
}

func TestEqualityTransitive(t *testing.T) {
	a := MustNew(48, 24, 1) // 2s at 24fps
	b := MustNew(96, 48, 1) // 2s at 48fps
	c := MustNew(2, 1, 1)   // 2s at 1fps

	require.True(t, a.Equal(b))
	require.True(t, b.Equal(c))
	require.True(t, a.Equal(c))
}

func TestRescaleRoundNearest(t *testing.T) {
	// 1 frame at 24fps is 1/24s; at 48000fps that's 2000 frames exactly.
	a := MustNew(1, 24, 1)
	r, err := a.Rescale(48000, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2000), r.Frames)
}

func TestRescaleFloorCeil(t *testing.T) {
	// 1 frame at 3fps -> 1/3 s. At 2fps that's 0.666 frames.
	a := MustNew(1, 3, 1)

	floor, err := a.RescaleFloor(2, 1)
	require.NoError(t, err)
	require.Equal(t, int64(0), floor.Frames)

	ceil, err := a.RescaleCeil(2, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), ceil.Frames)

	nearest, err := a.Rescale(2, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), nearest.Frames) // 0.666 rounds to 1
}

func TestRescaleDistributesOverAdd(t *testing.T) {
	a := MustNew(10, 24, 1)
	b := MustNew(15, 24, 1)
	sum, err := a.Add(b)
	require.NoError(t, err)

	sumRescaled, err := sum.Rescale(48, 1)
	require.NoError(t, err)

	aRescaled, err := a.Rescale(48, 1)
	require.NoError(t, err)
	bRescaled, err := b.Rescale(48, 1)
	require.NoError(t, err)
	sumOfRescaled, err := aRescaled.Add(bRescaled)
	require.NoError(t, err)

	require.True(t, sumRescaled.Equal(sumOfRescaled))
}

func TestCmpAndOrdering(t *testing.T) {
	a := MustNew(10, 24, 1)
	b := MustNew(21, 48, 1) // 21/48 s = 10.5/24 s, so a < b

	require.True(t, a.Less(b))
	require.False(t, b.Less(a))
	require.Equal(t, 0, a.Cmp(a))
}

func TestMax(t *testing.T) {
	a := MustNew(10, 24, 1)
	b := MustNew(100, 48, 1) // 100/48 = 50/24, bigger

	m, err := a.Max(b)
	require.NoError(t, err)
	require.Equal(t, int64(24), m.Num)
	require.True(t, m.Equal(b))
}

func TestDivScalar_ZeroFails(t *testing.T) {
	a := MustNew(10, 24, 1)
	_, err := a.DivScalar(0)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestDivRational(t *testing.T) {
	a := MustNew(48, 24, 1) // 2s
	b := MustNew(24, 24, 1) // 1s
	ratio, err := a.DivRational(b)
	require.NoError(t, err)
	require.InDelta(t, 2.0, ratio, 1e-9)
}

func TestDivRational_ZeroDurationFails(t *testing.T) {
	a := MustNew(48, 24, 1)
	zero := MustNew(0, 24, 1)
	_, err := a.DivRational(zero)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestFromSecondsToSecondsRoundTrip(t *testing.T) {
	tm, err := FromSeconds(1.5, 24, 1)
	require.NoError(t, err)
	require.Equal(t, int64(36), tm.Frames)
	require.InDelta(t, 1.5, tm.ToSeconds(), 1e-9)
}

func TestNegAndString(t *testing.T) {
	a := MustNew(10, 24, 1)
	require.Equal(t, int64(-10), a.Neg().Frames)
	require.Equal(t, "10@24/1", a.String())
}
