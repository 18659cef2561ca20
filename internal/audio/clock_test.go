// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTimeUS_UnitySpeedTracksElapsed(t *testing.T) {
	// epoch=0, anchor=1_000_000us, device playhead advances 500_000us, no latency.
	got := GetTimeUS(1_000_000, 0, 500_000, 0, 1.0, 0)
	assert.Equal(t, int64(1_500_000), got)
}

func TestGetTimeUS_SubtractsOutputLatencyBeforeScaling(t *testing.T) {
	got := GetTimeUS(0, 0, 100_000, 20_000, 1.0, 0)
	assert.Equal(t, int64(80_000), got)
}

func TestGetTimeUS_ElapsedBeforeLatencyFloorsAtZero(t *testing.T) {
	// devicePlayhead - epoch - latency is negative: clamps elapsed to 0.
	got := GetTimeUS(1_000_000, 0, 10_000, 20_000, 1.0, 0)
	assert.Equal(t, int64(1_000_000), got)
}

func TestGetTimeUS_ClampsToMaxMedia(t *testing.T) {
	got := GetTimeUS(0, 0, 10_000_000, 0, 1.0, 5_000_000)
	assert.Equal(t, int64(5_000_000), got)
}

func TestGetTimeUS_ClampsToZero(t *testing.T) {
	got := GetTimeUS(0, 0, 0, 0, 0, 0)
	assert.Equal(t, int64(0), got)
}

func TestGetTimeUS_NegativeSpeedCeilsNotFloors(t *testing.T) {
	// speed=-0.5, elapsed=3us -> scaled=-1.5 -> ceil(-1.5) = -1, not floor(-1.5) = -2.
	got := GetTimeUS(100, 0, 3, 0, -0.5, 0)
	assert.Equal(t, int64(99), got)
}

func TestGetTimeUS_MonotoneUnderRepeatedCalls(t *testing.T) {
	prev := int64(-1)
	for playhead := int64(0); playhead <= 100_000; playhead += 1000 {
		cur := GetTimeUS(0, 0, playhead, 20_000, 1.0, 0)
		require.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestSelectQualityMode(t *testing.T) {
	cases := []struct {
		speed float64
		want  QualityMode
	}{
		{0.0, QualityQ2},
		{0.1, QualityQ2},
		{-0.2, QualityQ2},
		{0.25, QualityQ3},
		{0.9, QualityQ3},
		{1.0, QualityQ1},
		{-2.5, QualityQ1},
		{4.0, QualityQ1},
		{4.01, QualityQ3},
		{-8.0, QualityQ3},
		{16.0, QualityQ3},
	}
	for _, c := range cases {
		got, err := SelectQualityMode(c.speed)
		require.NoError(t, err, "speed=%v", c.speed)
		assert.Equal(t, c.want, got, "speed=%v", c.speed)
	}
}

func TestSelectQualityMode_RejectsOutOfBoundSpeed(t *testing.T) {
	_, err := SelectQualityMode(16.01)
	require.Error(t, err)
	_, err = SelectQualityMode(-20)
	require.Error(t, err)
}
