// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package audio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Start_Reanchors(t *testing.T) {
	s, _, str, dev, _ := newFakeSession(t)
	s.maxMediaUS = 10_000_000

	require.NoError(t, s.Start(context.Background(), 1_000_000, 1.0))
	assert.True(t, s.playing)
	assert.Equal(t, 1, dev.flushed)
	assert.Equal(t, 1, str.resets)
	assert.Equal(t, QualityQ1, str.lastMode)
	assert.True(t, s.pumpScheduled)
}

func TestSession_Stop_CancelsPumpAndStopsDevice(t *testing.T) {
	s, _, _, dev, _ := newFakeSession(t)
	require.NoError(t, s.Start(context.Background(), 0, 1.0))
	require.NoError(t, s.Stop())
	assert.False(t, s.playing)
	assert.False(t, s.pumpScheduled)
	assert.False(t, dev.started)
}

func TestSession_SetSpeed_ReselectsQualityMode(t *testing.T) {
	s, _, str, _, _ := newFakeSession(t)
	require.NoError(t, s.Start(context.Background(), 0, 1.0))
	require.NoError(t, s.SetSpeed(context.Background(), 8.0))
	assert.Equal(t, QualityQ3, str.lastMode)
	assert.Equal(t, 8.0, s.speed)
}

func TestSession_SetSpeed_RejectsOutOfBoundSpeed(t *testing.T) {
	s, _, _, _, _ := newFakeSession(t)
	require.NoError(t, s.Start(context.Background(), 0, 1.0))
	err := s.SetSpeed(context.Background(), 100.0)
	require.Error(t, err)
}

func TestSession_Latch_StopsPlaybackAtZeroSpeed(t *testing.T) {
	s, _, str, _, _ := newFakeSession(t)
	require.NoError(t, s.Start(context.Background(), 5_000, 1.0))
	require.NoError(t, s.Latch(context.Background()))
	assert.False(t, s.playing)
	assert.Equal(t, 0.0, str.lastSpeed)
}

func TestSession_Seek_PreservesPlayingState(t *testing.T) {
	s, _, _, _, _ := newFakeSession(t)
	require.NoError(t, s.Start(context.Background(), 0, 1.0))
	require.NoError(t, s.Seek(context.Background(), 2_000_000))
	assert.True(t, s.playing)
	assert.Equal(t, int64(2_000_000), s.mediaUS)
}

func TestSession_TransportCallsRejectedBeforeInit(t *testing.T) {
	s, _, _, _, _ := newFakeSession(t)
	s.ready = false
	require.Error(t, s.Start(context.Background(), 0, 1.0))
	require.Error(t, s.Stop())
	require.Error(t, s.Seek(context.Background(), 0))
	require.Error(t, s.SetSpeed(context.Background(), 1.0))
	require.Error(t, s.Latch(context.Background()))
}

func TestSession_CodecDelay_RetargetsToActualStart(t *testing.T) {
	s, dec, str, _, _ := newFakeSession(t)
	dec.startDelay = 50_000 // decoder's first real PCM starts 50ms after requested

	require.NoError(t, s.Start(context.Background(), 1_000_000, 1.0))
	assert.Equal(t, int64(1_050_000), str.curUS, "stretch engine should be re-targeted to the actual PCM start")
	assert.Equal(t, int64(1_050_000), s.mediaUS)
}
