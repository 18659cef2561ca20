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

func TestPlayBurst_WritesDecodedFramesAndStarts(t *testing.T) {
	s, _, _, dev, _ := newFakeSession(t)
	require.NoError(t, s.PlayBurst(context.Background(), 1_000_000, 40_000, 0))
	assert.True(t, dev.started)
	assert.Greater(t, dev.written, 0)
}

func TestPlayBurst_ClampsToClipEnd(t *testing.T) {
	s, dec, _, _, _ := newFakeSession(t)
	// Request a burst that would run past clipEndUS; the decoder should only
	// be asked for audio up to the clip boundary.
	err := s.PlayBurst(context.Background(), 1_000_000, 100_000, 1_020_000)
	require.NoError(t, err)
	_ = dec

	// The decoded chunk is cached with the clamped end and holds 20ms of
	// stereo frames (960 at 48kHz), not the requested 100ms.
	s.mu.Lock()
	e, ok := s.pcm.Get(1_000_000)
	s.mu.Unlock()
	require.True(t, ok)
	assert.Equal(t, int64(1_020_000), e.EndUS)
	assert.Len(t, e.Frames, 960*2)
}

func TestPlayBurst_RejectsWhenNotReady(t *testing.T) {
	s, _, _, _, _ := newFakeSession(t)
	s.ready = false
	err := s.PlayBurst(context.Background(), 0, 40_000, 0)
	require.Error(t, err)
}

func TestPlayBurst_ReusesCachedPCMWithinWindow(t *testing.T) {
	s, dec, _, dev, _ := newFakeSession(t)
	require.NoError(t, s.PlayBurst(context.Background(), 1_000_000, 40_000, 0))

	s.mu.Lock()
	_, hit := s.pcm.Get(1_000_000)
	s.mu.Unlock()
	require.True(t, hit, "first burst's chunk must be cached at its own start time")

	// A second burst at the same start must be served from the cache: the
	// decoder is made to return nothing for that range, yet frames are
	// still written to the device.
	dec.startDelay = 1_000_000
	written := dev.written
	require.NoError(t, s.PlayBurst(context.Background(), 1_000_000, 40_000, 0))
	assert.Greater(t, dev.written, written)
}

func TestStopBurst_OnlyMostRecentGenerationStopsDevice(t *testing.T) {
	s, _, _, dev, _ := newFakeSession(t)
	require.NoError(t, s.PlayBurst(context.Background(), 0, 10_000, 0))
	s.mu.Lock()
	staleGen := s.burstGeneration - 1
	s.mu.Unlock()

	s.stopBurst(staleGen)
	assert.True(t, dev.started, "a stale generation's stop must be ignored")

	s.mu.Lock()
	curGen := s.burstGeneration
	s.mu.Unlock()
	s.stopBurst(curGen)
	assert.False(t, dev.started, "the current generation's stop must actually stop the device")
}
