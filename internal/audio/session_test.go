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

func TestResolveMix_SoloWinsOverMute(t *testing.T) {
	in := []TrackMixInput{
		{TrackIndex: 0, Volume: 1.0, Muted: false, Soloed: true},
		{TrackIndex: 1, Volume: 0.8, Muted: false, Soloed: false},
		{TrackIndex: 2, Volume: 0.5, Muted: true, Soloed: false},
	}
	out := ResolveMix(in)
	require.Len(t, out, 3)
	assert.Equal(t, 1.0, out[0].Volume, "soloed track keeps its volume")
	assert.Equal(t, 0.0, out[1].Volume, "non-soloed track silenced when any track is soloed")
	assert.Equal(t, 0.0, out[2].Volume, "muted track silenced regardless")
}

func TestResolveMix_MuteAppliesWithoutSolo(t *testing.T) {
	in := []TrackMixInput{
		{TrackIndex: 0, Volume: 1.0, Muted: true, Soloed: false},
		{TrackIndex: 1, Volume: 0.6, Muted: false, Soloed: false},
	}
	out := ResolveMix(in)
	assert.Equal(t, 0.0, out[0].Volume)
	assert.Equal(t, 0.6, out[1].Volume)
}

func TestSession_ApplyMix_RejectsWhenNotReady(t *testing.T) {
	s, _, _, _, _ := newFakeSession(t)
	s.ready = false
	err := s.ApplyMix(context.Background(), []TrackMixInput{{TrackIndex: 0, Volume: 1}})
	require.Error(t, err)
}

func TestSession_ApplyMix_PushesResolvedMixToDecoder(t *testing.T) {
	s, dec, _, _, _ := newFakeSession(t)
	err := s.ApplyMix(context.Background(), []TrackMixInput{
		{TrackIndex: 0, Volume: 1, Soloed: true},
		{TrackIndex: 1, Volume: 1, Soloed: false},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, dec.mixCalls)
	require.Len(t, s.mixes, 2)
	assert.Equal(t, 0.0, s.mixes[1].Volume)
}

func TestSession_Shutdown_IsIdempotent(t *testing.T) {
	s, _, _, dev, _ := newFakeSession(t)
	require.NoError(t, s.Shutdown())
	require.NoError(t, s.Shutdown())
	assert.False(t, dev.started)
}
