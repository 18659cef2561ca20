// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package audio

import (
	"context"
	"time"

	"github.com/ManuGH/xg2g/internal/audio/pcmcache"
	"github.com/ManuGH/xg2g/internal/metrics"
)

// burstReuseWindowUS is the 200ms offset burstChunkLocked uses when probing
// the PCM cache for an entry near a burst's start.
const burstReuseWindowUS = int64(200 * 1000)

// PlayBurst plays one frame's worth of audio at mediaUS for durationUS
// (spec §4.5: arrow-key jog stepping). It clamps the burst to the clip's
// end, reuses cached PCM where burstChunkLocked finds a usable entry, and
// schedules a
// generation-tagged stop so only the most recently requested burst's stop
// timer actually stops the device.
func (s *Session) PlayBurst(ctx context.Context, mediaUS, durationUS, clipEndUS int64) error {
	metrics.AudioBurstTotal.Inc()
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return errSessionNotReady("play_burst")
	}

	endUS := mediaUS + durationUS
	if clipEndUS > 0 && endUS > clipEndUS {
		endUS = clipEndUS
	}

	chunk, err := s.burstChunkLocked(ctx, mediaUS, endUS)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	if err := s.device.Flush(); err != nil {
		s.mu.Unlock()
		return err
	}
	if chunk != nil {
		if err := s.device.WriteF32(chunk.Frames); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	if err := s.device.Start(); err != nil {
		s.mu.Unlock()
		return err
	}

	s.burstGeneration++
	gen := s.burstGeneration
	wait := time.Duration(endUS-mediaUS) * time.Microsecond
	s.mu.Unlock()

	s.clock.AfterFunc(wait, func() { s.stopBurst(gen) })
	return nil
}

// burstChunkLocked returns cached PCM for a burst over [startUS,endUS), or
// decodes and caches a fresh chunk. The cache is keyed by exact start time,
// so only two entries are ever reused: one starting exactly at startUS, or
// one starting exactly burstReuseWindowUS earlier whose range reaches endUS.
// Entries starting anywhere else within 200ms of startUS are not found.
// Caller must hold s.mu.
func (s *Session) burstChunkLocked(ctx context.Context, startUS, endUS int64) (*PCMChunk, error) {
	if e, ok := s.pcm.Get(startUS); ok {
		return &PCMChunk{StartUS: e.StartUS, Frames: e.Frames}, nil
	}
	for off := -burstReuseWindowUS; off <= burstReuseWindowUS; off += burstReuseWindowUS {
		if e, ok := s.pcm.Get(startUS + off); ok && e.EndUS >= endUS && e.StartUS <= startUS {
			return &PCMChunk{StartUS: e.StartUS, Frames: e.Frames}, nil
		}
	}

	chunk, err := s.decoder.GetMixedAudio(ctx, startUS, endUS)
	if err != nil {
		return nil, err
	}
	if chunk != nil {
		s.pcm.Put(pcmcache.Entry{StartUS: chunk.StartUS, EndUS: endUS, Frames: chunk.Frames})
	}
	return chunk, nil
}

// stopBurst stops and flushes the device, but only for the most recently
// requested burst (spec §4.5: "a monotonically increasing generation tag so
// only the most recent burst's stop timer fires").
func (s *Session) stopBurst(gen int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.burstGeneration {
		return
	}
	_ = s.device.Stop()
	_ = s.device.Flush()
}
