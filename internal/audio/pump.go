// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package audio

import (
	"context"
	"time"

	"github.com/ManuGH/xg2g/internal/metrics"
)

// Pump tick intervals (spec §4.5, §5): the pump runs fast while the device
// buffer is under target so underruns recover quickly, and slow otherwise to
// avoid burning cycles once steady state is reached.
const (
	pumpFastInterval = 2 * time.Millisecond
	pumpSlowInterval = 15 * time.Millisecond
)

// schedulePumpLocked arms the one-shot pump timer, asserting none is
// already outstanding (spec §5: "at most one pump timer outstanding" — a
// violation here means a caller path re-entered the scheduler, not a
// recoverable runtime condition). Caller must hold s.mu.
func (s *Session) schedulePumpLocked() error {
	if s.pumpScheduled {
		return errReentrantPump()
	}
	s.pumpScheduled = true
	s.pumpTimer = s.clock.AfterFunc(0, s.tick)
	return nil
}

// tick is the pump's one-shot timer callback. It renders and writes as much
// audio as the device buffer has room for, then reschedules itself for the
// next tick — never before, so at most one timer is ever outstanding.
func (s *Session) tick() {
	s.mu.Lock()
	if !s.pumpScheduled {
		// Stopped/shut down between scheduling and firing; nothing to do.
		s.mu.Unlock()
		return
	}
	s.pumpScheduled = false
	s.pumpTimer = nil

	if !s.ready || !s.playing {
		s.mu.Unlock()
		return
	}

	playhead := s.device.PlayheadUS()
	if s.lastPlayheadUS != 0 && playhead < s.lastPlayheadUS {
		// The device contract guarantees a monotonic playhead within one
		// Open/Close session; a regression means the backend is broken.
		s.lastErr = errNegativePlayheadDelta(s.lastPlayheadUS, playhead)
		s.playing = false
		s.mu.Unlock()
		return
	}
	s.lastPlayheadUS = playhead

	if err := s.pumpOnceLocked(context.Background()); err != nil {
		// A pump failure stops playback rather than retrying forever against
		// a broken device/decoder.
		s.lastErr = err
		s.playing = false
		s.mu.Unlock()
		return
	}

	interval := pumpSlowInterval
	if s.device.BufferedFrames() < s.targetBufferFramesLocked() {
		interval = pumpFastInterval
	}
	s.pumpScheduled = true
	s.pumpTimer = s.clock.AfterFunc(interval, s.tick)
	s.mu.Unlock()
}

func (s *Session) targetBufferFramesLocked() int {
	return s.cfg.SampleRate * s.cfg.TargetBufferMS / 1000
}

// pumpOnceLocked renders enough output to refill the device buffer up to
// its target, pulling fresh input PCM from the decoder as the stretch
// engine starves. Caller must hold s.mu.
func (s *Session) pumpOnceLocked(ctx context.Context) error {
	target := s.targetBufferFramesLocked()
	buffered := s.device.BufferedFrames()
	if buffered >= target {
		return nil
	}
	needed := target - buffered

	if s.stretch.Starved() {
		metrics.AudioPumpStarvationTotal.Inc()
		cur := s.stretch.CurrentTimeUS()
		windowUS := int64(200 * 1000)
		chunk, err := s.decoder.GetMixedAudio(ctx, cur, cur+windowUS)
		if err != nil {
			return err
		}
		if chunk != nil {
			frames := len(chunk.Frames) / s.cfg.Channels
			if err := s.stretch.PushPCM(chunk.Frames, frames, chunk.StartUS, 0, frames); err != nil {
				return err
			}
		}
		s.stretch.ClearStarved()
	}

	out, n, err := s.stretch.RenderAlloc(needed)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	return s.device.WriteF32(out[:n*s.cfg.Channels])
}
