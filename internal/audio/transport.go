// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package audio

import "context"

// Start begins playback from mediaUS at the given signed speed, reanchoring
// the engine (spec §4.5 transport event).
func (s *Session) Start(ctx context.Context, mediaUS int64, speed float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return errSessionNotReady("start")
	}
	if err := s.reanchorLocked(ctx, mediaUS, speed); err != nil {
		return err
	}
	s.playing = true
	return s.schedulePumpLocked()
}

// Stop halts playback and cancels the pending pump timer. The device is not
// closed; Start can resume later.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return errSessionNotReady("stop")
	}
	s.playing = false
	s.cancelPumpLocked()
	return s.device.Stop()
}

// Seek reanchors to a new media time at the current speed (spec §4.5
// transport event), preserving play/pause state.
func (s *Session) Seek(ctx context.Context, mediaUS int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return errSessionNotReady("seek")
	}
	if err := s.reanchorLocked(ctx, mediaUS, s.speed); err != nil {
		return err
	}
	if s.playing {
		s.cancelPumpLocked()
		return s.schedulePumpLocked()
	}
	return nil
}

// SetSpeed changes playback speed, reanchoring at the current media time
// (spec §4.5 transport event) so the quality mode can be re-selected.
func (s *Session) SetSpeed(ctx context.Context, speed float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return errSessionNotReady("set_speed")
	}
	cur := s.currentMediaTimeLocked()
	if err := s.reanchorLocked(ctx, cur, speed); err != nil {
		return err
	}
	if s.playing {
		s.cancelPumpLocked()
		return s.schedulePumpLocked()
	}
	return nil
}

// cancelPumpLocked stops any outstanding pump timer without changing
// s.playing. Caller must hold s.mu.
func (s *Session) cancelPumpLocked() {
	if s.pumpTimer != nil {
		s.pumpTimer.Stop()
		s.pumpTimer = nil
	}
	s.pumpScheduled = false
}

// Latch pins playback to the current media time at speed 0 (spec §4.5:
// holding a frame without decaying the transport into a full stop), used
// while scrubbing pauses between burst plays.
func (s *Session) Latch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return errSessionNotReady("latch")
	}
	cur := s.currentMediaTimeLocked()
	if err := s.reanchorLocked(ctx, cur, 0); err != nil {
		return err
	}
	s.playing = false
	s.cancelPumpLocked()
	return nil
}

// LastError returns the error that most recently caused the pump to stop
// playback on its own, or nil if playback has never self-stopped.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// GetTimeUS returns the current master-clock media time.
func (s *Session) GetTimeUS() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentMediaTimeLocked()
}

func (s *Session) currentMediaTimeLocked() int64 {
	outputLatencyUS := int64(s.cfg.OutputLatencyMS) * 1000
	return GetTimeUS(s.mediaUS, s.epochUS, s.device.PlayheadUS(), outputLatencyUS, s.speed, s.maxMediaUS)
}
