// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package audio

import (
	"context"

	"go.opentelemetry.io/otel/codes"

	"github.com/ManuGH/xg2g/internal/telemetry"
)

// reanchorLocked performs the reanchor sequence (spec §4.5), called only on
// transport events (start/seek/set_speed/latch), never during
// steady-state playback:
//
//  1. flush the device without resetting its playhead
//  2. record epoch = the device's playhead right after the flush
//  3. reset the stretch engine
//  4. SET_TARGET(media_time, speed, quality)
//  5. clear the PCM-range cache
//
// Caller must hold s.mu.
func (s *Session) reanchorLocked(ctx context.Context, mediaUS int64, speed float64) (err error) {
	ctx, span := telemetry.Tracer("audio").Start(ctx, "audio.reanchor")
	span.SetAttributes(telemetry.AudioAttributes("", speed, "", "")...)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	quality, err := SelectQualityMode(speed)
	if err != nil {
		return err
	}
	if err := s.device.Flush(); err != nil {
		return err
	}
	s.epochUS = s.device.PlayheadUS()
	s.stretch.Reset()
	s.stretch.SetTarget(mediaUS, speed, quality)
	s.pcm.Clear()

	s.mediaUS = mediaUS
	s.speed = speed

	return s.handleCodecDelayLocked(ctx, mediaUS, speed, quality)
}

// handleCodecDelayLocked re-targets the stretch engine if the decoder's
// first actual PCM frame starts later than the requested media time (spec
// §4.5: "the decoder may return a later actual_start than requested").
func (s *Session) handleCodecDelayLocked(ctx context.Context, mediaUS int64, speed float64, quality QualityMode) error {
	windowUS := int64(200 * 1000) // probe a short window ahead, enough to see codec priming delay
	chunk, err := s.decoder.GetMixedAudio(ctx, mediaUS, mediaUS+windowUS)
	if err != nil {
		return err
	}
	if chunk == nil {
		return nil
	}
	if chunk.StartUS > mediaUS {
		s.stretch.SetTarget(chunk.StartUS, speed, quality)
		s.mediaUS = chunk.StartUS
	}
	return nil
}
