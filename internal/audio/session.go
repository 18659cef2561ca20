// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package audio

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/codes"

	"github.com/ManuGH/xg2g/internal/audio/pcmcache"
	"github.com/ManuGH/xg2g/internal/config"
	"github.com/ManuGH/xg2g/internal/telemetry"
)

// blockFrames is the stretch engine's fixed processing block size, chosen
// once at session creation and never varied (spec §4.5).
const blockFrames = 512

// Session owns one device, one stretch engine, and the decoder used to feed
// it. All transport/pump/reanchor state lives here; there is exactly one
// Session per open sequence preview (spec §5: single cooperative scheduler).
type Session struct {
	mu sync.Mutex

	cfg     config.AudioConfig
	decoder Decoder
	stretch StretchEngine
	device  Device
	clock   Clock
	pcm     *pcmcache.Cache

	ready bool

	// Transport state.
	playing   bool
	speed     float64
	mediaUS   int64 // anchorMediaUS at last reanchor
	epochUS   int64 // device playhead at last reanchor
	maxMediaUS int64

	// Pump re-entrancy guard (spec §5: "at most one pump timer outstanding").
	pumpTimer      Timer
	pumpScheduled  bool
	lastPlayheadUS int64

	// Burst generation tag (spec §4.5 play_burst): only the most recent
	// burst's scheduled stop fires.
	burstGeneration int64

	// lastErr records the error that caused the pump to stop playback on its
	// own (device/decoder failure, playhead regression), for callers polling
	// session health after an unattended stop.
	lastErr error

	mixes []ResolvedMix
}

// NewSession constructs a Session, opening the device and creating the
// stretch engine at the configured rate/channels. It returns the opener's or
// factory's error (closing an already-opened device) if either fails.
func NewSession(cfg config.AudioConfig, decoder Decoder, openDevice DeviceOpener, newStretch StretchEngineFactory, clock Clock) (*Session, error) {
	s := &Session{
		cfg:     cfg,
		decoder: decoder,
		clock:   clock,
		pcm:     pcmcache.New(cfg.PCMCacheRangeSecs),
	}
	device, err := openDevice(cfg.SampleRate, cfg.Channels, cfg.TargetBufferMS)
	if err != nil {
		return nil, err
	}
	stretch, err := newStretch(cfg.SampleRate, cfg.Channels, blockFrames)
	if err != nil {
		_ = device.Close()
		return nil, err
	}
	s.device = device
	s.stretch = stretch
	return s, nil
}

// Init starts the device and marks the session ready for transport calls
// (spec §4.5 init_session). maxMediaUS bounds GetTimeUS's clamp.
func (s *Session) Init(maxMediaUS int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.device.Start(); err != nil {
		return err
	}
	s.maxMediaUS = maxMediaUS
	s.ready = true
	return nil
}

// ApplyMix resolves and pushes a new per-track mix (spec §4.5 apply_mix:
// "soloing wins over muting"). It is a hot swap: decode state is untouched.
func (s *Session) ApplyMix(ctx context.Context, tracks []TrackMixInput) (err error) {
	ctx, span := telemetry.Tracer("audio").Start(ctx, "audio.ApplyMix")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return errSessionNotReady("apply_mix")
	}
	resolved := ResolveMix(tracks)
	s.mixes = resolved
	return s.decoder.SetAudioMixParams(ctx, resolved, s.cfg.SampleRate, s.cfg.Channels)
}

// Shutdown stops the pump, stops and closes the device, and clears the
// PCM cache (spec §4.5 shutdown_session). Safe to call once; a second call
// is a no-op.
func (s *Session) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil
	}
	s.ready = false
	s.cancelPumpLocked()
	_ = s.device.Stop()
	err := s.device.Close()
	s.pcm.Clear()
	return err
}

// TrackMixInput is one track's raw volume/mute/solo state, as recorded by
// the Timeline Model, before solo/mute resolution.
type TrackMixInput struct {
	TrackIndex int
	Volume     float64
	Muted      bool
	Soloed     bool
}

// ResolveMix applies "solo wins over mute" (spec §4.5): if any track is
// soloed, every non-soloed track is silenced regardless of its own mute
// flag; otherwise each track's own mute flag silences it.
func ResolveMix(tracks []TrackMixInput) []ResolvedMix {
	anySolo := false
	for _, t := range tracks {
		if t.Soloed {
			anySolo = true
			break
		}
	}
	out := make([]ResolvedMix, len(tracks))
	for i, t := range tracks {
		vol := t.Volume
		if anySolo {
			if !t.Soloed {
				vol = 0
			}
		} else if t.Muted {
			vol = 0
		}
		out[i] = ResolvedMix{TrackIndex: t.TrackIndex, Volume: vol}
	}
	return out
}
