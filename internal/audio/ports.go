// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package audio implements the Audio Engine (spec §4.5): a single
// cooperative-scheduler-driven session owning a device handle and a
// time-stretch engine, deriving the system's master clock. The external
// decoder, stretch engine, device, and timer contracts of spec §6 are kept
// narrow ports, mirroring the source's Deps/ports composition style, so a
// real platform backend can be substituted without touching transport,
// reanchor, or pump logic.
package audio

import (
	"context"
	"time"
)

// PCMChunk is interleaved float32 PCM returned by a Decoder, covering
// [StartUS, StartUS+duration) at the session's configured rate/channels.
type PCMChunk struct {
	StartUS int64
	Frames  []float32
}

// ResolvedMix is the per-track gain set after solo/mute resolution (spec
// §4.5 apply_mix: "soloing wins over muting").
type ResolvedMix struct {
	TrackIndex int
	Volume     float64
}

// Decoder is the external PCM source (spec §6 decoder contract). Offline
// render and playback preview both implement it; the Audio Engine never
// constructs one.
type Decoder interface {
	// SetAudioMixParams pushes a resolved per-track mix to the decoder
	// without resetting decode state (a "hot swap").
	SetAudioMixParams(ctx context.Context, resolved []ResolvedMix, rate, channels int) error
	// GetMixedAudio returns the mixed-down PCM covering [startUS, endUS), or
	// nil if the range has no content.
	GetMixedAudio(ctx context.Context, startUS, endUS int64) (*PCMChunk, error)
	// GetTrackAudio returns one track's PCM, bypassing the mix — used by
	// per-track monitoring, not by the cooperative pump.
	GetTrackAudio(ctx context.Context, trackIndex int, startUS, endUS int64, rate, channels int) (*PCMChunk, error)
}

// QualityMode selects the stretch engine's processing mode, chosen from
// |speed| by SelectQualityMode (spec §4.5).
type QualityMode int

const (
	// QualityQ1 is editor-quality stretch for near-unity speeds.
	QualityQ1 QualityMode = iota
	// QualityQ2 is pitch-corrected extreme-slowdown stretch.
	QualityQ2
	// QualityQ3 is sample-skipping/decimating varispeed with no pitch correction.
	QualityQ3
)

func (m QualityMode) String() string {
	switch m {
	case QualityQ1:
		return "Q1"
	case QualityQ2:
		return "Q2"
	case QualityQ3:
		return "Q3"
	default:
		return "unknown"
	}
}

// StretchEngine is the WSOLA-style time-stretch/pitch engine (spec §6
// stretch-engine contract). Block size is fixed at session creation.
type StretchEngine interface {
	Reset()
	// SetTarget re-anchors the engine to a new media time, signed speed, and
	// quality mode. Only called on transport events (spec §4.5 Reanchor).
	SetTarget(targetUS int64, speed float64, quality QualityMode)
	// PushPCM feeds decoded input frames starting at startUS. skip/max bound
	// how many input frames are consumed, for burst playback's windowed reuse.
	PushPCM(pcm []float32, frames int, startUS int64, skip, max int) error
	// RenderAlloc produces up to framesNeeded output frames, returning the
	// actual count produced (may be less at stream edges).
	RenderAlloc(framesNeeded int) ([]float32, int, error)
	CurrentTimeUS() int64
	Starved() bool
	ClearStarved()
}

// Device is the callback-driven audio output queue (spec §6 device
// contract). PlayheadUS is monotonic within one Open/Close session.
type Device interface {
	Close() error
	Start() error
	Stop() error
	Flush() error
	WriteF32(frames []float32) error
	BufferedFrames() int
	PlayheadUS() int64
	SampleRate() int
	Channels() int
	HadUnderrun() bool
	ClearUnderrun()
}

// DeviceOpener opens a Device at the requested rate/channels/target buffer,
// asserting the device honored the requested rate (spec §4.5 init_session).
type DeviceOpener func(rate, channels, targetBufferMS int) (Device, error)

// StretchEngineFactory creates a StretchEngine at a fixed rate/channels/block size.
type StretchEngineFactory func(rate, channels, blockFrames int) (StretchEngine, error)

// Clock abstracts wall-clock time and one-shot timers (spec §6 timer
// contract: "schedule_single_shot(ms, callback)"), grounded on the source's
// dvr.Scheduler Clock/Timer seam so the pump is deterministically testable.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable one-shot timer.
type Timer interface {
	Stop() bool
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return &realTimer{t: time.AfterFunc(d, f)}
}

type realTimer struct{ t *time.Timer }

func (r *realTimer) Stop() bool { return r.t.Stop() }
