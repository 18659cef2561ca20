// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package audio

import (
	"context"
	"sync"
	"time"

	"github.com/ManuGH/xg2g/internal/audio/pcmcache"
	"github.com/ManuGH/xg2g/internal/config"
)

// fakeDecoder synthesizes a fresh zeroed PCM chunk for every request.
type fakeDecoder struct {
	mu         sync.Mutex
	rate       int
	channels   int
	startDelay int64 // actual_start offset added to every request (codec delay)
	mixCalls   int
}

func (d *fakeDecoder) SetAudioMixParams(ctx context.Context, resolved []ResolvedMix, rate, channels int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mixCalls++
	return nil
}

func (d *fakeDecoder) GetMixedAudio(ctx context.Context, startUS, endUS int64) (*PCMChunk, error) {
	actualStart := startUS + d.startDelay
	if actualStart >= endUS {
		return nil, nil
	}
	durUS := endUS - actualStart
	frames := int(durUS) * d.rate / 1_000_000
	if frames <= 0 {
		frames = 1
	}
	buf := make([]float32, frames*d.channels)
	return &PCMChunk{StartUS: actualStart, Frames: buf}, nil
}

func (d *fakeDecoder) GetTrackAudio(ctx context.Context, trackIndex int, startUS, endUS int64, rate, channels int) (*PCMChunk, error) {
	return d.GetMixedAudio(ctx, startUS, endUS)
}

// fakeStretch is a pass-through stretch engine that tracks its current time
// and reports starved after each SetTarget/Reset until ClearStarved is called.
type fakeStretch struct {
	mu        sync.Mutex
	curUS     int64
	starved   bool
	pushed    int
	resets    int
	lastSpeed float64
	lastMode  QualityMode
}

func (s *fakeStretch) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets++
	s.starved = true
}

func (s *fakeStretch) SetTarget(targetUS int64, speed float64, quality QualityMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.curUS = targetUS
	s.lastSpeed = speed
	s.lastMode = quality
	s.starved = true
}

func (s *fakeStretch) PushPCM(pcm []float32, frames int, startUS int64, skip, max int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushed += frames
	return nil
}

func (s *fakeStretch) RenderAlloc(framesNeeded int) ([]float32, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if framesNeeded <= 0 {
		return nil, 0, nil
	}
	return make([]float32, framesNeeded*2), framesNeeded, nil
}

func (s *fakeStretch) CurrentTimeUS() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.curUS
}

func (s *fakeStretch) Starved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starved
}

func (s *fakeStretch) ClearStarved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starved = false
}

// fakeDevice is an in-memory device with a manually-advanceable playhead.
type fakeDevice struct {
	mu        sync.Mutex
	rate      int
	channels  int
	playhead  int64
	buffered  int
	started   bool
	flushed   int
	underrun  bool
	written   int
}

func (d *fakeDevice) Close() error { return nil }
func (d *fakeDevice) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.started = true
	return nil
}
func (d *fakeDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.started = false
	return nil
}
func (d *fakeDevice) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.flushed++
	d.buffered = 0
	return nil
}
func (d *fakeDevice) WriteF32(frames []float32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(frames) / d.channels
	d.buffered += n
	d.written += n
	return nil
}
func (d *fakeDevice) BufferedFrames() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buffered
}
func (d *fakeDevice) PlayheadUS() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.playhead
}
func (d *fakeDevice) SampleRate() int { return d.rate }
func (d *fakeDevice) Channels() int   { return d.channels }
func (d *fakeDevice) HadUnderrun() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.underrun
}
func (d *fakeDevice) ClearUnderrun() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.underrun = false
}

// fakeClock records every AfterFunc call but never invokes the callback
// itself — tests call Session.tick() directly to drive the pump
// deterministically instead of relying on a timer firing.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	fired int
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	c.fired++
	c.mu.Unlock()
	return &fakeTimer{fired: &c.fired}
}

type fakeTimer struct {
	fired *int
}

func (t *fakeTimer) Stop() bool { return true }

func testAudioConfig() config.AudioConfig {
	return config.AudioConfig{
		SampleRate:        48000,
		Channels:          2,
		TargetBufferMS:    40,
		OutputLatencyMS:   20,
		PCMCacheRangeSecs: 4,
	}
}

func newFakeSession(t interface {
	Helper()
}) (*Session, *fakeDecoder, *fakeStretch, *fakeDevice, *fakeClock) {
	t.Helper()
	dec := &fakeDecoder{rate: 48000, channels: 2}
	str := &fakeStretch{}
	dev := &fakeDevice{rate: 48000, channels: 2}
	clk := &fakeClock{now: time.Unix(0, 0)}

	cfg := testAudioConfig()
	s := &Session{
		cfg:     cfg,
		decoder: dec,
		stretch: str,
		device:  dev,
		clock:   clk,
		pcm:     pcmcache.New(cfg.PCMCacheRangeSecs),
		ready:   true,
	}
	return s, dec, str, dev, clk
}
