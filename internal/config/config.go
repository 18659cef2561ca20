// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads and validates the timeline engine's configuration.
package config

import (
	"fmt"
	"strings"
)

// UndoStackMode selects whether undo/redo history is tracked per-process
// (one forest shared by every open sequence) or per-sequence (§4.4.7).
type UndoStackMode string

const (
	UndoStackGlobal      UndoStackMode = "global"
	UndoStackPerSequence UndoStackMode = "per_sequence"
)

// StoreConfig configures the SQLite-backed Timeline Store.
type StoreConfig struct {
	Path            string `yaml:"path" env:"TLE_STORE_PATH"`
	BusyTimeoutMS   int    `yaml:"busy_timeout_ms" env:"TLE_STORE_BUSY_TIMEOUT_MS"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"TLE_STORE_MAX_OPEN_CONNS"`
	SnapshotCadence int    `yaml:"snapshot_cadence" env:"TLE_SNAPSHOT_CADENCE"`
}

// AudioConfig configures default audio session parameters.
type AudioConfig struct {
	SampleRate        int `yaml:"sample_rate" env:"TLE_AUDIO_SAMPLE_RATE"`
	Channels          int `yaml:"channels" env:"TLE_AUDIO_CHANNELS"`
	TargetBufferMS    int `yaml:"target_buffer_ms" env:"TLE_AUDIO_TARGET_BUFFER_MS"`
	OutputLatencyMS   int `yaml:"output_latency_ms" env:"TLE_AUDIO_OUTPUT_LATENCY_MS"`
	PCMCacheRangeSecs int `yaml:"pcm_cache_range_secs" env:"TLE_AUDIO_PCM_CACHE_RANGE_SECS"`
}

// SnapshotCacheConfig configures the optional Redis-backed snapshot cache.
type SnapshotCacheConfig struct {
	Enabled bool   `yaml:"enabled" env:"TLE_SNAPSHOT_CACHE_ENABLED"`
	Addr    string `yaml:"addr" env:"TLE_SNAPSHOT_CACHE_ADDR"`
	DB      int    `yaml:"db" env:"TLE_SNAPSHOT_CACHE_DB"`
}

// TelemetryConfig configures OTLP tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled" env:"TLE_TELEMETRY_ENABLED"`
	Exporter     string  `yaml:"exporter" env:"TLE_TELEMETRY_EXPORTER"` // "grpc" | "http" | "none"
	Endpoint     string  `yaml:"endpoint" env:"TLE_TELEMETRY_ENDPOINT"`
	SamplingRate float64 `yaml:"sampling_rate" env:"TLE_TELEMETRY_SAMPLING_RATE"`
}

// MetricsConfig configures the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled" env:"TLE_METRICS_ENABLED"`
	ListenAddr string `yaml:"listen_addr" env:"TLE_METRICS_LISTEN_ADDR"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level   string `yaml:"level" env:"TLE_LOG_LEVEL"`
	Service string `yaml:"service" env:"TLE_LOG_SERVICE"`
}

// ServerConfig configures the engine process's health/metrics HTTP surface
// (SPEC_FULL.md §A.5). There is no separate API server in this module — the
// Command Engine and Audio Engine are consumed as Go packages by an
// embedding application, not over HTTP — so this only ever fronts
// /healthz, /readyz, and /metrics.
type ServerConfig struct {
	ReadTimeoutMS     int `yaml:"read_timeout_ms" env:"TLE_SERVER_READ_TIMEOUT_MS"`
	WriteTimeoutMS    int `yaml:"write_timeout_ms" env:"TLE_SERVER_WRITE_TIMEOUT_MS"`
	ShutdownTimeoutMS int `yaml:"shutdown_timeout_ms" env:"TLE_SERVER_SHUTDOWN_TIMEOUT_MS"`
	MaxHeaderBytes    int `yaml:"max_header_bytes" env:"TLE_SERVER_MAX_HEADER_BYTES"`
}

// AppConfig is the root configuration for the timeline engine.
type AppConfig struct {
	DataDir       string              `yaml:"data_dir" env:"TLE_DATA_DIR"`
	UndoStackMode UndoStackMode       `yaml:"undo_stack_mode" env:"TLE_UNDO_STACK_MODE"`
	Store         StoreConfig         `yaml:"store"`
	Audio         AudioConfig         `yaml:"audio"`
	SnapshotCache SnapshotCacheConfig `yaml:"snapshot_cache"`
	Telemetry     TelemetryConfig     `yaml:"telemetry"`
	Metrics       MetricsConfig       `yaml:"metrics"`
	Log           LogConfig           `yaml:"log"`
	Server        ServerConfig        `yaml:"server"`
	HealthAddr    string              `yaml:"health_addr" env:"TLE_HEALTH_ADDR"`
}

// Default returns an AppConfig populated with production-sane defaults.
func Default() AppConfig {
	return AppConfig{
		DataDir:       "./data",
		UndoStackMode: UndoStackPerSequence,
		Store: StoreConfig{
			Path:            "./data/timeline.db",
			BusyTimeoutMS:   5000,
			MaxOpenConns:    1,
			SnapshotCadence: 50,
		},
		Audio: AudioConfig{
			SampleRate:        48000,
			Channels:          2,
			TargetBufferMS:    40,
			OutputLatencyMS:   20,
			PCMCacheRangeSecs: 4,
		},
		SnapshotCache: SnapshotCacheConfig{
			Enabled: false,
			Addr:    "127.0.0.1:6379",
			DB:      0,
		},
		Telemetry: TelemetryConfig{
			Enabled:      false,
			Exporter:     "grpc",
			SamplingRate: 0.1,
		},
		Metrics: MetricsConfig{
			Enabled:    true,
			ListenAddr: ":9090",
		},
		Log: LogConfig{
			Level:   "info",
			Service: "tlengine",
		},
		Server: ServerConfig{
			ReadTimeoutMS:     5000,
			WriteTimeoutMS:    10000,
			ShutdownTimeoutMS: 15000,
			MaxHeaderBytes:    1 << 20,
		},
		HealthAddr: ":8081",
	}
}

// Validate checks the configuration for internally-consistent, startable values.
func (c AppConfig) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("store.path must not be empty")
	}
	if c.Store.SnapshotCadence < 1 {
		return fmt.Errorf("store.snapshot_cadence must be >= 1, got %d", c.Store.SnapshotCadence)
	}
	if c.Store.MaxOpenConns < 1 {
		return fmt.Errorf("store.max_open_conns must be >= 1, got %d", c.Store.MaxOpenConns)
	}
	if c.UndoStackMode != UndoStackGlobal && c.UndoStackMode != UndoStackPerSequence {
		return fmt.Errorf("undo_stack_mode must be %q or %q, got %q", UndoStackGlobal, UndoStackPerSequence, c.UndoStackMode)
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be > 0, got %d", c.Audio.SampleRate)
	}
	if c.Audio.Channels < 1 || c.Audio.Channels > 8 {
		return fmt.Errorf("audio.channels must be between 1 and 8, got %d", c.Audio.Channels)
	}
	if c.SnapshotCache.Enabled && strings.TrimSpace(c.SnapshotCache.Addr) == "" {
		return fmt.Errorf("snapshot_cache.addr must be set when snapshot_cache.enabled is true")
	}
	if c.Telemetry.Enabled {
		if c.Telemetry.Exporter != "grpc" && c.Telemetry.Exporter != "http" {
			return fmt.Errorf("telemetry.exporter must be %q or %q, got %q", "grpc", "http", c.Telemetry.Exporter)
		}
		if c.Telemetry.SamplingRate < 0 || c.Telemetry.SamplingRate > 1 {
			return fmt.Errorf("telemetry.sampling_rate must be within [0,1], got %f", c.Telemetry.SamplingRate)
		}
	}
	if c.Server.ReadTimeoutMS < 1 {
		return fmt.Errorf("server.read_timeout_ms must be >= 1, got %d", c.Server.ReadTimeoutMS)
	}
	if c.Server.WriteTimeoutMS < 1 {
		return fmt.Errorf("server.write_timeout_ms must be >= 1, got %d", c.Server.WriteTimeoutMS)
	}
	if c.Server.ShutdownTimeoutMS < 1 {
		return fmt.Errorf("server.shutdown_timeout_ms must be >= 1, got %d", c.Server.ShutdownTimeoutMS)
	}
	return nil
}
