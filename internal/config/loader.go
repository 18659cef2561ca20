// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader loads an AppConfig from an optional YAML file, then applies
// environment-variable overrides on top (ENV > file > defaults).
type Loader struct {
	configPath string
}

// NewLoader creates a configuration loader for the given YAML file path.
// An empty path skips file loading entirely.
func NewLoader(configPath string) *Loader {
	return &Loader{configPath: configPath}
}

// Load returns the resolved AppConfig.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Default()

	if l.configPath != "" {
		data, err := os.ReadFile(l.configPath) // #nosec G304 -- operator-supplied config path
		if err != nil {
			if !os.IsNotExist(err) {
				return AppConfig{}, fmt.Errorf("read config file %s: %w", l.configPath, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("parse config file %s: %w", l.configPath, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *AppConfig) {
	cfg.DataDir = ParseString("TLE_DATA_DIR", cfg.DataDir)
	cfg.UndoStackMode = UndoStackMode(ParseString("TLE_UNDO_STACK_MODE", string(cfg.UndoStackMode)))
	cfg.HealthAddr = ParseString("TLE_HEALTH_ADDR", cfg.HealthAddr)

	cfg.Store.Path = ParseString("TLE_STORE_PATH", cfg.Store.Path)
	cfg.Store.BusyTimeoutMS = ParseInt("TLE_STORE_BUSY_TIMEOUT_MS", cfg.Store.BusyTimeoutMS)
	cfg.Store.MaxOpenConns = ParseInt("TLE_STORE_MAX_OPEN_CONNS", cfg.Store.MaxOpenConns)
	cfg.Store.SnapshotCadence = ParseInt("TLE_SNAPSHOT_CADENCE", cfg.Store.SnapshotCadence)

	cfg.Audio.SampleRate = ParseInt("TLE_AUDIO_SAMPLE_RATE", cfg.Audio.SampleRate)
	cfg.Audio.Channels = ParseInt("TLE_AUDIO_CHANNELS", cfg.Audio.Channels)
	cfg.Audio.TargetBufferMS = ParseInt("TLE_AUDIO_TARGET_BUFFER_MS", cfg.Audio.TargetBufferMS)
	cfg.Audio.OutputLatencyMS = ParseInt("TLE_AUDIO_OUTPUT_LATENCY_MS", cfg.Audio.OutputLatencyMS)
	cfg.Audio.PCMCacheRangeSecs = ParseInt("TLE_AUDIO_PCM_CACHE_RANGE_SECS", cfg.Audio.PCMCacheRangeSecs)

	cfg.SnapshotCache.Enabled = ParseBool("TLE_SNAPSHOT_CACHE_ENABLED", cfg.SnapshotCache.Enabled)
	cfg.SnapshotCache.Addr = ParseString("TLE_SNAPSHOT_CACHE_ADDR", cfg.SnapshotCache.Addr)
	cfg.SnapshotCache.DB = ParseInt("TLE_SNAPSHOT_CACHE_DB", cfg.SnapshotCache.DB)

	cfg.Telemetry.Enabled = ParseBool("TLE_TELEMETRY_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = ParseString("TLE_TELEMETRY_EXPORTER", cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = ParseString("TLE_TELEMETRY_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = ParseFloat("TLE_TELEMETRY_SAMPLING_RATE", cfg.Telemetry.SamplingRate)

	cfg.Metrics.Enabled = ParseBool("TLE_METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.ListenAddr = ParseString("TLE_METRICS_LISTEN_ADDR", cfg.Metrics.ListenAddr)

	cfg.Log.Level = ParseString("TLE_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Service = ParseString("TLE_LOG_SERVICE", cfg.Log.Service)

	cfg.Server.ReadTimeoutMS = ParseInt("TLE_SERVER_READ_TIMEOUT_MS", cfg.Server.ReadTimeoutMS)
	cfg.Server.WriteTimeoutMS = ParseInt("TLE_SERVER_WRITE_TIMEOUT_MS", cfg.Server.WriteTimeoutMS)
	cfg.Server.ShutdownTimeoutMS = ParseInt("TLE_SERVER_SHUTDOWN_TIMEOUT_MS", cfg.Server.ShutdownTimeoutMS)
	cfg.Server.MaxHeaderBytes = ParseInt("TLE_SERVER_MAX_HEADER_BYTES", cfg.Server.MaxHeaderBytes)
}
