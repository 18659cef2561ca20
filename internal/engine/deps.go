// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package engine is the composition root for the timeline engine process:
// it wires the Timeline Store, Command Engine, optional snapshot cache, and
// the minimal health/metrics HTTP surface (SPEC_FULL.md §A.5) together, and
// owns the process's startup/shutdown lifecycle. The Audio Engine is
// deliberately not constructed here: its Decoder/Device/StretchEngine ports
// are supplied by whatever embeds this module (GUI, script-runner — both
// external collaborators per spec §1), so audio sessions are built per-call
// via audio.NewSession, not as a singleton owned by this process.
package engine

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/xg2g/internal/command"
	"github.com/ManuGH/xg2g/internal/command/commands"
	"github.com/ManuGH/xg2g/internal/config"
	"github.com/ManuGH/xg2g/internal/health"
	"github.com/ManuGH/xg2g/internal/store"
	"github.com/ManuGH/xg2g/internal/store/snapshotcache"
	"github.com/ManuGH/xg2g/internal/store/sqlite"
	"github.com/ManuGH/xg2g/internal/telemetry"
)

// Deps contains everything the composition root needs to run the engine
// process. Exported so cmd/tlengine can build it explicitly rather than
// this package reaching into os.Getenv itself.
type Deps struct {
	Logger zerolog.Logger

	Config config.AppConfig

	Store             *store.Store
	CommandEngine     *command.Engine
	SnapshotCache     *snapshotcache.Cache // never nil after Build; config.SnapshotCacheConfig.Enabled=false yields a no-op cache
	HealthManager     *health.Manager
	TelemetryProvider *telemetry.Provider // optional; nil when telemetry is disabled

	// MetricsHandler serves /metrics. Callers normally pass promhttp.Handler();
	// kept as a Deps field (not hardcoded) so tests can swap it out.
	MetricsHandler http.Handler
}

// Validate checks that the dependencies required to start the process are
// present.
func (d *Deps) Validate() error {
	if d.Logger.GetLevel() == zerolog.Disabled {
		return ErrMissingLogger
	}
	if d.Store == nil {
		return ErrMissingStore
	}
	if d.CommandEngine == nil {
		return ErrMissingCommandEngine
	}
	return nil
}

// Build assembles a Deps from a loaded, validated AppConfig: opens the
// Timeline Store, constructs the Command Engine (seeding its sequence
// number allocator from the store's existing event log), attaches the
// snapshot cache (a no-op cache when disabled, per snapshotcache.New), and
// initializes telemetry. Close releases everything Build opened.
func Build(ctx context.Context, cfg config.AppConfig, logger zerolog.Logger, metricsHandler http.Handler) (*Deps, error) {
	st, err := store.Open(cfg.Store.Path, sqlite.Config{
		BusyTimeout:  time.Duration(cfg.Store.BusyTimeoutMS) * time.Millisecond,
		MaxOpenConns: cfg.Store.MaxOpenConns,
	})
	if err != nil {
		return nil, err
	}

	maxSeq, err := maxSequenceNumber(ctx, st)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	registry := command.NewRegistry()
	commands.RegisterAll(registry)

	ce := command.NewEngine(st, registry, cfg.UndoStackMode, cfg.Store.SnapshotCadence, maxSeq)

	snapCache, err := snapshotcache.New(cfg.SnapshotCache, logger)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	ce.SetSnapshotCache(snapCache)

	var provider *telemetry.Provider
	if cfg.Telemetry.Enabled {
		provider, err = telemetry.NewProvider(ctx, telemetry.Config{
			Enabled:        cfg.Telemetry.Enabled,
			ServiceName:    cfg.Log.Service,
			ServiceVersion: Version,
			Environment:    environmentFromConfig(cfg),
			ExporterType:   cfg.Telemetry.Exporter,
			Endpoint:       cfg.Telemetry.Endpoint,
			SamplingRate:   cfg.Telemetry.SamplingRate,
		})
		if err != nil {
			_ = st.Close()
			return nil, err
		}
	}

	hm := health.NewManager(Version)
	hm.RegisterChecker(health.NewStoreChecker(st.Ping))

	return &Deps{
		Logger:            logger,
		Config:            cfg,
		Store:             st,
		CommandEngine:     ce,
		SnapshotCache:     snapCache,
		HealthManager:     hm,
		TelemetryProvider: provider,
		MetricsHandler:    metricsHandler,
	}, nil
}

// Close releases the resources Build acquired. Safe to call on a partially
// built Deps (e.g. after Build itself failed partway and the caller still
// holds a reference to what succeeded).
func (d *Deps) Close(ctx context.Context) error {
	var firstErr error
	if d.TelemetryProvider != nil {
		if err := d.TelemetryProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if d.Store != nil {
		if err := d.Store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func maxSequenceNumber(ctx context.Context, st *store.Store) (int64, error) {
	tx, err := st.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	n, err := tx.GetMaxSequenceNumber(ctx)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// environmentFromConfig derives a coarse deployment-environment label for
// the telemetry resource attributes from the log level: debug builds are
// treated as development, everything else as production. There is no
// dedicated environment field in config.AppConfig (spec's config surface
// never named one), so this is the least surprising signal already present.
func environmentFromConfig(cfg config.AppConfig) string {
	if cfg.Log.Level == "debug" || cfg.Log.Level == "trace" {
		return "development"
	}
	return "production"
}
