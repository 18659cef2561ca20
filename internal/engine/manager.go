// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ManuGH/xg2g/internal/config"
	"github.com/ManuGH/xg2g/internal/log"
)

// ShutdownHook performs cleanup during graceful shutdown. Hooks run in
// reverse registration order (LIFO), mirroring the Command Engine's own
// undo-stack discipline.
type ShutdownHook func(ctx context.Context) error

// Manager owns the health/metrics HTTP surface's lifecycle: starting it,
// blocking until shutdown is requested, and shutting down cleanly.
type Manager interface {
	// Start starts the server and blocks until ctx is cancelled or the
	// server fails.
	Start(ctx context.Context) error

	// Shutdown gracefully stops the server and runs shutdown hooks.
	Shutdown(ctx context.Context) error

	// RegisterShutdownHook registers a cleanup function for Shutdown.
	RegisterShutdownHook(name string, hook ShutdownHook)
}

type namedHook struct {
	name string
	hook ShutdownHook
}

// manager implements Manager.
type manager struct {
	serverCfg config.ServerConfig
	deps      *Deps

	server *http.Server

	shutdownHooks []namedHook

	started bool
	mu      sync.Mutex

	logger zerolog.Logger
}

// NewManager validates deps and builds a Manager serving /healthz, /readyz,
// and /metrics on deps.Config.HealthAddr.
func NewManager(deps *Deps) (Manager, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}

	return &manager{
		serverCfg:     deps.Config.Server,
		deps:          deps,
		logger:        deps.Logger.With().Str("component", "manager").Logger(),
		shutdownHooks: make([]namedHook, 0),
	}, nil
}

// Start builds the health/metrics mux and serves it until ctx is cancelled.
func (m *manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true
	m.mu.Unlock()

	router := chi.NewRouter()
	router.Use(log.Middleware())
	router.Get("/healthz", m.deps.HealthManager.ServeHealth)
	router.Get("/readyz", m.deps.HealthManager.ServeReady)
	if m.deps.MetricsHandler != nil {
		router.Handle("/metrics", m.deps.MetricsHandler)
	}

	m.server = &http.Server{
		Addr:              m.deps.Config.HealthAddr,
		Handler:           router,
		ReadTimeout:       time.Duration(m.serverCfg.ReadTimeoutMS) * time.Millisecond,
		ReadHeaderTimeout: time.Duration(m.serverCfg.ReadTimeoutMS) * time.Millisecond / 2,
		WriteTimeout:      time.Duration(m.serverCfg.WriteTimeoutMS) * time.Millisecond,
		MaxHeaderBytes:    m.serverCfg.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		m.logger.Info().Str("addr", m.deps.Config.HealthAddr).Msg("health/metrics server listening")
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("health/metrics server: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		m.logger.Error().Err(err).Msg("server error, initiating shutdown")
		if shutdownErr := m.Shutdown(context.Background()); shutdownErr != nil {
			return fmt.Errorf("%w (shutdown: %v)", err, shutdownErr)
		}
		return err
	case <-ctx.Done():
		m.logger.Info().Msg("shutdown signal received")
		return m.Shutdown(context.Background())
	}
}

// Shutdown stops the HTTP server and runs registered shutdown hooks in LIFO
// order, within the configured shutdown timeout.
func (m *manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return ErrManagerNotStarted
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(m.serverCfg.ShutdownTimeoutMS)*time.Millisecond)
	defer cancel()

	var errs []error

	if m.server != nil {
		if err := m.server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("health/metrics server shutdown: %w", err))
		}
	}

	for i := len(m.shutdownHooks) - 1; i >= 0; i-- {
		hook := m.shutdownHooks[i]
		start := time.Now()
		if err := hook.hook(shutdownCtx); err != nil {
			m.logger.Error().Err(err).Str("hook", hook.name).Dur("duration", time.Since(start)).Msg("shutdown hook failed")
			errs = append(errs, fmt.Errorf("hook %s: %w", hook.name, err))
			continue
		}
		m.logger.Debug().Str("hook", hook.name).Dur("duration", time.Since(start)).Msg("shutdown hook completed")
	}

	if err := m.deps.Close(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("deps close: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	m.logger.Info().Msg("manager stopped cleanly")
	return nil
}

// RegisterShutdownHook registers a cleanup function run on Shutdown, in
// reverse registration order.
func (m *manager) RegisterShutdownHook(name string, hook ShutdownHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdownHooks = append(m.shutdownHooks, namedHook{name: name, hook: hook})
	m.logger.Debug().Str("hook", name).Msg("registered shutdown hook")
}
