// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rs/zerolog"
)

// App owns the engine process's long-lived background subsystems and
// delegates the HTTP surface to Manager, mirroring the source's own
// separation between its App (background subsystems) and Manager (server
// lifecycle). Today the only subsystem is the health/metrics server
// itself; App exists as the seam a future background subsystem (e.g. a
// periodic snapshot-retention sweep) attaches to without reshaping
// cmd/tlengine.
type App struct {
	logger  zerolog.Logger
	manager Manager
}

// NewApp constructs an App around an already-built Manager.
func NewApp(logger zerolog.Logger, manager Manager) *App {
	return &App{logger: logger, manager: manager}
}

// Run starts every owned subsystem and blocks until ctx is cancelled or a
// subsystem fails, returning the first error (if any).
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrManagerNotStarted
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.manager.Start(ctx)
	})

	return g.Wait()
}
