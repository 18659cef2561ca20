// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package engine

import "errors"

var (
	// ErrMissingLogger is returned when a Deps is constructed without a logger.
	ErrMissingLogger = errors.New("logger is required")

	// ErrMissingStore is returned when a Deps is constructed without a Timeline Store.
	ErrMissingStore = errors.New("timeline store is required")

	// ErrMissingCommandEngine is returned when a Deps is constructed without a Command Engine.
	ErrMissingCommandEngine = errors.New("command engine is required")

	// ErrManagerNotStarted is returned when Shutdown is called before Start.
	ErrManagerNotStarted = errors.New("manager not started")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("manager already started")
)
