// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package errs implements the error taxonomy shared by the Timeline Store,
// Timeline Model, and Command Engine.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the base of the taxonomy. Every wrapped error
// returned by store/model/engine code is reachable via errors.Is against
// one of these.
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotFound            = errors.New("not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrReplayCorruption    = errors.New("replay corruption")
	ErrSessionNotReady     = errors.New("session not ready")
	ErrInternalInvariant   = errors.New("internal invariant violated")
	ErrIO                  = errors.New("io error")
	ErrSerialization       = errors.New("serialization error")
)

// VideoOverlapError is a specialization of ErrConstraintViolation: two video
// clips were placed overlapping on the same track, which the Timeline
// Store's video-track uniqueness invariant (spec §3 invariant 4) forbids.
type VideoOverlapError struct {
	TrackID      string
	ExistingClip string
	NewClip      string
}

func (e *VideoOverlapError) Error() string {
	return fmt.Sprintf("video overlap on track %s: clip %s overlaps existing clip %s", e.TrackID, e.NewClip, e.ExistingClip)
}

// Unwrap lets errors.Is(err, ErrConstraintViolation) succeed for a VideoOverlapError.
func (e *VideoOverlapError) Unwrap() error {
	return ErrConstraintViolation
}

// NotFound wraps ErrNotFound with the entity kind and id that was missing.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// InvalidArgument wraps ErrInvalidArgument with a formatted reason.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidArgument)...)
}

// ConstraintViolation wraps ErrConstraintViolation with a formatted reason.
func ConstraintViolation(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConstraintViolation)...)
}

// ReplayCorruption wraps ErrReplayCorruption with a formatted reason.
func ReplayCorruption(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrReplayCorruption)...)
}

// SessionNotReady wraps ErrSessionNotReady with a formatted reason.
func SessionNotReady(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrSessionNotReady)...)
}

// InternalInvariant wraps ErrInternalInvariant with a formatted reason. Used
// for assertion-style violations that should never happen given correct
// callers (e.g. a re-entrant pump tick, a negative playhead delta).
func InternalInvariant(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInternalInvariant)...)
}

// IO wraps ErrIO, preserving the underlying cause via %w chaining.
func IO(cause error) error {
	return fmt.Errorf("%w: %w", ErrIO, cause)
}

// Serialization wraps ErrSerialization, preserving the underlying cause.
func Serialization(cause error) error {
	return fmt.Errorf("%w: %w", ErrSerialization, cause)
}

// Kind classifies an error into one of the taxonomy's named buckets, for
// logging and metrics labeling. It returns "unknown" for errors outside the
// taxonomy (e.g. a raw driver error that was never wrapped).
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInternalInvariant):
		return "internal_invariant"
	case asVideoOverlap(err):
		return "video_overlap"
	case errors.Is(err, ErrConstraintViolation):
		return "constraint_violation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrReplayCorruption):
		return "replay_corruption"
	case errors.Is(err, ErrSessionNotReady):
		return "session_not_ready"
	case errors.Is(err, ErrSerialization):
		return "serialization"
	case errors.Is(err, ErrIO):
		return "io"
	default:
		return "unknown"
	}
}

func asVideoOverlap(err error) bool {
	var voe *VideoOverlapError
	return errors.As(err, &voe)
}
