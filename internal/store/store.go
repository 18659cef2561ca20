// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package store implements the Timeline Store (spec §4.2): the persistent
// relational record of projects, sequences, tracks, clips, properties,
// clip-links, the command event log, and snapshots. It is the single
// source of truth; the Timeline Model is a cache over it.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ManuGH/xg2g/internal/errs"
	"github.com/ManuGH/xg2g/internal/log"
	"github.com/ManuGH/xg2g/internal/metrics"
	"github.com/ManuGH/xg2g/internal/store/sqlite"
)

// Store wraps a SQLite connection pool tuned per spec §6 (WAL journaling,
// synchronous=NORMAL, foreign_keys=ON). The Command Engine owns the single
// writer transaction at a time; MaxOpenConns is 1 by configuration.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the Timeline Store at path and applies the
// schema if not already present.
func Open(path string, cfg sqlite.Config) (*Store, error) {
	db, err := sqlite.Open(path, cfg)
	if err != nil {
		return nil, errs.IO(err)
	}
	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migration failed: %w", err)
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the connection is alive; used by the health checker.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	var current int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return err
	}
	if current >= schemaVersion {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaDDL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.WithComponent("store").Info().Int("schema_version", schemaVersion).Msg("timeline store migrated")
	return nil
}

// Tx is an open store transaction. Callers obtain one via Begin, perform
// entity operations against it (each entity CRUD method accepts a *Tx), and
// must Commit or Rollback explicitly.
type Tx struct {
	tx        *sql.Tx
	startedAt time.Time
	done      bool
}

// Begin starts a new transaction. Per spec §5, transactions are expected to
// be short: the Command Engine holds exactly one open at a time.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errs.IO(err)
	}
	return &Tx{tx: tx, startedAt: time.Now()}, nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		t.observeDone(metrics.ResultError)
		return errs.IO(err)
	}
	t.observeDone(metrics.ResultSuccess)
	return nil
}

// Rollback aborts the transaction. Safe to call after Commit (no-op error
// is swallowed, matching the defer-rollback idiom used throughout).
func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		t.observeDone(metrics.ResultError)
		return errs.IO(err)
	}
	// A Rollback following a prior Commit is the defer-rollback idiom's
	// no-op path, already observed by Commit.
	if !t.done {
		t.observeDone("rolled_back")
	}
	return nil
}

// observeDone records the transaction's total duration exactly once; a
// later Rollback after Commit (the defer-rollback idiom) must not double
// count.
func (t *Tx) observeDone(result string) {
	if t.done {
		return
	}
	t.done = true
	metrics.StoreTxDuration.WithLabelValues(result).Observe(time.Since(t.startedAt).Seconds())
}

// mapWriteError classifies a write-path SQLite error into the store's error
// taxonomy (spec §4.2, §7). modernc.org/sqlite surfaces constraint and
// RAISE(ABORT, ...) failures as plain error strings, so classification is by
// substring match — the same pragmatic approach the pack uses wherever a
// driver's error type is not relied upon directly.
func mapWriteError(err error, trackID, newClipID string) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "video_overlap"):
		return &errs.VideoOverlapError{TrackID: trackID, NewClip: newClipID}
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return errs.ConstraintViolation("unique constraint violated: %s", msg)
	case strings.Contains(msg, "CHECK constraint failed"):
		return errs.ConstraintViolation("check constraint violated: %s", msg)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return errs.ConstraintViolation("foreign key constraint violated: %s", msg)
	default:
		return errs.IO(err)
	}
}

// mapReadError turns sql.ErrNoRows into the store's NotFound kind; any other
// error passes through as IO.
func mapReadError(err error, kind, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errs.NotFound(kind, id)
	}
	return errs.IO(err)
}

// requireAffected returns a NotFound error of the given kind/id if res
// reports zero rows affected; used after UPDATE/DELETE by id to distinguish
// "no such row" from a successful no-op.
func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errs.IO(err)
	}
	if n == 0 {
		return errs.NotFound(kind, id)
	}
	return nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func intToBool(i int64) bool { return i != 0 }

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func unixMilliToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
