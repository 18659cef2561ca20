// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import "context"

// WriteSnapshot persists a materialization of a sequence's clip state at a
// given sequence number (spec §4.4.3 step 11; cadence is the engine's call).
func (t *Tx) WriteSnapshot(ctx context.Context, s Snapshot) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO snapshots (sequence_id, sequence_number, clip_state, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(sequence_id, sequence_number) DO UPDATE SET
			clip_state = excluded.clip_state, created_at = excluded.created_at`,
		s.SequenceID, s.SequenceNumber, s.ClipState, s.CreatedAt.UnixMilli())
	return mapWriteError(err, "", "")
}

// LatestSnapshotAtOrBefore returns the most recent snapshot for a sequence
// at or before target, or (Snapshot{}, false, nil) if none exists — the
// replay entry point of spec §4.4.6.
func (t *Tx) LatestSnapshotAtOrBefore(ctx context.Context, sequenceID string, target int64) (Snapshot, bool, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT sequence_id, sequence_number, clip_state, created_at
		FROM snapshots WHERE sequence_id = ? AND sequence_number <= ?
		ORDER BY sequence_number DESC LIMIT 1`, sequenceID, target)

	var s Snapshot
	var createdMs int64
	err := row.Scan(&s.SequenceID, &s.SequenceNumber, &s.ClipState, &createdMs)
	if err != nil {
		if isNoRows(err) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, mapReadError(err, "snapshot", sequenceID)
	}
	s.CreatedAt = unixMilliToTime(createdMs)
	return s, true, nil
}

// PruneSnapshotsBefore deletes snapshots older than keepAfter for a
// sequence, bounding storage growth.
func (t *Tx) PruneSnapshotsBefore(ctx context.Context, sequenceID string, keepAfter int64) error {
	_, err := t.tx.ExecContext(ctx,
		`DELETE FROM snapshots WHERE sequence_id = ? AND sequence_number < ?`, sequenceID, keepAfter)
	return mapWriteError(err, "", "")
}
