// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"database/sql"
)

// InsertTrack creates a track. track_index must be unique per
// (sequence, track_type), enforced by the schema.
func (t *Tx) InsertTrack(ctx context.Context, tr Track) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO tracks (id, sequence_id, name, track_type, track_index,
			enabled, locked, muted, soloed, volume, pan)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tr.ID, tr.SequenceID, tr.Name, string(tr.TrackType), tr.TrackIndex,
		boolToInt(tr.Enabled), boolToInt(tr.Locked), boolToInt(tr.Muted), boolToInt(tr.Soloed),
		tr.Volume, tr.Pan)
	return mapWriteError(err, "", "")
}

// GetTrack loads a track by id.
func (t *Tx) GetTrack(ctx context.Context, id string) (Track, error) {
	row := t.tx.QueryRowContext(ctx, trackSelectSQL()+" WHERE id = ?", id)
	return scanTrack(row, id)
}

// ListTracksBySequence returns all tracks on a sequence ordered by
// (track_type, track_index).
func (t *Tx) ListTracksBySequence(ctx context.Context, sequenceID string) ([]Track, error) {
	rows, err := t.tx.QueryContext(ctx,
		trackSelectSQL()+" WHERE sequence_id = ? ORDER BY track_type, track_index", sequenceID)
	if err != nil {
		return nil, mapReadError(err, "track", "")
	}
	defer rows.Close()

	var out []Track
	for rows.Next() {
		tr, err := scanTrack(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}

// UpdateTrackFlags updates the enabled/locked/muted/soloed/volume/pan fields.
func (t *Tx) UpdateTrackFlags(ctx context.Context, tr Track) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE tracks SET enabled = ?, locked = ?, muted = ?, soloed = ?, volume = ?, pan = ?
		WHERE id = ?`,
		boolToInt(tr.Enabled), boolToInt(tr.Locked), boolToInt(tr.Muted), boolToInt(tr.Soloed),
		tr.Volume, tr.Pan, tr.ID)
	if err != nil {
		return mapWriteError(err, "", "")
	}
	return requireAffected(res, "track", tr.ID)
}

// DeleteTrack removes a track; cascades to its clips.
func (t *Tx) DeleteTrack(ctx context.Context, id string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, id)
	if err != nil {
		return mapWriteError(err, "", "")
	}
	return requireAffected(res, "track", id)
}

func trackSelectSQL() string {
	return `
		SELECT id, sequence_id, name, track_type, track_index, enabled, locked, muted, soloed, volume, pan
		FROM tracks`
}

func scanTrack(row rowScanner, id string) (Track, error) {
	var tr Track
	var trackType string
	var enabled, locked, muted, soloed int64
	var volume, pan sql.NullFloat64
	err := row.Scan(&tr.ID, &tr.SequenceID, &tr.Name, &trackType, &tr.TrackIndex,
		&enabled, &locked, &muted, &soloed, &volume, &pan)
	if err != nil {
		return Track{}, mapReadError(err, "track", id)
	}
	tr.TrackType = TrackType(trackType)
	tr.Enabled = intToBool(enabled)
	tr.Locked = intToBool(locked)
	tr.Muted = intToBool(muted)
	tr.Soloed = intToBool(soloed)
	if volume.Valid {
		tr.Volume = &volume.Float64
	}
	if pan.Valid {
		tr.Pan = &pan.Float64
	}
	return tr, nil
}
