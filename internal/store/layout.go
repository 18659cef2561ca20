// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import "context"

// SetTrackLayout records the UI pixel height of a track within a sequence.
// Auxiliary only — never consulted by command/timeline logic.
func (t *Tx) SetTrackLayout(ctx context.Context, l SequenceTrackLayout) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO sequence_track_layouts (sequence_id, track_id, pixel_height)
		VALUES (?, ?, ?)
		ON CONFLICT(sequence_id, track_id) DO UPDATE SET pixel_height = excluded.pixel_height`,
		l.SequenceID, l.TrackID, l.PixelHeight)
	return mapWriteError(err, "", "")
}

// GetTrackLayout returns the sequence's track-height map.
func (t *Tx) GetTrackLayout(ctx context.Context, sequenceID string) ([]SequenceTrackLayout, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT sequence_id, track_id, pixel_height
		FROM sequence_track_layouts WHERE sequence_id = ?`, sequenceID)
	if err != nil {
		return nil, mapReadError(err, "sequence_track_layout", "")
	}
	defer rows.Close()

	var out []SequenceTrackLayout
	for rows.Next() {
		var l SequenceTrackLayout
		if err := rows.Scan(&l.SequenceID, &l.TrackID, &l.PixelHeight); err != nil {
			return nil, mapReadError(err, "sequence_track_layout", "")
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
