// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"database/sql"
)

// InsertMedia registers a new source asset. file_path is unique per the
// store's schema constraints.
func (t *Tx) InsertMedia(ctx context.Context, m Media) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO media (id, project_id, name, file_path, duration_frames,
			fps_numerator, fps_denominator, width, height, audio_channels, codec, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ProjectID, m.Name, m.FilePath, m.DurationFrames,
		m.FPSNumerator, m.FPSDenominator, m.Width, m.Height, m.AudioChannels, m.Codec, m.Metadata)
	return mapWriteError(err, "", "")
}

// GetMedia loads one media row by id.
func (t *Tx) GetMedia(ctx context.Context, id string) (Media, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT id, project_id, name, file_path, duration_frames,
			fps_numerator, fps_denominator, width, height, audio_channels, codec, metadata
		FROM media WHERE id = ?`, id)
	return scanMedia(row, id)
}

// ListMediaByProject returns all media for a project, insertion order.
func (t *Tx) ListMediaByProject(ctx context.Context, projectID string) ([]Media, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, project_id, name, file_path, duration_frames,
			fps_numerator, fps_denominator, width, height, audio_channels, codec, metadata
		FROM media WHERE project_id = ? ORDER BY rowid`, projectID)
	if err != nil {
		return nil, mapReadError(err, "media", "")
	}
	defer rows.Close()

	var out []Media
	for rows.Next() {
		m, err := scanMedia(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteMedia removes a media row; clips referencing it have media_id set
// NULL via ON DELETE SET NULL (they become offline, not deleted).
func (t *Tx) DeleteMedia(ctx context.Context, id string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id)
	if err != nil {
		return mapWriteError(err, "", "")
	}
	return requireAffected(res, "media", id)
}

func scanMedia(row rowScanner, id string) (Media, error) {
	var m Media
	var width, height, audioChannels sql.NullInt64
	var codec, metadata sql.NullString
	err := row.Scan(&m.ID, &m.ProjectID, &m.Name, &m.FilePath, &m.DurationFrames,
		&m.FPSNumerator, &m.FPSDenominator, &width, &height, &audioChannels, &codec, &metadata)
	if err != nil {
		return Media{}, mapReadError(err, "media", id)
	}
	if width.Valid {
		m.Width = &width.Int64
	}
	if height.Valid {
		m.Height = &height.Int64
	}
	if audioChannels.Valid {
		m.AudioChannels = &audioChannels.Int64
	}
	if codec.Valid {
		m.Codec = &codec.String
	}
	if metadata.Valid {
		m.Metadata = &metadata.String
	}
	return m, nil
}
