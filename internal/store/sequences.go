// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"database/sql"
)

// InsertSequence creates a new sequence within a project.
func (t *Tx) InsertSequence(ctx context.Context, s Sequence) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO sequences (id, project_id, name, kind, fps_numerator, fps_denominator,
			audio_rate, width, height, view_start_frame, view_duration_frames, playhead_frame,
			mark_in_frame, mark_out_frame, selected_clips_json, selected_edges_json,
			selected_gaps_json, current_sequence_number)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.ProjectID, s.Name, string(s.Kind), s.FPSNumerator, s.FPSDenominator,
		s.AudioRate, s.Width, s.Height, s.ViewStartFrame, s.ViewDurationFrames, s.PlayheadFrame,
		s.MarkInFrame, s.MarkOutFrame, s.SelectedClipsJSON, s.SelectedEdgesJSON,
		s.SelectedGapsJSON, s.CurrentSequenceNumber)
	return mapWriteError(err, "", "")
}

// GetSequence loads a sequence by id.
func (t *Tx) GetSequence(ctx context.Context, id string) (Sequence, error) {
	row := t.tx.QueryRowContext(ctx, sequenceSelectSQL()+" WHERE id = ?", id)
	return scanSequence(row, id)
}

// ListSequencesByProject returns every sequence in a project.
func (t *Tx) ListSequencesByProject(ctx context.Context, projectID string) ([]Sequence, error) {
	rows, err := t.tx.QueryContext(ctx, sequenceSelectSQL()+" WHERE project_id = ? ORDER BY rowid", projectID)
	if err != nil {
		return nil, mapReadError(err, "sequence", "")
	}
	defer rows.Close()

	var out []Sequence
	for rows.Next() {
		s, err := scanSequence(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateSequenceView persists viewport/playhead/mark state (frequent, cheap
// UI-driven updates that do not touch selection or undo head).
func (t *Tx) UpdateSequenceView(ctx context.Context, s Sequence) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE sequences SET view_start_frame = ?, view_duration_frames = ?,
			playhead_frame = ?, mark_in_frame = ?, mark_out_frame = ? WHERE id = ?`,
		s.ViewStartFrame, s.ViewDurationFrames, s.PlayheadFrame, s.MarkInFrame, s.MarkOutFrame, s.ID)
	if err != nil {
		return mapWriteError(err, "", "")
	}
	return requireAffected(res, "sequence", s.ID)
}

// UpdateSequenceSelection persists the current selection snapshot (clip ids,
// edge infos, gap infos as serialized arrays per spec §3).
func (t *Tx) UpdateSequenceSelection(ctx context.Context, sequenceID, clipsJSON, edgesJSON, gapsJSON string) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE sequences SET selected_clips_json = ?, selected_edges_json = ?,
			selected_gaps_json = ? WHERE id = ?`,
		clipsJSON, edgesJSON, gapsJSON, sequenceID)
	if err != nil {
		return mapWriteError(err, "", "")
	}
	return requireAffected(res, "sequence", sequenceID)
}

// SetSequenceHead persists the undo head (current_sequence_number) so it
// survives a restart, per spec §3 and §4.4.3 step 10.
func (t *Tx) SetSequenceHead(ctx context.Context, sequenceID string, sequenceNumber *int64) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE sequences SET current_sequence_number = ? WHERE id = ?`,
		sequenceNumber, sequenceID)
	if err != nil {
		return mapWriteError(err, "", "")
	}
	return requireAffected(res, "sequence", sequenceID)
}

// DeleteSequence removes a sequence; cascades to tracks/clips/commands/
// snapshots via FK.
func (t *Tx) DeleteSequence(ctx context.Context, id string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM sequences WHERE id = ?`, id)
	if err != nil {
		return mapWriteError(err, "", "")
	}
	return requireAffected(res, "sequence", id)
}

func sequenceSelectSQL() string {
	return `
		SELECT id, project_id, name, kind, fps_numerator, fps_denominator, audio_rate,
			width, height, view_start_frame, view_duration_frames, playhead_frame,
			mark_in_frame, mark_out_frame, selected_clips_json, selected_edges_json,
			selected_gaps_json, current_sequence_number
		FROM sequences`
}

func scanSequence(row rowScanner, id string) (Sequence, error) {
	var s Sequence
	var kind string
	var markIn, markOut, head sql.NullInt64
	var clipsJSON, edgesJSON, gapsJSON sql.NullString
	err := row.Scan(&s.ID, &s.ProjectID, &s.Name, &kind, &s.FPSNumerator, &s.FPSDenominator, &s.AudioRate,
		&s.Width, &s.Height, &s.ViewStartFrame, &s.ViewDurationFrames, &s.PlayheadFrame,
		&markIn, &markOut, &clipsJSON, &edgesJSON, &gapsJSON, &head)
	if err != nil {
		return Sequence{}, mapReadError(err, "sequence", id)
	}
	s.Kind = SequenceKind(kind)
	if markIn.Valid {
		s.MarkInFrame = &markIn.Int64
	}
	if markOut.Valid {
		s.MarkOutFrame = &markOut.Int64
	}
	if head.Valid {
		s.CurrentSequenceNumber = &head.Int64
	}
	s.SelectedClipsJSON = clipsJSON.String
	s.SelectedEdgesJSON = edgesJSON.String
	s.SelectedGapsJSON = gapsJSON.String
	return s, nil
}
