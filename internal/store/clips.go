// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"database/sql"

	"github.com/ManuGH/xg2g/internal/errs"
)

// InsertClip creates a clip. The no-video-overlap trigger fires for VIDEO
// tracks and surfaces as a VideoOverlapError.
func (t *Tx) InsertClip(ctx context.Context, c Clip) error {
	if c.DurationFrames <= 0 {
		return errs.InvalidArgument("clip duration_frames must be > 0, got %d", c.DurationFrames)
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO clips (id, project_id, clip_kind, source_sequence_id, parent_clip_id,
			owner_sequence_id, track_id, media_id, name, timeline_start_frame, duration_frames,
			source_in_frame, source_out_frame, fps_numerator, fps_denominator, enabled, offline,
			mark_in_frame, mark_out_frame, playhead_frame)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.ProjectID, string(c.ClipKind), c.SourceSequenceID, c.ParentClipID,
		c.OwnerSequenceID, c.TrackID, c.MediaID, c.Name, c.TimelineStartFrame, c.DurationFrames,
		c.SourceInFrame, c.SourceOutFrame, c.FPSNumerator, c.FPSDenominator,
		boolToInt(c.Enabled), boolToInt(c.Offline), c.MarkInFrame, c.MarkOutFrame, c.PlayheadFrame)
	return mapWriteError(err, c.TrackID, c.ID)
}

// GetClip loads a clip by id.
func (t *Tx) GetClip(ctx context.Context, id string) (Clip, error) {
	row := t.tx.QueryRowContext(ctx, clipSelectSQL()+" WHERE id = ?", id)
	return scanClip(row, id)
}

// ListClipsByTrack returns a track's clips ordered by timeline_start_frame,
// the projection the Timeline Model sorts and caches per spec §4.3.
func (t *Tx) ListClipsByTrack(ctx context.Context, trackID string) ([]Clip, error) {
	rows, err := t.tx.QueryContext(ctx,
		clipSelectSQL()+" WHERE track_id = ? ORDER BY timeline_start_frame", trackID)
	if err != nil {
		return nil, mapReadError(err, "clip", "")
	}
	defer rows.Close()
	return scanClips(rows)
}

// ListClipsBySequence returns every clip owned by a sequence, across all
// tracks, for full-reload and snapshot/replay purposes.
func (t *Tx) ListClipsBySequence(ctx context.Context, sequenceID string) ([]Clip, error) {
	rows, err := t.tx.QueryContext(ctx,
		clipSelectSQL()+" WHERE owner_sequence_id = ? ORDER BY track_id, timeline_start_frame", sequenceID)
	if err != nil {
		return nil, mapReadError(err, "clip", "")
	}
	defer rows.Close()
	return scanClips(rows)
}

// UpdateClip persists a clip's full mutable payload (position, duration,
// source window, track, enablement). Used by executors for trims, moves,
// and undo restoration.
func (t *Tx) UpdateClip(ctx context.Context, c Clip) error {
	if c.DurationFrames <= 0 {
		return errs.InvalidArgument("clip duration_frames must be > 0, got %d", c.DurationFrames)
	}
	res, err := t.tx.ExecContext(ctx, `
		UPDATE clips SET track_id = ?, name = ?, timeline_start_frame = ?, duration_frames = ?,
			source_in_frame = ?, source_out_frame = ?, fps_numerator = ?, fps_denominator = ?,
			enabled = ?, offline = ?, mark_in_frame = ?, mark_out_frame = ?, playhead_frame = ?
		WHERE id = ?`,
		c.TrackID, c.Name, c.TimelineStartFrame, c.DurationFrames,
		c.SourceInFrame, c.SourceOutFrame, c.FPSNumerator, c.FPSDenominator,
		boolToInt(c.Enabled), boolToInt(c.Offline), c.MarkInFrame, c.MarkOutFrame, c.PlayheadFrame,
		c.ID)
	if err != nil {
		return mapWriteError(err, c.TrackID, c.ID)
	}
	return requireAffected(res, "clip", c.ID)
}

// DeleteClip removes a clip; cascades to its properties and clip_links.
func (t *Tx) DeleteClip(ctx context.Context, id string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM clips WHERE id = ?`, id)
	if err != nil {
		return mapWriteError(err, "", id)
	}
	return requireAffected(res, "clip", id)
}

// BulkShiftTrack shifts timeline_start_frame by delta for every clip on
// trackID whose start is >= anchor (spec §4.2's bulk track-shift, the
// downstream half of a ripple edit). Rows are updated in collision-safe
// order: descending start for a positive delta (so a moved clip never lands
// where an as-yet-unmoved clip still sits), ascending for a negative delta —
// the same ordering an undo must use in reverse to avoid transient overlap.
// Returns the ids shifted, in the order applied.
func (t *Tx) BulkShiftTrack(ctx context.Context, trackID string, anchor, delta int64) ([]string, error) {
	if delta == 0 {
		return nil, nil
	}
	order := "ASC"
	if delta > 0 {
		order = "DESC"
	}
	rows, err := t.tx.QueryContext(ctx,
		"SELECT id FROM clips WHERE track_id = ? AND timeline_start_frame >= ? ORDER BY timeline_start_frame "+order,
		trackID, anchor)
	if err != nil {
		return nil, mapReadError(err, "clip", "")
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, errs.IO(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, errs.IO(err)
	}
	rows.Close()

	for _, id := range ids {
		if _, err := t.tx.ExecContext(ctx,
			"UPDATE clips SET timeline_start_frame = timeline_start_frame + ? WHERE id = ?", delta, id); err != nil {
			return nil, mapWriteError(err, trackID, id)
		}
	}
	return ids, nil
}

func clipSelectSQL() string {
	return `
		SELECT id, project_id, clip_kind, source_sequence_id, parent_clip_id, owner_sequence_id,
			track_id, media_id, name, timeline_start_frame, duration_frames, source_in_frame,
			source_out_frame, fps_numerator, fps_denominator, enabled, offline,
			mark_in_frame, mark_out_frame, playhead_frame
		FROM clips`
}

func scanClips(rows *sql.Rows) ([]Clip, error) {
	var out []Clip
	for rows.Next() {
		c, err := scanClip(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanClip(row rowScanner, id string) (Clip, error) {
	var c Clip
	var clipKind string
	var sourceSeq, parentClip, mediaID, name sql.NullString
	var enabled, offline int64
	var markIn, markOut, playhead sql.NullInt64
	err := row.Scan(&c.ID, &c.ProjectID, &clipKind, &sourceSeq, &parentClip, &c.OwnerSequenceID,
		&c.TrackID, &mediaID, &name, &c.TimelineStartFrame, &c.DurationFrames, &c.SourceInFrame,
		&c.SourceOutFrame, &c.FPSNumerator, &c.FPSDenominator, &enabled, &offline,
		&markIn, &markOut, &playhead)
	if err != nil {
		return Clip{}, mapReadError(err, "clip", id)
	}
	c.ClipKind = ClipKind(clipKind)
	c.Name = name.String
	c.Enabled = intToBool(enabled)
	c.Offline = intToBool(offline)
	if sourceSeq.Valid {
		c.SourceSequenceID = &sourceSeq.String
	}
	if parentClip.Valid {
		c.ParentClipID = &parentClip.String
	}
	if mediaID.Valid {
		c.MediaID = &mediaID.String
	}
	if markIn.Valid {
		c.MarkInFrame = &markIn.Int64
	}
	if markOut.Valid {
		c.MarkOutFrame = &markOut.Int64
	}
	if playhead.Valid {
		c.PlayheadFrame = &playhead.Int64
	}
	return c, nil
}
