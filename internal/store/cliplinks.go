// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import "context"

// UpsertClipLink adds or updates a clip's membership in a link group
// (spec §3 ClipLink, §4.3 link expansion).
func (t *Tx) UpsertClipLink(ctx context.Context, l ClipLink) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO clip_links (link_group_id, clip_id, role, time_offset, enabled)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(link_group_id, clip_id) DO UPDATE SET
			role = excluded.role, time_offset = excluded.time_offset, enabled = excluded.enabled`,
		l.LinkGroupID, l.ClipID, string(l.Role), l.TimeOffset, boolToInt(l.Enabled))
	return mapWriteError(err, "", "")
}

// ListLinksByGroup returns every clip in a link group.
func (t *Tx) ListLinksByGroup(ctx context.Context, linkGroupID string) ([]ClipLink, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT link_group_id, clip_id, role, time_offset, enabled
		FROM clip_links WHERE link_group_id = ?`, linkGroupID)
	if err != nil {
		return nil, mapReadError(err, "clip_link", "")
	}
	defer rows.Close()
	return scanClipLinks(rows)
}

// ListLinksByClip returns the link-group memberships of a single clip
// (normally zero or one row, but the schema permits a clip to belong to
// multiple groups).
func (t *Tx) ListLinksByClip(ctx context.Context, clipID string) ([]ClipLink, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT link_group_id, clip_id, role, time_offset, enabled
		FROM clip_links WHERE clip_id = ?`, clipID)
	if err != nil {
		return nil, mapReadError(err, "clip_link", "")
	}
	defer rows.Close()
	return scanClipLinks(rows)
}

// DeleteClipLink removes a clip's membership from a link group.
func (t *Tx) DeleteClipLink(ctx context.Context, linkGroupID, clipID string) error {
	res, err := t.tx.ExecContext(ctx,
		`DELETE FROM clip_links WHERE link_group_id = ? AND clip_id = ?`, linkGroupID, clipID)
	if err != nil {
		return mapWriteError(err, "", "")
	}
	return requireAffected(res, "clip_link", linkGroupID+"/"+clipID)
}

func scanClipLinks(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]ClipLink, error) {
	var out []ClipLink
	for rows.Next() {
		var l ClipLink
		var role string
		var enabled int64
		if err := rows.Scan(&l.LinkGroupID, &l.ClipID, &role, &l.TimeOffset, &enabled); err != nil {
			return nil, mapReadError(err, "clip_link", "")
		}
		l.Role = LinkRole(role)
		l.Enabled = intToBool(enabled)
		out = append(out, l)
	}
	return out, rows.Err()
}
