// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"database/sql"
)

// UpsertProperty creates or replaces a clip property. property_name is
// unique per clip, enforced by the schema.
func (t *Tx) UpsertProperty(ctx context.Context, p Property) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO properties (id, clip_id, property_name, property_value, property_type, default_value)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(clip_id, property_name) DO UPDATE SET
			property_value = excluded.property_value,
			property_type = excluded.property_type,
			default_value = excluded.default_value`,
		p.ID, p.ClipID, p.PropertyName, p.PropertyValue, p.PropertyType, p.DefaultValue)
	return mapWriteError(err, "", "")
}

// ListPropertiesByClip returns all properties on a clip.
func (t *Tx) ListPropertiesByClip(ctx context.Context, clipID string) ([]Property, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, clip_id, property_name, property_value, property_type, default_value
		FROM properties WHERE clip_id = ? ORDER BY property_name`, clipID)
	if err != nil {
		return nil, mapReadError(err, "property", "")
	}
	defer rows.Close()

	var out []Property
	for rows.Next() {
		var p Property
		var propType, defaultValue sql.NullString
		if err := rows.Scan(&p.ID, &p.ClipID, &p.PropertyName, &p.PropertyValue, &propType, &defaultValue); err != nil {
			return nil, mapReadError(err, "property", "")
		}
		p.PropertyType = propType.String
		p.DefaultValue = defaultValue.String
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeleteProperty removes a single named property from a clip.
func (t *Tx) DeleteProperty(ctx context.Context, clipID, propertyName string) error {
	res, err := t.tx.ExecContext(ctx,
		`DELETE FROM properties WHERE clip_id = ? AND property_name = ?`, clipID, propertyName)
	if err != nil {
		return mapWriteError(err, "", "")
	}
	return requireAffected(res, "property", clipID+"/"+propertyName)
}
