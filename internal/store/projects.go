// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"time"

	"github.com/ManuGH/xg2g/internal/errs"
)

// InsertProject creates a new project row.
func (t *Tx) InsertProject(ctx context.Context, p Project) error {
	if p.Name == "" {
		return errs.InvalidArgument("project name must not be empty")
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO projects (id, name, settings, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Settings, p.CreatedAt.UnixMilli(), p.ModifiedAt.UnixMilli())
	return mapWriteError(err, "", "")
}

// GetProject loads a project by id.
func (t *Tx) GetProject(ctx context.Context, id string) (Project, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT id, name, settings, created_at, modified_at FROM projects WHERE id = ?`, id)
	return scanProject(row, id)
}

// UpdateProject persists changes to name/settings and bumps modified_at.
func (t *Tx) UpdateProject(ctx context.Context, p Project) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE projects SET name = ?, settings = ?, modified_at = ? WHERE id = ?`,
		p.Name, p.Settings, p.ModifiedAt.UnixMilli(), p.ID)
	if err != nil {
		return mapWriteError(err, "", "")
	}
	return requireAffected(res, "project", p.ID)
}

// DeleteProject removes a project; cascades to media/sequences/clips via FK.
func (t *Tx) DeleteProject(ctx context.Context, id string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return mapWriteError(err, "", "")
	}
	return requireAffected(res, "project", id)
}

// ListProjects returns all projects, most recently modified first.
func (t *Tx) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, name, settings, created_at, modified_at FROM projects ORDER BY modified_at DESC`)
	if err != nil {
		return nil, mapReadError(err, "project", "")
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		p, err := scanProject(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner, id string) (Project, error) {
	var p Project
	var createdMs, modifiedMs int64
	err := row.Scan(&p.ID, &p.Name, &p.Settings, &createdMs, &modifiedMs)
	if err != nil {
		return Project{}, mapReadError(err, "project", id)
	}
	p.CreatedAt = time.UnixMilli(createdMs)
	p.ModifiedAt = time.UnixMilli(modifiedMs)
	return p, nil
}
