// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"database/sql"
)

// AppendCommand writes one event-log row (spec §4.4.3 step 10). The engine
// is responsible for allocating SequenceNumber and ParentSequenceNumber
// before calling this; the store only persists and enforces uniqueness.
func (t *Tx) AppendCommand(ctx context.Context, c Command) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO commands (id, parent_id, sequence_number, sequence_id, command_type,
			command_args, parent_sequence_number, undo_group_id, pre_hash, post_hash, ts,
			selected_clips_json, selected_edges_json, selected_gaps_json,
			selected_clips_pre_json, selected_edges_pre_json, selected_gaps_pre_json,
			playhead_frame, playhead_pre_frame, playhead_num, playhead_den)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.ParentID, c.SequenceNumber, c.SequenceID, c.CommandType,
		c.CommandArgs, c.ParentSequenceNumber, c.UndoGroupID, c.PreHash, c.PostHash, c.Timestamp.UnixMilli(),
		c.SelectedClipsJSON, c.SelectedEdgesJSON, c.SelectedGapsJSON,
		c.SelectedClipsPreJSON, c.SelectedEdgesPreJSON, c.SelectedGapsPreJSON,
		c.PlayheadFrame, c.PlayheadPreFrame, c.PlayheadNum, c.PlayheadDen)
	return mapWriteError(err, "", "")
}

// GetCommandBySequenceNumber loads a single event-log row.
func (t *Tx) GetCommandBySequenceNumber(ctx context.Context, seqNum int64) (Command, error) {
	row := t.tx.QueryRowContext(ctx, commandSelectSQL()+" WHERE sequence_number = ?", seqNum)
	return scanCommand(row, seqNum)
}

// GetMaxSequenceNumber returns the highest sequence_number ever committed
// (0 if the log is empty), used by the engine to initialize its allocator
// on startup.
func (t *Tx) GetMaxSequenceNumber(ctx context.Context) (int64, error) {
	var max sql.NullInt64
	err := t.tx.QueryRowContext(ctx, `SELECT MAX(sequence_number) FROM commands`).Scan(&max)
	if err != nil {
		return 0, mapReadError(err, "command", "")
	}
	return max.Int64, nil
}

// ListChildren returns commands whose parent_sequence_number is parentSeqNum,
// i.e. the branch points at that head — used by redo (§4.4.4: pick the
// greatest sequence_number among children) and by the branching-history
// forest view.
func (t *Tx) ListChildren(ctx context.Context, sequenceID string, parentSeqNum *int64) ([]Command, error) {
	var rows *sql.Rows
	var err error
	if parentSeqNum == nil {
		rows, err = t.tx.QueryContext(ctx,
			commandSelectSQL()+" WHERE sequence_id = ? AND parent_sequence_number IS NULL ORDER BY sequence_number",
			sequenceID)
	} else {
		rows, err = t.tx.QueryContext(ctx,
			commandSelectSQL()+" WHERE sequence_id = ? AND parent_sequence_number = ? ORDER BY sequence_number",
			sequenceID, *parentSeqNum)
	}
	if err != nil {
		return nil, mapReadError(err, "command", "")
	}
	defer rows.Close()
	return scanCommands(rows)
}

// WalkToRoot follows parent_sequence_number from seqNum back to the root,
// returning commands ordered root-first (i.e. reversed from the walk
// direction) — the order event replay re-executes in (spec §4.4.6).
func (t *Tx) WalkToRoot(ctx context.Context, seqNum int64) ([]Command, error) {
	var chain []Command
	cur := &seqNum
	for cur != nil {
		c, err := t.GetCommandBySequenceNumber(ctx, *cur)
		if err != nil {
			return nil, err
		}
		chain = append(chain, c)
		cur = c.ParentSequenceNumber
	}
	// chain is head-first; reverse to root-first.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

func commandSelectSQL() string {
	return `
		SELECT id, parent_id, sequence_number, sequence_id, command_type, command_args,
			parent_sequence_number, undo_group_id, pre_hash, post_hash, ts,
			selected_clips_json, selected_edges_json, selected_gaps_json,
			selected_clips_pre_json, selected_edges_pre_json, selected_gaps_pre_json,
			playhead_frame, playhead_pre_frame, playhead_num, playhead_den
		FROM commands`
}

func scanCommands(rows *sql.Rows) ([]Command, error) {
	var out []Command
	for rows.Next() {
		c, err := scanCommand(rows, 0)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCommand(row rowScanner, seqNum int64) (Command, error) {
	var c Command
	var parentID, undoGroupID, preHash, postHash sql.NullString
	var parentSeq sql.NullInt64
	var ts int64
	err := row.Scan(&c.ID, &parentID, &c.SequenceNumber, &c.SequenceID, &c.CommandType, &c.CommandArgs,
		&parentSeq, &undoGroupID, &preHash, &postHash, &ts,
		&c.SelectedClipsJSON, &c.SelectedEdgesJSON, &c.SelectedGapsJSON,
		&c.SelectedClipsPreJSON, &c.SelectedEdgesPreJSON, &c.SelectedGapsPreJSON,
		&c.PlayheadFrame, &c.PlayheadPreFrame, &c.PlayheadNum, &c.PlayheadDen)
	if err != nil {
		return Command{}, mapReadError(err, "command", "")
	}
	if parentID.Valid {
		c.ParentID = &parentID.String
	}
	if parentSeq.Valid {
		c.ParentSequenceNumber = &parentSeq.Int64
	}
	if undoGroupID.Valid {
		c.UndoGroupID = &undoGroupID.String
	}
	if preHash.Valid {
		c.PreHash = &preHash.String
	}
	if postHash.Valid {
		c.PostHash = &postHash.String
	}
	c.Timestamp = unixMilliToTime(ts)
	_ = seqNum
	return c, nil
}
