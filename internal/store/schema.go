// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

const schemaVersion = 1

// SchemaVersion is the schema version this build of the Timeline Store
// migrates to (PRAGMA user_version). Exported so operator tooling
// (cmd/tlmigrate) can report it without duplicating the constant.
const SchemaVersion = schemaVersion

// schemaDDL creates the Timeline Store schema from spec §3/§6: projects,
// media, sequences, tracks, clips, properties, clip_links, commands,
// snapshots, sequence_track_layouts. Check constraints enforce positive
// durations/rates and enumerations; triggers enforce the no-video-overlap
// invariant directly in integer timeline-frame space (clips on one track
// always share the sequence's rate, so no fps conversion is needed here).
const schemaDDL = `
CREATE TABLE IF NOT EXISTS projects (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL CHECK (name != ''),
	settings    TEXT,
	created_at  INTEGER NOT NULL,
	modified_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS media (
	id               TEXT PRIMARY KEY,
	project_id       TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	name             TEXT NOT NULL,
	file_path        TEXT NOT NULL UNIQUE,
	duration_frames  INTEGER NOT NULL CHECK (duration_frames > 0),
	fps_numerator    INTEGER NOT NULL CHECK (fps_numerator > 0),
	fps_denominator  INTEGER NOT NULL CHECK (fps_denominator > 0),
	width            INTEGER,
	height           INTEGER,
	audio_channels   INTEGER,
	codec            TEXT,
	metadata         TEXT
);
CREATE INDEX IF NOT EXISTS idx_media_project ON media(project_id);

CREATE TABLE IF NOT EXISTS sequences (
	id                       TEXT PRIMARY KEY,
	project_id               TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	name                     TEXT NOT NULL,
	kind                     TEXT NOT NULL CHECK (kind IN ('timeline','compound','multicam')),
	fps_numerator            INTEGER NOT NULL CHECK (fps_numerator > 0),
	fps_denominator          INTEGER NOT NULL CHECK (fps_denominator > 0),
	audio_rate               INTEGER NOT NULL CHECK (audio_rate > 0),
	width                    INTEGER NOT NULL,
	height                   INTEGER NOT NULL,
	view_start_frame         INTEGER NOT NULL DEFAULT 0,
	view_duration_frames     INTEGER NOT NULL DEFAULT 0,
	playhead_frame           INTEGER NOT NULL DEFAULT 0,
	mark_in_frame            INTEGER,
	mark_out_frame           INTEGER,
	selected_clips_json      TEXT,
	selected_edges_json      TEXT,
	selected_gaps_json       TEXT,
	current_sequence_number  INTEGER
);
CREATE INDEX IF NOT EXISTS idx_sequences_project ON sequences(project_id);

CREATE TABLE IF NOT EXISTS tracks (
	id          TEXT PRIMARY KEY,
	sequence_id TEXT NOT NULL REFERENCES sequences(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	track_type  TEXT NOT NULL CHECK (track_type IN ('VIDEO','AUDIO')),
	track_index INTEGER NOT NULL,
	enabled     INTEGER NOT NULL DEFAULT 1,
	locked      INTEGER NOT NULL DEFAULT 0,
	muted       INTEGER NOT NULL DEFAULT 0,
	soloed      INTEGER NOT NULL DEFAULT 0,
	volume      REAL,
	pan         REAL,
	UNIQUE (sequence_id, track_type, track_index)
);

CREATE TABLE IF NOT EXISTS clips (
	id                    TEXT PRIMARY KEY,
	project_id            TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	clip_kind             TEXT NOT NULL CHECK (clip_kind IN ('master','timeline')),
	source_sequence_id    TEXT REFERENCES sequences(id) ON DELETE SET NULL,
	parent_clip_id        TEXT REFERENCES clips(id) ON DELETE SET NULL,
	owner_sequence_id     TEXT NOT NULL REFERENCES sequences(id) ON DELETE CASCADE,
	track_id              TEXT NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
	media_id              TEXT REFERENCES media(id) ON DELETE SET NULL,
	name                  TEXT NOT NULL DEFAULT '',
	timeline_start_frame  INTEGER NOT NULL,
	duration_frames       INTEGER NOT NULL CHECK (duration_frames > 0),
	source_in_frame       INTEGER NOT NULL,
	source_out_frame      INTEGER NOT NULL,
	fps_numerator         INTEGER NOT NULL CHECK (fps_numerator > 0),
	fps_denominator       INTEGER NOT NULL CHECK (fps_denominator > 0),
	enabled               INTEGER NOT NULL DEFAULT 1,
	offline               INTEGER NOT NULL DEFAULT 0,
	mark_in_frame         INTEGER,
	mark_out_frame        INTEGER,
	playhead_frame        INTEGER,
	CHECK (source_out_frame >= source_in_frame + duration_frames)
);
CREATE INDEX IF NOT EXISTS idx_clips_track ON clips(track_id);
CREATE INDEX IF NOT EXISTS idx_clips_track_start ON clips(track_id, timeline_start_frame);

-- INV-3: video-track clips must not overlap. Direct integer comparison in
-- timeline-frame space; all clips sharing a track share the sequence's rate.
CREATE TRIGGER IF NOT EXISTS trg_clips_no_overlap_insert
BEFORE INSERT ON clips
FOR EACH ROW WHEN (SELECT track_type FROM tracks WHERE id = NEW.track_id) = 'VIDEO'
BEGIN
	SELECT RAISE(ABORT, 'video_overlap')
	WHERE EXISTS (
		SELECT 1 FROM clips
		WHERE track_id = NEW.track_id
		  AND id != NEW.id
		  AND NEW.timeline_start_frame < timeline_start_frame + duration_frames
		  AND NEW.timeline_start_frame + NEW.duration_frames > timeline_start_frame
	);
END;

CREATE TRIGGER IF NOT EXISTS trg_clips_no_overlap_update
BEFORE UPDATE OF timeline_start_frame, duration_frames, track_id ON clips
FOR EACH ROW WHEN (SELECT track_type FROM tracks WHERE id = NEW.track_id) = 'VIDEO'
BEGIN
	SELECT RAISE(ABORT, 'video_overlap')
	WHERE EXISTS (
		SELECT 1 FROM clips
		WHERE track_id = NEW.track_id
		  AND id != NEW.id
		  AND NEW.timeline_start_frame < timeline_start_frame + duration_frames
		  AND NEW.timeline_start_frame + NEW.duration_frames > timeline_start_frame
	);
END;

CREATE TABLE IF NOT EXISTS properties (
	id             TEXT PRIMARY KEY,
	clip_id        TEXT NOT NULL REFERENCES clips(id) ON DELETE CASCADE,
	property_name  TEXT NOT NULL,
	property_value TEXT NOT NULL,
	property_type  TEXT,
	default_value  TEXT,
	UNIQUE (clip_id, property_name)
);

CREATE TABLE IF NOT EXISTS clip_links (
	link_group_id TEXT NOT NULL,
	clip_id       TEXT NOT NULL REFERENCES clips(id) ON DELETE CASCADE,
	role          TEXT NOT NULL CHECK (role IN ('video','audio')),
	time_offset   INTEGER NOT NULL DEFAULT 0,
	enabled       INTEGER NOT NULL DEFAULT 1,
	PRIMARY KEY (link_group_id, clip_id)
);
CREATE INDEX IF NOT EXISTS idx_clip_links_clip ON clip_links(clip_id);

CREATE TABLE IF NOT EXISTS commands (
	id                       TEXT PRIMARY KEY,
	parent_id                TEXT REFERENCES commands(id),
	sequence_number          INTEGER NOT NULL UNIQUE,
	sequence_id              TEXT NOT NULL REFERENCES sequences(id) ON DELETE CASCADE,
	command_type             TEXT NOT NULL,
	command_args             TEXT NOT NULL,
	parent_sequence_number   INTEGER,
	undo_group_id            TEXT,
	pre_hash                 TEXT,
	post_hash                TEXT,
	ts                       INTEGER NOT NULL,
	selected_clips_json      TEXT,
	selected_edges_json      TEXT,
	selected_gaps_json       TEXT,
	selected_clips_pre_json  TEXT,
	selected_edges_pre_json  TEXT,
	selected_gaps_pre_json   TEXT,
	playhead_frame           INTEGER NOT NULL DEFAULT 0,
	playhead_pre_frame       INTEGER NOT NULL DEFAULT 0,
	playhead_num             INTEGER NOT NULL DEFAULT 1,
	playhead_den             INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_commands_sequence ON commands(sequence_id, sequence_number);
CREATE INDEX IF NOT EXISTS idx_commands_parent_seq ON commands(parent_sequence_number);

CREATE TABLE IF NOT EXISTS snapshots (
	sequence_id     TEXT NOT NULL REFERENCES sequences(id) ON DELETE CASCADE,
	sequence_number INTEGER NOT NULL,
	clip_state      TEXT NOT NULL,
	created_at      INTEGER NOT NULL,
	PRIMARY KEY (sequence_id, sequence_number)
);

CREATE TABLE IF NOT EXISTS sequence_track_layouts (
	sequence_id  TEXT NOT NULL REFERENCES sequences(id) ON DELETE CASCADE,
	track_id     TEXT NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
	pixel_height INTEGER NOT NULL,
	PRIMARY KEY (sequence_id, track_id)
);
`
