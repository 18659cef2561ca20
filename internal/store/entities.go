// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import "time"

// SequenceKind enumerates the kinds of sequence a project may contain.
type SequenceKind string

const (
	SequenceTimeline  SequenceKind = "timeline"
	SequenceCompound  SequenceKind = "compound"
	SequenceMulticam  SequenceKind = "multicam"
)

// TrackType enumerates the two track kinds. Only VIDEO tracks reject overlap.
type TrackType string

const (
	TrackVideo TrackType = "VIDEO"
	TrackAudio TrackType = "AUDIO"
)

// ClipKind distinguishes a master (bin/project) clip from a timeline placement.
type ClipKind string

const (
	ClipMaster   ClipKind = "master"
	ClipTimeline ClipKind = "timeline"
)

// LinkRole is the role a clip plays within a clip-link group.
type LinkRole string

const (
	LinkVideo LinkRole = "video"
	LinkAudio LinkRole = "audio"
)

// Project is the top-level container for media, sequences, and clips.
type Project struct {
	ID         string
	Name       string
	Settings   string // opaque JSON
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// Media describes a source asset at its native timebase.
type Media struct {
	ID             string
	ProjectID      string
	Name           string
	FilePath       string
	DurationFrames int64
	FPSNumerator   int64
	FPSDenominator int64
	Width          *int64
	Height         *int64
	AudioChannels  *int64
	Codec          *string
	Metadata       *string // opaque JSON
}

// Sequence is a playable timeline composed of tracks.
type Sequence struct {
	ID                    string
	ProjectID             string
	Name                  string
	Kind                  SequenceKind
	FPSNumerator          int64
	FPSDenominator        int64
	AudioRate             int64
	Width                 int64
	Height                int64
	ViewStartFrame        int64
	ViewDurationFrames    int64
	PlayheadFrame         int64
	MarkInFrame           *int64
	MarkOutFrame          *int64
	SelectedClipsJSON     string // serialized selection snapshots, §3
	SelectedEdgesJSON     string
	SelectedGapsJSON      string
	CurrentSequenceNumber *int64 // undo head, persisted across sessions
}

// Track is a lane on a sequence holding clips.
type Track struct {
	ID         string
	SequenceID string
	Name       string
	TrackType  TrackType
	TrackIndex int64 // 1-based, unique per (sequence, type)
	Enabled    bool
	Locked     bool
	Muted      bool
	Soloed     bool
	Volume     *float64 // audio-only
	Pan        *float64 // audio-only
}

// Clip is a placement of media (or a nested sequence) on a track.
type Clip struct {
	ID                 string
	ProjectID          string
	ClipKind           ClipKind
	SourceSequenceID    *string // nested sequence, for compound/multicam source
	ParentClipID       *string // master clip this timeline clip descends from
	OwnerSequenceID    string
	TrackID            string
	MediaID            *string
	Name               string
	TimelineStartFrame int64
	DurationFrames     int64
	SourceInFrame      int64
	SourceOutFrame     int64
	FPSNumerator       int64
	FPSDenominator     int64
	Enabled            bool
	Offline            bool
	MarkInFrame        *int64
	MarkOutFrame       *int64
	PlayheadFrame      *int64
}

// End returns the clip's exclusive end frame on the timeline.
func (c Clip) End() int64 { return c.TimelineStartFrame + c.DurationFrames }

// Property is a per-clip named, JSON-encoded value.
type Property struct {
	ID            string
	ClipID        string
	PropertyName  string
	PropertyValue string // JSON-encoded {value: ...}
	PropertyType  string
	DefaultValue  string
}

// ClipLink associates a clip with a link group: clips in the same group with
// Enabled=true move together under applicable operations.
type ClipLink struct {
	LinkGroupID string
	ClipID      string
	Role        LinkRole
	TimeOffset  int64
	Enabled     bool
}

// Command is one event-log entry: an executed (or undone/redone) command,
// forming a node in the branching undo forest keyed by SequenceNumber.
type Command struct {
	ID                   string
	ParentID             *string
	SequenceNumber       int64
	SequenceID           string // owning sequence, for per-sequence undo stacks
	CommandType          string
	CommandArgs          string // JSON
	ParentSequenceNumber *int64
	UndoGroupID          *string
	PreHash              *string
	PostHash             *string
	Timestamp            time.Time

	SelectedClipsJSON    string
	SelectedEdgesJSON    string
	SelectedGapsJSON     string
	SelectedClipsPreJSON string
	SelectedEdgesPreJSON string
	SelectedGapsPreJSON  string

	PlayheadFrame    int64
	PlayheadPreFrame int64
	PlayheadNum      int64
	PlayheadDen      int64
}

// Snapshot is a cached materialization of a sequence's clip state at a given
// sequence number, used to bound replay work.
type Snapshot struct {
	SequenceID     string
	SequenceNumber int64
	ClipState      string // JSON-encoded clip array
	CreatedAt      time.Time
}

// SequenceTrackLayout records the UI pixel height of a track within a
// sequence; purely auxiliary, never consulted by engine logic.
type SequenceTrackLayout struct {
	SequenceID  string
	TrackID     string
	PixelHeight int64
}
