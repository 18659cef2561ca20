// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package command

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/ManuGH/xg2g/internal/store"
)

// canonicalClip is the deterministic, sorted-field subset of a Clip hashed
// for no-op detection: id, track, timeline position, duration, source
// window and enabled flag. Name, media, offline state, marks and playhead
// are not hashed, so a change to only those reads as unchanged. Field
// order here is fixed so json.Marshal output is stable across Go versions
// (struct field order, not map iteration order).
type canonicalClip struct {
	ID                 string `json:"id"`
	TrackID            string `json:"track_id"`
	TimelineStartFrame int64  `json:"start"`
	DurationFrames     int64  `json:"duration"`
	SourceInFrame      int64  `json:"source_in"`
	SourceOutFrame     int64  `json:"source_out"`
	Enabled            bool   `json:"enabled"`
}

// ProjectStateHash computes a deterministic SHA-256 digest of a sequence's
// clip state, for the optional pre_hash/post_hash no-op suppression (spec
// §4.4.3 step 5/9; §9 Open Question 2 resolves to a real cryptographic
// digest, not the source's length-proxy placeholder).
func ProjectStateHash(clips []store.Clip) (string, error) {
	canon := make([]canonicalClip, 0, len(clips))
	for _, c := range clips {
		canon = append(canon, canonicalClip{
			ID: c.ID, TrackID: c.TrackID, TimelineStartFrame: c.TimelineStartFrame,
			DurationFrames: c.DurationFrames, SourceInFrame: c.SourceInFrame,
			SourceOutFrame: c.SourceOutFrame, Enabled: c.Enabled,
		})
	}
	sort.Slice(canon, func(i, j int) bool { return canon[i].ID < canon[j].ID })

	buf, err := json.Marshal(canon)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:]), nil
}

// snapshotClip is the full-fidelity serialization of a Clip for snapshot
// storage. Unlike canonicalClip (the no-op-detection subset above), this
// must carry every column InsertClip requires to faithfully recreate the
// row on restore — including the NOT NULL project_id/clip_kind/
// owner_sequence_id/fps_numerator/fps_denominator columns canonicalClip
// omits because they never affect the no-op hash.
type snapshotClip struct {
	ID                 string  `json:"id"`
	ProjectID          string  `json:"project_id"`
	ClipKind           string  `json:"clip_kind"`
	SourceSequenceID   *string `json:"source_sequence_id,omitempty"`
	ParentClipID       *string `json:"parent_clip_id,omitempty"`
	OwnerSequenceID    string  `json:"owner_sequence_id"`
	TrackID            string  `json:"track_id"`
	MediaID            *string `json:"media_id,omitempty"`
	Name               string  `json:"name"`
	TimelineStartFrame int64   `json:"start"`
	DurationFrames     int64   `json:"duration"`
	SourceInFrame      int64   `json:"source_in"`
	SourceOutFrame     int64   `json:"source_out"`
	FPSNumerator       int64   `json:"fps_num"`
	FPSDenominator     int64   `json:"fps_den"`
	Enabled            bool    `json:"enabled"`
	Offline            bool    `json:"offline"`
	MarkInFrame        *int64  `json:"mark_in,omitempty"`
	MarkOutFrame       *int64  `json:"mark_out,omitempty"`
	PlayheadFrame      *int64  `json:"playhead,omitempty"`
}

// marshalSnapshotState serializes a sequence's clips to JSON for storage in
// a Snapshot row (spec §4.4.3 step 11 / §4.4.6 replay bound).
func marshalSnapshotState(clips []store.Clip) (string, error) {
	snap := make([]snapshotClip, 0, len(clips))
	for _, c := range clips {
		snap = append(snap, snapshotClip{
			ID: c.ID, ProjectID: c.ProjectID, ClipKind: string(c.ClipKind),
			SourceSequenceID: c.SourceSequenceID, ParentClipID: c.ParentClipID,
			OwnerSequenceID: c.OwnerSequenceID, TrackID: c.TrackID, MediaID: c.MediaID,
			Name: c.Name, TimelineStartFrame: c.TimelineStartFrame,
			DurationFrames: c.DurationFrames, SourceInFrame: c.SourceInFrame,
			SourceOutFrame: c.SourceOutFrame, FPSNumerator: c.FPSNumerator,
			FPSDenominator: c.FPSDenominator, Enabled: c.Enabled, Offline: c.Offline,
			MarkInFrame: c.MarkInFrame, MarkOutFrame: c.MarkOutFrame, PlayheadFrame: c.PlayheadFrame,
		})
	}
	sort.Slice(snap, func(i, j int) bool { return snap[i].ID < snap[j].ID })
	buf, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// unmarshalSnapshotState parses a Snapshot row's ClipState back into Clip
// rows ready for InsertClip, the inverse of marshalSnapshotState (spec
// §4.4.6: "load the nearest snapshot … restore its clips").
func unmarshalSnapshotState(state string) ([]store.Clip, error) {
	var snap []snapshotClip
	if err := json.Unmarshal([]byte(state), &snap); err != nil {
		return nil, err
	}
	clips := make([]store.Clip, 0, len(snap))
	for _, s := range snap {
		clips = append(clips, store.Clip{
			ID: s.ID, ProjectID: s.ProjectID, ClipKind: store.ClipKind(s.ClipKind),
			SourceSequenceID: s.SourceSequenceID, ParentClipID: s.ParentClipID,
			OwnerSequenceID: s.OwnerSequenceID, TrackID: s.TrackID, MediaID: s.MediaID,
			Name: s.Name, TimelineStartFrame: s.TimelineStartFrame,
			DurationFrames: s.DurationFrames, SourceInFrame: s.SourceInFrame,
			SourceOutFrame: s.SourceOutFrame, FPSNumerator: s.FPSNumerator,
			FPSDenominator: s.FPSDenominator, Enabled: s.Enabled, Offline: s.Offline,
			MarkInFrame: s.MarkInFrame, MarkOutFrame: s.MarkOutFrame, PlayheadFrame: s.PlayheadFrame,
		})
	}
	return clips, nil
}
