// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package commands

import "github.com/ManuGH/xg2g/internal/command"

// RegisterAll adds every representative command library executor/undoer
// pair to r (spec §4.4.8).
func RegisterAll(r *command.Registry) {
	r.Register("CreateClip", command.ExecutorFunc(CreateClipExecutor), command.UndoerFunc(CreateClipUndoer))
	r.Register("InsertClipToTimeline", command.ExecutorFunc(CreateClipExecutor), command.UndoerFunc(CreateClipUndoer))
	r.Register("SplitClip", command.ExecutorFunc(SplitClipExecutor), command.UndoerFunc(SplitClipUndoer))
	r.Register("Insert", command.ExecutorFunc(InsertExecutor), command.UndoerFunc(InsertUndoer))
	r.Register("Overwrite", command.ExecutorFunc(OverwriteExecutor), command.UndoerFunc(OverwriteUndoer))
	r.Register("MoveClipToTrack", command.ExecutorFunc(MoveClipToTrackExecutor), command.UndoerFunc(MoveClipToTrackUndoer))
	r.Register("Nudge", command.ExecutorFunc(NudgeExecutor), command.UndoerFunc(NudgeUndoer))
	r.Register("RippleEdit", command.ExecutorFunc(RippleEditExecutor), command.UndoerFunc(RippleEditUndoer))
	r.Register("BatchRippleEdit", command.ExecutorFunc(BatchRippleEditExecutor), command.UndoerFunc(BatchRippleEditUndoer))
}
