// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package timecode implements the flexible time-input parser of spec §4.6:
// absolute segmented timecode, right-aligned digit runs, suffixed
// durations, and relative forms. It never panics on malformed user input —
// every entry point returns (rational.Time{}, error).
package timecode

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ManuGH/xg2g/internal/errs"
	"github.com/ManuGH/xg2g/internal/rational"
)

var (
	segmentSep     = regexp.MustCompile(`[:;.]`)
	suffixedRe     = regexp.MustCompile(`^([0-9]+)(f|s|m|h)$`)
	relativeRe     = regexp.MustCompile(`^([+-])(.+)$`)
	digitRunRe     = regexp.MustCompile(`^[0-9]{1,8}$`)
)

// roundFPS returns the frame rate rounded to the nearest integer, used only
// for segment-math (hours/minutes/seconds -> frames), per spec §4.6.
func roundFPS(num, den int64) int64 {
	return (num + den/2) / den
}

// Parse interprets s as a time entry at the given frame rate. base, if
// non-nil, supplies the reference time for relative forms (+N / -N); it may
// be nil only when s contains no relative form.
func Parse(s string, num, den int64, base *rational.Time) (rational.Time, error) {
	if num <= 0 || den <= 0 {
		return rational.Time{}, errs.InvalidArgument("frame rate must be positive, got %d/%d", num, den)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return rational.Time{}, errs.InvalidArgument("empty time entry")
	}

	if m := relativeRe.FindStringSubmatch(s); m != nil {
		return parseRelative(m[1], m[2], num, den, base)
	}
	if m := suffixedRe.FindStringSubmatch(s); m != nil {
		return parseSuffixed(m[1], m[2], num, den)
	}
	if digitRunRe.MatchString(s) {
		return parseSegmentedDigits(s, num, den)
	}
	if segmentSep.MatchString(s) {
		return parseSegmented(s, num, den)
	}
	return rational.Time{}, errs.InvalidArgument("unrecognized time entry %q", s)
}

// parseSegmented handles HH:MM:SS:FF (or any ':' ';' '.' separated run),
// right-aligned when fewer than 4 segments are present: "10:00" means
// SS:FF, "30" alone is handled by parseSegmentedDigits instead.
func parseSegmented(s string, num, den int64) (rational.Time, error) {
	parts := segmentSep.Split(s, -1)
	if len(parts) > 4 {
		return rational.Time{}, errs.InvalidArgument("too many timecode segments in %q", s)
	}
	return assembleSegments(parts, num, den)
}

// parseSegmentedDigits handles an unseparated right-aligned digit run, e.g.
// "1000000" meaning HH=01,MM=00,SS:00,FF=00 when read two digits at a time
// from the right, up to 8 digits (HHMMSSFF).
func parseSegmentedDigits(s string, num, den int64) (rational.Time, error) {
	if len(s) > 8 {
		return rational.Time{}, errs.InvalidArgument("digit run %q too long (max 8 digits)", s)
	}
	// Pad to an even length so we can chunk two digits at a time from the right.
	if len(s)%2 != 0 {
		s = "0" + s
	}
	var parts []string
	for i := len(s); i > 0; i -= 2 {
		start := i - 2
		if start < 0 {
			start = 0
		}
		parts = append([]string{s[start:i]}, parts...)
	}
	return assembleSegments(parts, num, den)
}

// assembleSegments right-aligns up to 4 segments as [HH, MM, SS, FF] and
// converts to an absolute frame count.
func assembleSegments(parts []string, num, den int64) (rational.Time, error) {
	if len(parts) == 0 || len(parts) > 4 {
		return rational.Time{}, errs.InvalidArgument("expected 1-4 timecode segments, got %d", len(parts))
	}
	values := make([]int64, 4)
	offset := 4 - len(parts)
	for i, p := range parts {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return rational.Time{}, errs.InvalidArgument("invalid timecode segment %q", p)
		}
		values[offset+i] = v
	}
	hh, mm, ss, ff := values[0], values[1], values[2], values[3]
	fps := roundFPS(num, den)
	frames := ((hh*60+mm)*60+ss)*fps + ff
	return rational.New(frames, num, den)
}

// parseSuffixed handles "123f", "4s", "3m", "1h".
func parseSuffixed(digits, suffix string, num, den int64) (rational.Time, error) {
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return rational.Time{}, errs.InvalidArgument("invalid suffixed duration %q%s", digits, suffix)
	}
	fps := roundFPS(num, den)
	var frames int64
	switch suffix {
	case "f":
		frames = v
	case "s":
		frames = v * fps
	case "m":
		frames = v * 60 * fps
	case "h":
		frames = v * 3600 * fps
	default:
		return rational.Time{}, errs.InvalidArgument("unknown duration suffix %q", suffix)
	}
	return rational.New(frames, num, den)
}

// parseRelative handles "+N" / "-N" (frames, when base is supplied) and
// "+1:00" (rescaled as a right-aligned segmented timecode delta).
func parseRelative(sign, rest string, num, den int64, base *rational.Time) (rational.Time, error) {
	var delta rational.Time
	var err error
	if digitRunRe.MatchString(rest) && !segmentSep.MatchString(rest) {
		v, convErr := strconv.ParseInt(rest, 10, 64)
		if convErr != nil {
			return rational.Time{}, errs.InvalidArgument("invalid relative time entry %q", sign+rest)
		}
		delta, err = rational.New(v, num, den)
	} else {
		delta, err = parseSegmented(rest, num, den)
	}
	if err != nil {
		return rational.Time{}, err
	}
	if sign == "-" {
		delta = delta.Neg()
	}
	if base == nil {
		return rational.Time{}, errs.InvalidArgument("relative time entry %q requires a base time", sign+rest)
	}
	return base.Add(delta)
}
