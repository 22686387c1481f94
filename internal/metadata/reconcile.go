package metadata

import (
	"fmt"
	"strings"
	"unicode"
)

// MergeMode selects how recognized metadata is reconciled with the tags
// already on disk.
type MergeMode int

const (
	// MergeReplace trusts the recognizer: the recognized record is taken
	// verbatim, empty fields included. Used by the direct-apply flow.
	MergeReplace MergeMode = iota
	// MergePreserve backfills empty recognized fields from the on-disk
	// value, so recognition can add or correct but never lose. Used to
	// seed the operator review proposal.
	MergePreserve
)

func (m MergeMode) String() string {
	if m == MergePreserve {
		return "preserve"
	}
	return "replace"
}

// ParseMergeMode maps the config spelling of a merge mode.
func ParseMergeMode(s string) (MergeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "replace":
		return MergeReplace, nil
	case "preserve":
		return MergePreserve, nil
	}
	return MergeReplace, fmt.Errorf("unknown merge mode %q (valid modes: replace, preserve)", s)
}

// Merge reconciles the metadata read from a file with a recognized
// record. A field counts as set when non-empty after trimming; tag
// writers never clear fields, so an empty field in the result leaves
// the on-disk value alone either way.
func Merge(old, recognized Track, mode MergeMode) Track {
	if mode == MergeReplace {
		return recognized
	}

	merged := recognized
	if isBlank(merged.Artist) {
		merged.Artist = old.Artist
	}
	if isBlank(merged.Title) {
		merged.Title = old.Title
	}
	if isBlank(merged.Album) {
		merged.Album = old.Album
	}
	if isBlank(merged.ReleaseDate) {
		merged.ReleaseDate = old.ReleaseDate
	}
	if isBlank(merged.Label) {
		merged.Label = old.Label
	}
	return merged
}

// SanitizeName drops every character that is not a Unicode letter or
// digit, space, dot, hyphen or underscore, then trims trailing spaces.
// Sanitizing an already-sanitized name is a no-op.
func SanitizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) ||
			r == ' ' || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// TargetName builds the "<artist> - <title><ext>" rename target for a
// track, with ext carrying the original file's extension (dot included).
// ok is false when sanitization leaves a stem with no name content, in
// which case the caller keeps the original file name.
func TargetName(t Track, ext string) (name string, ok bool) {
	stem := SanitizeName(t.Artist + " - " + t.Title)
	if !strings.ContainsFunc(stem, isNameContent) {
		return "", false
	}
	return stem + ext, true
}

func isNameContent(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
