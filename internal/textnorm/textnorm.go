// Package textnorm canonicalizes track text for comparison and turns
// arbitrary text into filesystem-safe path segments.
package textnorm

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxSegmentLength is the maximum number of characters kept in a path segment.
	MaxSegmentLength = 180

	// FallbackSegment replaces a path segment that sanitizes to nothing.
	FallbackSegment = "Unknown"

	// FallbackCollection replaces a collection folder name that sanitizes to nothing.
	FallbackCollection = "spotify"
)

// Characters illegal in a path segment on at least one common filesystem.
var illegalChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

var whitespace = regexp.MustCompile(`[\s\p{Z}]+`)

// Normalize applies NFKC, full Unicode case folding and whitespace collapsing.
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	// Fold swaps Cherokee letters between cases on every call; lowering pins
	// them to one form.
	s = strings.ToLower(s)
	// Folding can produce sequences that are no longer in NFKC form.
	s = norm.NFKC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// SafeSegment converts text into a single path segment: illegal characters
// become "_", whitespace runs collapse to one space, and the result is trimmed
// and capped at MaxSegmentLength characters. Apply it to one segment at a
// time, never to a path that contains separators.
func SafeSegment(s string) string {
	return safe(s, FallbackSegment)
}

// SafeCollectionName is SafeSegment for the top-level playlist folder.
func SafeCollectionName(s string) string {
	return safe(s, FallbackCollection)
}

func safe(s, fallback string) string {
	s = illegalChars.ReplaceAllString(s, "_")
	s = whitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = truncate(s, MaxSegmentLength)
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
