package extract

import (
	"regexp"
	"strings"
)

// MarkerKind identifies which item-numbering style matched a line.
type MarkerKind int

const (
	MarkerNumeric MarkerKind = iota // "1. " or "1) "
	MarkerLowerLetter               // "a. " or "a) "
	MarkerUpperLetter               // "A. " or "A) "
	MarkerQuestion                  // "Question 1"
	MarkerProblem                   // "Problem 1"
	MarkerExercise                  // "Exercise 1"
	MarkerRomanNumeral              // "i. ", "ii) ", ...
)

// Marker is a recognized item-start prefix.
type Marker struct {
	ID   string // the matched prefix, trimmed, e.g. "a)" or "Question 2"
	Kind MarkerKind
}

// markerPatterns are tried in this fixed order; the first match wins.
// All patterns are case-insensitive, mirroring how the numbering styles
// appear inconsistently across scanned assignments.
var markerPatterns = []struct {
	kind MarkerKind
	re   *regexp.Regexp
}{
	{MarkerNumeric, regexp.MustCompile(`(?i)^(\d+[.)]\s+)`)},
	{MarkerLowerLetter, regexp.MustCompile(`(?i)^([a-z][.)]\s+)`)},
	{MarkerUpperLetter, regexp.MustCompile(`(?i)^([A-Z][.)]\s+)`)},
	{MarkerQuestion, regexp.MustCompile(`(?i)^(Question\s+\d+)`)},
	{MarkerProblem, regexp.MustCompile(`(?i)^(Problem\s+\d+)`)},
	{MarkerExercise, regexp.MustCompile(`(?i)^(Exercise\s+\d+)`)},
	{MarkerRomanNumeral, regexp.MustCompile(`(?i)^([ivx]+[.)]\s+)`)},
}

// romanID matches a bare roman-numeral marker id like "iii)" or "i.".
// A single "i" matches the letter pattern before the roman pattern, so
// sub-item handling keys off the id text rather than the matched kind.
var romanID = regexp.MustCompile(`(?i)^[ivx]+[.)]$`)

// markerPrefix strips a leading alphanumeric marker ("1.", "a)", "IV).")
// from item text for first-word inspection.
var markerPrefix = regexp.MustCompile(`^[0-9a-zA-Z]+[.)]\s*`)

// MatchMarker reports whether line starts with an item marker. The line
// must already be trimmed; blank lines never match.
func MatchMarker(line string) (Marker, bool) {
	for _, p := range markerPatterns {
		if m := p.re.FindStringSubmatch(line); m != nil {
			return Marker{ID: strings.TrimSpace(m[1]), Kind: p.kind}, true
		}
	}
	return Marker{}, false
}

// IsItemStart reports whether text begins with any item marker.
func IsItemStart(text string) bool {
	_, ok := MatchMarker(strings.TrimSpace(text))
	return ok
}

// IsRoman reports whether the marker id is a roman numeral, regardless
// of which pattern produced it.
func (m Marker) IsRoman() bool {
	return romanID.MatchString(strings.TrimSpace(m.ID))
}

// stripMarker removes the leading marker prefix from text, returning
// the content that follows it.
func stripMarker(text string) string {
	return markerPrefix.ReplaceAllString(text, "")
}

// firstWord returns the lowercased first word of text, or "" if text
// has no words.
func firstWord(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}
