package parser

import (
	"regexp"
	"strings"
)

var (
	multiSpace   = regexp.MustCompile(`\s+`)
	controlChars = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]")
	disallowed   = regexp.MustCompile(`[^\w\s.,?!\-:;()\[\]{}"']`)
	spaceRuns    = regexp.MustCompile(`[ \t]+`)
)

// CleanText normalizes raw extracted text for indexing: whitespace runs
// collapse to single spaces, control characters are dropped and unusual
// symbols are filtered while basic punctuation survives.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = multiSpace.ReplaceAllString(text, " ")
	text = controlChars.ReplaceAllString(text, "")
	text = disallowed.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// cleanLine normalizes one layout line without touching line structure:
// control characters go, interior runs of spaces and tabs collapse. The
// symbol filter is NOT applied here; block text feeds classification
// heuristics that look for currency amounts.
func cleanLine(line string) string {
	line = controlChars.ReplaceAllString(line, "")
	line = spaceRuns.ReplaceAllString(line, " ")
	return strings.TrimSpace(line)
}
