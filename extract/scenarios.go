package extract

import (
	"regexp"
	"strings"

	"github.com/Lokesh-Kollepara/studyhint/parser"
)

// scenarioIndicators are phrases that explicitly introduce background
// passages.
var scenarioIndicators = []string{
	"following scenario",
	"case study",
	"consider the following",
	"given the following",
	"background:",
	"context:",
	"scenario:",
}

// numericStart matches a leading numeric item marker only; lettered and
// roman markers do not by themselves suggest a transaction list.
var numericStart = regexp.MustCompile(`^\d+[.)]\s+`)

// maxScenarioBlocks is how many consecutive blocks one scenario may
// span, counting the starting block.
const maxScenarioBlocks = 3

// DetectScenarios scans page blocks in order for background/context
// passages. On a scenario-start it greedily absorbs up to the next two
// blocks, stopping at the first item-start. Overlapping windows are
// accepted; chunk synthesis deduplicates by substring containment.
func DetectScenarios(pages []parser.Page) []Scenario {
	var scenarios []Scenario

	for _, page := range pages {
		for i, block := range page.Blocks {
			if !isScenarioBlock(block.Text) {
				continue
			}

			texts := []string{block.Text}
			for j := i + 1; j < len(page.Blocks) && j < i+maxScenarioBlocks; j++ {
				next := page.Blocks[j].Text
				if IsItemStart(next) {
					break
				}
				texts = append(texts, next)
			}

			scenarios = append(scenarios, Scenario{
				Text:       strings.Join(texts, "\n\n"),
				Page:       page.Number,
				BlockIndex: block.Index,
			})
		}
	}

	return scenarios
}

// isScenarioBlock reports whether a block likely opens a scenario:
// an explicit indicator phrase, a numbered item that fails question
// classification (transaction lists like "1. Stockholders invested..."),
// or a long non-item paragraph that is not itself a question.
func isScenarioBlock(text string) bool {
	lower := strings.ToLower(text)
	for _, indicator := range scenarioIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}

	if numericStart.MatchString(strings.TrimSpace(text)) {
		if !IsActualQuestion(text) {
			return true
		}
	}

	if len(text) > 200 && !IsItemStart(text) && !IsActualQuestion(text) {
		return true
	}

	return false
}
