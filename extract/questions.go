package extract

import "strings"

// openItem accumulates the lines of one candidate item while the parser
// is in its IN_ITEM state.
type openItem struct {
	marker Marker
	lines  []string
}

// ParseQuestions walks the document text line by line and emits the
// items that classify as actual questions. Blank lines are skipped.
// Lines matching an item marker close the open item (classify, emit or
// discard) and open a new one, except for roman-numeral sub-items which
// merge into the open item. Non-matching lines accumulate into the open
// item, or are ignored when no item is open.
func ParseQuestions(fullText string) []Question {
	var questions []Question
	var current *openItem

	flush := func() {
		if current == nil {
			return
		}
		text := strings.Join(current.lines, "\n")
		if IsActualQuestion(text) {
			questions = append(questions, Question{
				ID:   current.marker.ID,
				Text: text,
			})
		}
		current = nil
	}

	for _, line := range strings.Split(fullText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		m, ok := MatchMarker(line)
		if !ok {
			if current != nil {
				current.lines = append(current.lines, line)
			}
			continue
		}

		// Sub-items merge into the open parent rather than closing it.
		if current != nil && isSubItem(m, line) {
			current.lines = append(current.lines, line)
			continue
		}

		flush()
		current = &openItem{marker: m, lines: []string{line}}
	}

	flush()
	return questions
}
