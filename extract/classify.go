package extract

import "strings"

// Vocabulary tables for the question-text classifier. Fixed and
// read-only; classification is a pure function of its input.
var (
	// interrogativeWords open direct questions.
	interrogativeWords = wordSet(
		"what", "why", "how", "when", "where", "who", "which",
	)

	// imperativeWords request an action from the student, as opposed to
	// stating one that already happened.
	imperativeWords = wordSet(
		"explain", "describe", "define", "compare", "discuss",
		"analyze", "evaluate", "calculate", "prepare", "compute",
		"determine", "identify", "list", "state", "illustrate",
		"justify", "prove", "show", "demonstrate", "outline",
	)

	// transactionWords are past-tense verbs typical of accounting
	// transaction narratives ("Invested $5,000 cash...").
	transactionWords = wordSet(
		"invested", "purchased", "paid", "received", "sold",
		"bought", "acquired", "issued", "collected", "borrowed",
		"provided", "completed", "recorded", "transferred",
	)

	// transactionCues is the broader substring scan used by the short-item
	// rule: the verb list plus the noun itself, so list introducers like
	// "the following transactions:" stay scenario material.
	transactionCues = append(keys(transactionWords), "transaction")
)

func keys(s map[string]bool) []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	return out
}

func wordSet(words ...string) map[string]bool {
	s := make(map[string]bool, len(words))
	for _, w := range words {
		s[w] = true
	}
	return s
}

// IsActualQuestion decides whether an accumulated item is an actual
// question rather than a scenario or transaction statement. Numbered
// items in assignment documents are ambiguous between sub-questions and
// narrative transaction lists; when no strong lexical signal is present,
// money amounts, past-tense verbs and length disambiguate. Rules are
// evaluated in order; the first applicable rule decides.
func IsActualQuestion(text string) bool {
	first := firstWord(stripMarker(text))

	// 1. A question mark anywhere is decisive.
	if strings.Contains(text, "?") {
		return true
	}

	// 2. Interrogative opener.
	if interrogativeWords[first] {
		return true
	}

	// 3. Imperative opener requesting an action.
	if imperativeWords[first] {
		return true
	}

	// 4. Past-tense transaction opener marks a scenario item.
	if transactionWords[first] {
		return false
	}

	// 5. A dollar amount near the start usually means a transaction.
	head := text
	if len(head) > 50 {
		head = head[:50]
	}
	if strings.Contains(head, "$") {
		return false
	}

	// 6. Short items with no transaction markers at all lean question.
	if len(text) < 100 {
		lower := strings.ToLower(text)
		hasTransactionCue := false
		for _, w := range transactionCues {
			if strings.Contains(lower, w) {
				hasTransactionCue = true
				break
			}
		}
		if !hasTransactionCue && !strings.Contains(text, "$") {
			return true
		}
	}

	// 7. Default: treat as scenario/context material.
	return false
}

// isSubItem reports whether a matched line is a roman-numeral sub-item
// that should be merged into the open parent item instead of starting
// its own. Short roman-marked lines that do not open with an
// interrogative or imperative word are continuations like "iii) bonus
// shares".
func isSubItem(m Marker, line string) bool {
	if !m.IsRoman() {
		return false
	}
	if len(line) >= 100 {
		return false
	}
	first := firstWord(stripMarker(line))
	return !interrogativeWords[first] && !imperativeWords[first]
}
