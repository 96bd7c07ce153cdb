package studyhint

import (
	"strings"
	"testing"
)

func TestExtractSnippetBasicOverlap(t *testing.T) {
	content := "The trial balance lists every account. Adjusting entries update prepaid accounts. Closing entries zero out temporary accounts."
	words := significantWords("How do adjusting entries affect prepaid accounts?")

	snippet := extractSnippet(content, words)
	if !strings.Contains(snippet, "Adjusting entries update prepaid accounts.") {
		t.Errorf("snippet = %q", snippet)
	}
}

func TestExtractSnippetNoOverlap(t *testing.T) {
	content := "Photosynthesis converts light into chemical energy."
	words := significantWords("What is depreciation expense?")

	if snippet := extractSnippet(content, words); snippet != "" {
		t.Errorf("expected empty snippet, got %q", snippet)
	}
}

func TestExtractSnippetEmptyInputs(t *testing.T) {
	if s := extractSnippet("", significantWords("anything here")); s != "" {
		t.Errorf("empty content should yield empty snippet, got %q", s)
	}
	if s := extractSnippet("Some content here.", nil); s != "" {
		t.Errorf("nil words should yield empty snippet, got %q", s)
	}
}

func TestExtractSnippetRespectsMaxLen(t *testing.T) {
	long := strings.Repeat("depreciation expense reduces asset values over useful life periods ", 10) + "."
	words := significantWords("depreciation expense")

	snippet := extractSnippet(long, words)
	// A single oversized sentence is still returned whole; the limit only
	// gates adding a second sentence.
	if snippet == "" {
		t.Fatal("expected a snippet")
	}
	two := "First depreciation point. " + long
	combined := extractSnippet(two, words)
	if len(combined) > len(two) {
		t.Errorf("combined snippet longer than source")
	}
}

func TestSignificantWords(t *testing.T) {
	words := significantWords("What is the adjusted trial balance?")
	if !words["adjusted"] || !words["trial"] || !words["balance"] {
		t.Errorf("missing content words: %v", words)
	}
	if words["what"] || words["the"] || words["is"] {
		t.Errorf("stop/short words should be excluded: %v", words)
	}
}

func TestSnippetSplitSentences(t *testing.T) {
	got := snippetSplitSentences("First one. Second one? Third one! Trailing fragment")
	want := []string{"First one.", "Second one?", "Third one!", "Trailing fragment"}
	if len(got) != len(want) {
		t.Fatalf("got %d sentences: %v", len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sentence %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSnippetSplitSentencesDecimalNotSplit(t *testing.T) {
	got := snippetSplitSentences("The rate is 4.5 percent annually.")
	if len(got) != 1 {
		t.Errorf("decimal point should not split: %v", got)
	}
}

func TestExtractSnippetAdjacentSentences(t *testing.T) {
	content := "Prepaid rent starts as an asset. Each month part of the rent becomes rent expense. Unrelated closing remark here."
	words := significantWords("prepaid rent expense")

	snippet := extractSnippet(content, words)
	if !strings.Contains(snippet, "asset") || !strings.Contains(snippet, "expense") {
		t.Errorf("expected both relevant sentences, got %q", snippet)
	}
	if strings.Contains(snippet, "Unrelated") {
		t.Errorf("irrelevant sentence included: %q", snippet)
	}
}
