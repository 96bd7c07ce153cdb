package chunker

import (
	"strings"
	"testing"
)

func TestChunkShortTextSingleChunk(t *testing.T) {
	c := New(Config{})
	text := "Depreciation allocates an asset's cost over its useful life."

	chunks := c.Chunk(text)

	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Text != text || chunks[0].Index != 0 {
		t.Errorf("chunk = %+v", chunks[0])
	}
	if chunks[0].ContentHash == "" {
		t.Error("content hash missing")
	}
}

func TestChunkEmptyText(t *testing.T) {
	if got := New(Config{}).Chunk("  \n "); got != nil {
		t.Fatalf("got %d chunks for blank text, want none", len(got))
	}
}

func TestChunkOverlapAndSentenceBoundaries(t *testing.T) {
	sentence := "The ledger balances at the end of every period. "
	text := strings.TrimSpace(strings.Repeat(sentence, 60)) // ~2880 chars

	c := New(Config{ChunkSize: 1000, Overlap: 200})
	chunks := c.Chunk(text)

	if len(chunks) < 3 {
		t.Fatalf("got %d chunks, want at least 3", len(chunks))
	}

	for i, ch := range chunks {
		if ch.Index != i {
			t.Errorf("chunk %d has index %d", i, ch.Index)
		}
		if len(ch.Text) > 1100 {
			t.Errorf("chunk %d is %d chars; cut point should stay near the target", i, len(ch.Text))
		}
		if i < len(chunks)-1 && !strings.HasSuffix(ch.Text, "period.") {
			t.Errorf("chunk %d should end on a sentence: %q", i, ch.Text[len(ch.Text)-30:])
		}
	}

	// Consecutive chunks share overlap text.
	for i := 1; i < len(chunks); i++ {
		tail := chunks[i-1].Text[len(chunks[i-1].Text)-40:]
		if !strings.Contains(chunks[i].Text, tail[:20]) {
			t.Errorf("chunk %d does not overlap its predecessor", i)
		}
	}

	// All input content is covered.
	joined := strings.Join(chunkTexts(chunks), " ")
	if !strings.Contains(joined, "ledger balances") {
		t.Error("content lost during chunking")
	}
}

func TestChunkNoSentenceBoundary(t *testing.T) {
	// A single unbroken token stream still chunks by size.
	text := strings.Repeat("abcde ", 400) // 2400 chars, no sentence endings
	chunks := New(Config{}).Chunk(strings.TrimSpace(text))

	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}
	for i, ch := range chunks {
		if len(ch.Text) > 1000 {
			t.Errorf("chunk %d is %d chars, want <= 1000", i, len(ch.Text))
		}
	}
}

func TestChunkDeterministic(t *testing.T) {
	text := strings.Repeat("Assets equal liabilities plus equity. ", 80)
	c := New(Config{})

	a := c.Chunk(text)
	b := c.Chunk(text)

	if len(a) != len(b) {
		t.Fatalf("run lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestBySentences(t *testing.T) {
	var parts []string
	for i := 1; i <= 9; i++ {
		parts = append(parts, sentenceN(i))
	}
	text := strings.Join(parts, " ")

	chunks := New(Config{}).BySentences(text, 5)

	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	// One-sentence overlap: chunk 0 ends with sentence 5, chunk 1 starts with it.
	if !strings.HasSuffix(chunks[0].Text, sentenceN(5)) {
		t.Errorf("chunk 0 = %q", chunks[0].Text)
	}
	if !strings.HasPrefix(chunks[1].Text, sentenceN(5)) {
		t.Errorf("chunk 1 = %q", chunks[1].Text)
	}
	if !strings.HasSuffix(chunks[1].Text, sentenceN(9)) {
		t.Errorf("chunk 1 should end with the last sentence: %q", chunks[1].Text)
	}
}

func TestBySentencesShortText(t *testing.T) {
	chunks := New(Config{}).BySentences("Only one sentence here.", 5)
	if len(chunks) != 1 || chunks[0].Text != "Only one sentence here." {
		t.Fatalf("chunks = %+v", chunks)
	}
	if got := New(Config{}).BySentences("", 5); got != nil {
		t.Errorf("empty text should yield no chunks, got %v", got)
	}
}

func sentenceN(i int) string {
	return strings.Repeat("x", i) + " is entry number " + strings.Repeat("y", i) + "."
}

func chunkTexts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}
