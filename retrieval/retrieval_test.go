package retrieval

import (
	"strings"
	"testing"

	"github.com/Lokesh-Kollepara/studyhint/store"
)

func TestDetectQuestionReference(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"how do I start question 2", true},
		{"Question 14 confuses me", true},
		{"help with q3", true},
		{"stuck on Q.1b", true},
		{"problem 3 part two", true},
		{"exercise 7", true},
		{"what is depreciation", false},
		{"explain the quick ratio", false},
		{"how are questions graded", false},
	}
	for _, tt := range tests {
		if got := detectQuestionReference(tt.query); got != tt.want {
			t.Errorf("detectQuestionReference(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestSanitizeFTSQuery(t *testing.T) {
	got := sanitizeFTSQuery(`what is the "quick ratio"?`)

	if strings.ContainsAny(got, `"*()+^:?[]{}!.,;$`) && !strings.HasPrefix(got, `"`) {
		t.Errorf("special characters not escaped: %q", got)
	}
	if !strings.Contains(got, "quick") || !strings.Contains(got, "ratio") {
		t.Errorf("significant terms missing: %q", got)
	}
	// Stop words do not appear as standalone OR terms.
	for _, part := range strings.Split(got, " OR ") {
		if part == "what" || part == "the" {
			t.Errorf("stop word kept as term: %q", got)
		}
	}
}

func TestSanitizeFTSQueryPhraseFirst(t *testing.T) {
	got := sanitizeFTSQuery("adjusted trial balance")
	if !strings.HasPrefix(got, `"adjusted trial balance"`) {
		t.Errorf("phrase should lead the query: %q", got)
	}
}

func TestExtractSignificantTerms(t *testing.T) {
	terms := extractSignificantTerms("What is the adjusted trial balance?")

	want := []string{"adjusted", "trial", "balance"}
	if len(terms) != len(want) {
		t.Fatalf("terms = %v, want %v", terms, want)
	}
	for i := range want {
		if terms[i] != want[i] {
			t.Errorf("terms[%d] = %q, want %q", i, terms[i], want[i])
		}
	}
}

func rr(chunkID int64, content string) store.RetrievalResult {
	return store.RetrievalResult{ChunkID: chunkID, Content: content}
}

func TestFuseRRFOverlapWins(t *testing.T) {
	vec := []store.RetrievalResult{rr(1, "a"), rr(2, "b"), rr(3, "c")}
	fts := []store.RetrievalResult{rr(3, "c"), rr(4, "d")}

	fused, info := fuseRRF(vec, fts, 1.0, 1.0, 10)

	if len(fused) != 4 {
		t.Fatalf("got %d fused results, want 4", len(fused))
	}
	// Chunk 3 appears in both lists and must rank first.
	if fused[0].ChunkID != 3 {
		t.Errorf("top result = chunk %d, want 3", fused[0].ChunkID)
	}

	i3 := info[3]
	if len(i3.Methods) != 2 || i3.VecRank != 3 || i3.FTSRank != 1 {
		t.Errorf("chunk 3 info = %+v", i3)
	}
	i1 := info[1]
	if len(i1.Methods) != 1 || i1.VecRank != 1 || i1.FTSRank != 0 {
		t.Errorf("chunk 1 info = %+v", i1)
	}
}

func TestFuseRRFWeights(t *testing.T) {
	vec := []store.RetrievalResult{rr(1, "vec top")}
	fts := []store.RetrievalResult{rr(2, "fts top")}

	fused, _ := fuseRRF(vec, fts, 0.5, 2.0, 10)

	if len(fused) != 2 {
		t.Fatalf("got %d results, want 2", len(fused))
	}
	if fused[0].ChunkID != 2 {
		t.Errorf("FTS-weighted fusion should rank chunk 2 first, got %d", fused[0].ChunkID)
	}

	// Expected RRF scores at rank 1: weight / (60 + 1 + ... ).
	wantTop := 2.0 / 61.0
	if diff := fused[0].Score - wantTop; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("top score = %v, want %v", fused[0].Score, wantTop)
	}
}

func TestFuseRRFMaxResults(t *testing.T) {
	var vec []store.RetrievalResult
	for i := int64(1); i <= 10; i++ {
		vec = append(vec, rr(i, "x"))
	}

	fused, _ := fuseRRF(vec, nil, 1.0, 1.0, 3)
	if len(fused) != 3 {
		t.Fatalf("got %d results, want 3", len(fused))
	}
}

func TestFuseRRFEmpty(t *testing.T) {
	fused, info := fuseRRF(nil, nil, 1.0, 1.0, 10)
	if len(fused) != 0 || len(info) != 0 {
		t.Fatalf("fused = %v, info = %v, want empty", fused, info)
	}
}
