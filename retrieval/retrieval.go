// Package retrieval performs hybrid search over the chunk index,
// fusing vector and full-text results with reciprocal rank fusion.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/Lokesh-Kollepara/studyhint/llm"
	"github.com/Lokesh-Kollepara/studyhint/store"
)

// questionRefPatterns match explicit references to assignment items
// ("question 2", "q3", "problem 1b", "exercise 4"). When a query names
// an item directly, exact-match retrieval beats semantic similarity, so
// FTS weight is boosted and vector weight reduced.
var questionRefPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:question|problem|exercise|part)\s*#?\d+[a-z]?\b`),
	regexp.MustCompile(`(?i)\bq\.?\s*\d+[a-z]?\b`),
	regexp.MustCompile(`(?i)\b(?:number|no\.)\s*\d+\b`),
}

func detectQuestionReference(query string) bool {
	for _, p := range questionRefPatterns {
		if p.MatchString(query) {
			return true
		}
	}
	return false
}

// Config holds retrieval engine configuration.
type Config struct {
	WeightVector float64
	WeightFTS    float64
}

// SearchOptions configures a single search operation.
type SearchOptions struct {
	MaxResults int
	WeightVec  float64
	WeightFTS  float64
}

// SearchTrace records the full breakdown of a hybrid search operation.
type SearchTrace struct {
	VecResults        int                       `json:"vec_results"`
	FTSResults        int                       `json:"fts_results"`
	FusedResults      int                       `json:"fused_results"`
	VecWeight         float64                   `json:"vec_weight"`
	FTSWeight         float64                   `json:"fts_weight"`
	QuestionReference bool                      `json:"question_reference"`
	MaxRequested      int                       `json:"max_requested"`
	FTSQuery          string                    `json:"fts_query"`
	ElapsedMs         int64                     `json:"elapsed_ms"`
	PerResult         map[int64]FusedResultInfo `json:"per_result,omitempty"`
}

// Engine performs hybrid retrieval combining vector and FTS search.
type Engine struct {
	store    *store.Store
	embedder llm.Provider
	cfg      Config
}

// New creates a new retrieval engine.
func New(s *store.Store, embedder llm.Provider, cfg Config) *Engine {
	return &Engine{store: s, embedder: embedder, cfg: cfg}
}

// Search performs hybrid retrieval using RRF to fuse vector and FTS5
// results. Returns fused results and a SearchTrace with the breakdown.
func (e *Engine) Search(ctx context.Context, query string, opts SearchOptions) ([]store.RetrievalResult, *SearchTrace, error) {
	if opts.MaxResults == 0 {
		opts.MaxResults = 20
	}
	if opts.WeightVec == 0 {
		opts.WeightVec = e.cfg.WeightVector
	}
	if opts.WeightFTS == 0 {
		opts.WeightFTS = e.cfg.WeightFTS
	}

	trace := &SearchTrace{
		VecWeight: opts.WeightVec,
		FTSWeight: opts.WeightFTS,
	}

	// Query routing: a direct reference to a numbered item favors
	// exact matching over semantic similarity.
	if detectQuestionReference(query) {
		opts.WeightFTS *= 2.0
		opts.WeightVec *= 0.5
		trace.QuestionReference = true
		trace.VecWeight = opts.WeightVec
		trace.FTSWeight = opts.WeightFTS
		slog.Debug("retrieval: question reference detected, boosting FTS weight",
			"query", query, "fts_weight", opts.WeightFTS)
	}

	ftsQuery := sanitizeFTSQuery(query)
	trace.FTSQuery = ftsQuery

	slog.Debug("retrieval: starting hybrid search",
		"query_len", len(query), "max_results", opts.MaxResults,
		"weights", fmt.Sprintf("vec=%.1f fts=%.1f", opts.WeightVec, opts.WeightFTS))
	searchStart := time.Now()

	type result struct {
		results []store.RetrievalResult
		err     error
	}

	vecCh := make(chan result, 1)
	ftsCh := make(chan result, 1)

	go func() {
		r, err := e.vectorSearch(ctx, query, opts.MaxResults)
		vecCh <- result{r, err}
	}()
	go func() {
		r, err := e.store.FTSSearch(ctx, ftsQuery, opts.MaxResults)
		ftsCh <- result{r, err}
	}()

	vecRes := <-vecCh
	ftsRes := <-ftsCh

	if vecRes.err != nil {
		slog.Warn("retrieval: vector search failed", "error", vecRes.err)
	}
	if ftsRes.err != nil {
		slog.Warn("retrieval: FTS search failed", "error", ftsRes.err)
	}
	trace.VecResults = len(vecRes.results)
	trace.FTSResults = len(ftsRes.results)

	fused, infoMap := fuseRRF(
		vecRes.results, ftsRes.results,
		opts.WeightVec, opts.WeightFTS,
		opts.MaxResults,
	)

	trace.FusedResults = len(fused)
	trace.MaxRequested = opts.MaxResults
	trace.PerResult = infoMap
	trace.ElapsedMs = time.Since(searchStart).Milliseconds()

	if len(fused) == 0 {
		if vecRes.err != nil {
			return nil, trace, fmt.Errorf("vector search: %w", vecRes.err)
		}
		if ftsRes.err != nil {
			return nil, trace, fmt.Errorf("fts search: %w", ftsRes.err)
		}
	}

	return fused, trace, nil
}

// vectorSearch generates an embedding for the query and searches vec_chunks.
func (e *Engine) vectorSearch(ctx context.Context, query string, k int) ([]store.RetrievalResult, error) {
	embeddings, err := e.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, fmt.Errorf("empty embedding returned")
	}
	return e.store.VectorSearch(ctx, embeddings[0], k)
}
