// Package studyhint is a course-material knowledge base that answers
// student questions with hints instead of solutions. Assignments are
// parsed into structured question and scenario chunks; lecture material
// is chunked plainly. Both are indexed for hybrid vector plus full-text
// retrieval, and a tutor-prompted LLM turns retrieved context into
// guidance.
package studyhint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Lokesh-Kollepara/studyhint/chunker"
	"github.com/Lokesh-Kollepara/studyhint/extract"
	"github.com/Lokesh-Kollepara/studyhint/hint"
	"github.com/Lokesh-Kollepara/studyhint/llm"
	"github.com/Lokesh-Kollepara/studyhint/parser"
	"github.com/Lokesh-Kollepara/studyhint/retrieval"
	"github.com/Lokesh-Kollepara/studyhint/session"
	"github.com/Lokesh-Kollepara/studyhint/store"
)

// Engine is the main entry point for the studyhint knowledge base.
type Engine interface {
	// IngestMaterial indexes a lecture/reading document with plain
	// chunking. Returns the document ID. Skips if content hash unchanged.
	IngestMaterial(ctx context.Context, path string) (int64, error)

	// IngestAssignment indexes an assignment document with structured
	// question/scenario extraction. Returns the document ID.
	IngestAssignment(ctx context.Context, path string) (int64, error)

	// IngestDir scans <root>/pdfs/materials and <root>/pdfs/assignments
	// and ingests every supported file found.
	IngestDir(ctx context.Context, root string) (*IngestReport, error)

	// Ask answers a student message with a hint grounded in the indexed
	// materials. An empty or unknown session id starts a new session.
	Ask(ctx context.Context, sessionID, message string) (*ChatResult, error)

	// AssignmentQuestions returns the extracted questions grouped by
	// assignment filename.
	AssignmentQuestions(ctx context.Context) (map[string][]AssignmentQuestion, error)

	// Summary reports knowledge-base counts.
	Summary(ctx context.Context) (*Summary, error)

	// Session operations.
	NewSession() string
	History(sessionID string) ([]hint.Message, error)
	ClearSession(sessionID string) error
	SessionInfo(sessionID string) (*session.Info, error)
	CleanupSessions() int

	// Store returns the underlying store for diagnostic access.
	Store() *store.Store

	// Close cleanly shuts down the engine.
	Close() error
}

// ChatResult is the outcome of one Ask call.
type ChatResult struct {
	Response  string    `json:"response"`
	SessionID string    `json:"session_id"`
	Sources   []Source  `json:"sources,omitempty"`
	ModelUsed string    `json:"model_used,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Source identifies a chunk that grounded a hint, with a short excerpt
// relevant to the student's question.
type Source struct {
	ChunkID    int64   `json:"chunk_id"`
	Filename   string  `json:"filename"`
	ChunkType  string  `json:"chunk_type"`
	QuestionID string  `json:"question_id,omitempty"`
	PageNumber int     `json:"page_number,omitempty"`
	Snippet    string  `json:"snippet,omitempty"`
	Score      float64 `json:"score"`
}

// AssignmentQuestion is one extracted question as exposed over the API.
type AssignmentQuestion struct {
	QuestionID  string `json:"question_id"`
	Question    string `json:"question"`
	HasScenario bool   `json:"has_scenario"`
	HasTable    bool   `json:"has_table"`
	HasImage    bool   `json:"has_image"`
}

// IngestReport summarizes an IngestDir run.
type IngestReport struct {
	MaterialsLoaded   int      `json:"materials_loaded"`
	AssignmentsLoaded int      `json:"assignments_loaded"`
	Skipped           int      `json:"skipped"`
	Errors            []string `json:"errors,omitempty"`
}

// Summary reports knowledge-base counts for /api/stats.
type Summary struct {
	Documents   int `json:"documents"`
	Materials   int `json:"materials"`
	Assignments int `json:"assignments"`
	Chunks      int `json:"chunks"`
	Questions   int `json:"questions"`
	Embeddings  int `json:"embeddings"`
	Sessions    int `json:"sessions"`
}

// engine is the concrete implementation of Engine.
type engine struct {
	cfg       Config
	store     *store.Store
	chatLLM   llm.Provider
	embedLLM  llm.Provider
	parsers   *parser.Registry
	extractor *extract.Extractor
	chunkr    *chunker.Chunker
	retriever *retrieval.Engine
	hinter    *hint.Engine
	sessions  *session.Manager
}

// New creates a studyhint engine with the given configuration.
func New(cfg Config) (Engine, error) {
	dbPath := cfg.resolveDBPath()

	if cfg.EmbeddingDim == 0 {
		cfg.EmbeddingDim = 768
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = 5
	}

	s, err := store.New(dbPath, cfg.EmbeddingDim)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	chatLLM, err := llm.NewProvider(llm.Config{
		Provider: cfg.Chat.Provider,
		Model:    cfg.Chat.Model,
		BaseURL:  cfg.Chat.BaseURL,
		APIKey:   cfg.Chat.APIKey,
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating chat provider: %w", err)
	}

	embedLLM, err := llm.NewProvider(llm.Config{
		Provider: cfg.Embedding.Provider,
		Model:    cfg.Embedding.Model,
		BaseURL:  cfg.Embedding.BaseURL,
		APIKey:   cfg.Embedding.APIKey,
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating embedding provider: %w", err)
	}

	retriever := retrieval.New(s, embedLLM, retrieval.Config{
		WeightVector: cfg.WeightVector,
		WeightFTS:    cfg.WeightFTS,
	})

	hinter := hint.New(chatLLM, hint.Config{
		Model:       cfg.Chat.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxOutputTokens,
	})

	sessions := session.NewManager(session.Config{
		MaxHistory: cfg.MaxHistory,
		Timeout:    time.Duration(cfg.SessionTimeoutMinutes) * time.Minute,
	})

	return &engine{
		cfg:       cfg,
		store:     s,
		chatLLM:   chatLLM,
		embedLLM:  embedLLM,
		parsers:   parser.NewRegistry(),
		extractor: extract.New(),
		chunkr: chunker.New(chunker.Config{
			ChunkSize: cfg.ChunkSize,
			Overlap:   cfg.ChunkOverlap,
		}),
		retriever: retriever,
		hinter:    hinter,
		sessions:  sessions,
	}, nil
}

// IngestMaterial indexes a lecture/reading document.
func (e *engine) IngestMaterial(ctx context.Context, path string) (int64, error) {
	return e.ingest(ctx, path, store.CategoryMaterial)
}

// IngestAssignment indexes an assignment document.
func (e *engine) IngestAssignment(ctx context.Context, path string) (int64, error) {
	return e.ingest(ctx, path, store.CategoryAssignment)
}

func (e *engine) ingest(ctx context.Context, path, category string) (int64, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return 0, fmt.Errorf("resolving path: %w", err)
	}

	hash, err := fileHash(absPath)
	if err != nil {
		return 0, fmt.Errorf("hashing file: %w", err)
	}

	// Unchanged documents that loaded cleanly are skipped.
	if existing, err := e.store.GetDocumentByPath(ctx, absPath); err == nil &&
		existing != nil && existing.ContentHash == hash && existing.Status == "ready" {
		slog.Debug("ingest: unchanged, skipping", "file", existing.Filename)
		return existing.ID, nil
	}

	filename := filepath.Base(absPath)
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(absPath), "."))

	docID, err := e.store.UpsertDocument(ctx, store.Document{
		Path:        absPath,
		Filename:    filename,
		Format:      format,
		Category:    category,
		ContentHash: hash,
		ParseMethod: "native",
		Status:      "processing",
	})
	if err != nil {
		return 0, fmt.Errorf("upserting document: %w", err)
	}

	slog.Info("ingest: parsing document",
		"file", filename, "format", format, "category", category, "doc_id", docID)
	parseStart := time.Now()

	p, err := e.parsers.Get(format)
	if err != nil {
		e.store.UpdateDocumentStatus(ctx, docID, "error")
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	parsed, err := p.Parse(ctx, absPath)
	if err != nil {
		e.store.UpdateDocumentStatus(ctx, docID, "error")
		return 0, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	slog.Info("ingest: parsing complete",
		"file", filename, "pages", len(parsed.Pages),
		"elapsed", time.Since(parseStart).Round(time.Millisecond))

	var chunks []store.Chunk
	if category == store.CategoryAssignment {
		chunks = e.assignmentChunks(filename, parsed, docID)
	} else {
		chunks = e.materialChunks(filename, parsed, docID)
	}
	slog.Info("ingest: chunking complete", "file", filename, "chunks", len(chunks))

	if err := e.store.DeleteDocumentData(ctx, docID); err != nil {
		return 0, fmt.Errorf("cleaning old data: %w", err)
	}

	if len(chunks) == 0 {
		slog.Warn("ingest: no chunks produced", "file", filename)
		e.store.UpdateDocumentStatus(ctx, docID, "ready")
		return docID, nil
	}

	chunkIDs, err := e.store.InsertChunks(ctx, chunks)
	if err != nil {
		e.store.UpdateDocumentStatus(ctx, docID, "error")
		return 0, fmt.Errorf("inserting chunks: %w", err)
	}

	slog.Info("ingest: generating embeddings", "file", filename, "chunks", len(chunks))
	embedStart := time.Now()
	if err := e.embedChunks(ctx, chunks, chunkIDs); err != nil {
		e.store.UpdateDocumentStatus(ctx, docID, "error")
		return 0, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	slog.Info("ingest: embeddings complete",
		"file", filename, "chunks", len(chunks),
		"elapsed", time.Since(embedStart).Round(time.Millisecond))

	e.store.UpdateDocumentStatus(ctx, docID, "ready")
	slog.Info("ingest: document ready",
		"file", filename, "doc_id", docID,
		"total_elapsed", time.Since(parseStart).Round(time.Millisecond))
	return docID, nil
}

// assignmentChunks runs the structured extraction pipeline and converts
// its chunks to store rows. Question chunks get "<stem>_q<n>" keys,
// scenario chunks "<stem>_chunk_<i>".
func (e *engine) assignmentChunks(filename string, parsed *parser.Result, docID int64) []store.Chunk {
	doc := e.extractor.Structure(filename, parsed)
	extracted := e.extractor.Chunks(doc)

	stem := fileStem(filename)
	rows := make([]store.Chunk, 0, len(extracted))
	qIdx := 0
	for i, c := range extracted {
		row := store.Chunk{
			DocumentID: docID,
			Content:    c.Text,
			ChunkType:  c.Metadata.Type,
			ChunkIndex: i,
		}
		switch c.Metadata.Type {
		case extract.TypeQuestion:
			row.ChunkKey = fmt.Sprintf("%s_q%d", stem, qIdx)
			row.QuestionID = c.Metadata.QuestionID
			row.QuestionOnly = c.Metadata.QuestionOnly
			row.HasScenario = c.Metadata.HasScenario
			row.HasTable = c.Metadata.HasTable
			row.HasImage = c.Metadata.HasImage
			qIdx++
		default:
			row.ChunkKey = fmt.Sprintf("%s_chunk_%d", stem, i)
			row.PageNumber = c.Metadata.Page
		}
		if meta, err := json.Marshal(c.Metadata); err == nil {
			row.Metadata = string(meta)
		}
		rows = append(rows, row)
	}
	return rows
}

// materialChunks chunks the document's full text with overlap.
func (e *engine) materialChunks(filename string, parsed *parser.Result, docID int64) []store.Chunk {
	var parts []string
	if text := parsed.FullText(); text != "" {
		parts = append(parts, text)
	}
	for _, tbl := range parsed.Tables() {
		if formatted := extract.FormatTable(tbl.Rows); formatted != "" {
			parts = append(parts, formatted)
		}
	}
	text := strings.Join(parts, "\n\n")

	stem := fileStem(filename)
	pieces := e.chunkr.Chunk(text)
	rows := make([]store.Chunk, len(pieces))
	for i, p := range pieces {
		rows[i] = store.Chunk{
			DocumentID: docID,
			ChunkKey:   fmt.Sprintf("%s_chunk_%d", stem, p.Index),
			Content:    p.Text,
			ChunkType:  "content",
			ChunkIndex: p.Index,
		}
	}
	return rows
}

// IngestDir loads every supported file under the conventional layout.
func (e *engine) IngestDir(ctx context.Context, root string) (*IngestReport, error) {
	report := &IngestReport{}

	type scanTarget struct {
		dir      string
		category string
	}
	targets := []scanTarget{
		{filepath.Join(root, "pdfs", "materials"), store.CategoryMaterial},
		{filepath.Join(root, "pdfs", "assignments"), store.CategoryAssignment},
	}

	for _, target := range targets {
		entries, err := os.ReadDir(target.dir)
		if err != nil {
			if os.IsNotExist(err) {
				slog.Warn("ingest: directory missing, skipping", "dir", target.dir)
				continue
			}
			return nil, fmt.Errorf("reading %s: %w", target.dir, err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !supportedFile(entry) {
				report.Skipped++
				continue
			}
			path := filepath.Join(target.dir, entry.Name())
			if _, err := e.ingest(ctx, path, target.category); err != nil {
				slog.Warn("ingest: document failed", "file", entry.Name(), "error", err)
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", entry.Name(), err))
				continue
			}
			if target.category == store.CategoryAssignment {
				report.AssignmentsLoaded++
			} else {
				report.MaterialsLoaded++
			}
		}
	}

	slog.Info("ingest: directory scan complete",
		"materials", report.MaterialsLoaded,
		"assignments", report.AssignmentsLoaded,
		"skipped", report.Skipped,
		"errors", len(report.Errors))
	return report, nil
}

// Ask retrieves relevant material and generates a hint for the student.
func (e *engine) Ask(ctx context.Context, sessionID, message string) (*ChatResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	if sessionID == "" || !e.sessions.Exists(sessionID) {
		sessionID = e.sessions.Create()
	}

	results, _, err := e.retriever.Search(ctx, message, retrieval.SearchOptions{
		MaxResults: e.cfg.MaxResults,
	})
	if err != nil {
		// Retrieval failure degrades to an unguided hint rather than an error.
		slog.Warn("ask: retrieval failed", "error", err)
		results = nil
	}

	history, err := e.sessions.RecentHistory(sessionID, 10)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	resp, err := e.hinter.Generate(ctx, message, results, history)
	if err != nil {
		return nil, fmt.Errorf("generating hint: %w", err)
	}

	if err := e.sessions.AddMessage(sessionID, "user", message); err != nil {
		return nil, ErrSessionNotFound
	}
	if err := e.sessions.AddMessage(sessionID, "assistant", resp.Text); err != nil {
		return nil, ErrSessionNotFound
	}

	sources := e.annotateSources(message, results)

	e.store.LogQuery(ctx, store.QueryLog{
		SessionID:        sessionID,
		Question:         message,
		Hint:             resp.Text,
		Sources:          sources,
		RetrievalMethod:  "hybrid",
		ModelUsed:        resp.ModelUsed,
		PromptTokens:     resp.PromptTokens,
		CompletionTokens: resp.CompletionTokens,
		TotalTokens:      resp.TotalTokens,
	})

	return &ChatResult{
		Response:  resp.Text,
		SessionID: sessionID,
		Sources:   sources,
		ModelUsed: resp.ModelUsed,
		Timestamp: time.Now(),
	}, nil
}

// annotateSources builds the source list with per-chunk excerpts chosen
// for their overlap with the student's question.
func (e *engine) annotateSources(message string, results []store.RetrievalResult) []Source {
	queryWords := significantWords(message)
	sources := make([]Source, len(results))
	for i, r := range results {
		sources[i] = Source{
			ChunkID:    r.ChunkID,
			Filename:   r.Filename,
			ChunkType:  r.ChunkType,
			QuestionID: r.QuestionID,
			PageNumber: r.PageNumber,
			Snippet:    extractSnippet(r.Content, queryWords),
			Score:      r.Score,
		}
	}
	return sources
}

// AssignmentQuestions returns extracted questions grouped per assignment.
func (e *engine) AssignmentQuestions(ctx context.Context) (map[string][]AssignmentQuestion, error) {
	byFile, err := e.store.QuestionChunks(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]AssignmentQuestion, len(byFile))
	for filename, chunks := range byFile {
		questions := make([]AssignmentQuestion, 0, len(chunks))
		for _, c := range chunks {
			text := c.QuestionOnly
			if text == "" {
				text = c.Content
			}
			questions = append(questions, AssignmentQuestion{
				QuestionID:  c.QuestionID,
				Question:    text,
				HasScenario: c.HasScenario,
				HasTable:    c.HasTable,
				HasImage:    c.HasImage,
			})
		}
		out[filename] = questions
	}
	return out, nil
}

// Summary reports document, chunk and session counts.
func (e *engine) Summary(ctx context.Context) (*Summary, error) {
	stats, err := e.store.DBStats(ctx)
	if err != nil {
		return nil, err
	}
	return &Summary{
		Documents:   stats.Documents,
		Materials:   stats.Materials,
		Assignments: stats.Assignments,
		Chunks:      stats.Chunks,
		Questions:   stats.Questions,
		Embeddings:  stats.Embeddings,
		Sessions:    e.sessions.Count(),
	}, nil
}

// NewSession starts a fresh chat session.
func (e *engine) NewSession() string {
	return e.sessions.Create()
}

// History returns the full message history for a session.
func (e *engine) History(sessionID string) ([]hint.Message, error) {
	msgs, err := e.sessions.History(sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	return msgs, nil
}

// ClearSession empties a session's history.
func (e *engine) ClearSession(sessionID string) error {
	if err := e.sessions.Clear(sessionID); err != nil {
		return ErrSessionNotFound
	}
	return nil
}

// SessionInfo returns metadata about a session.
func (e *engine) SessionInfo(sessionID string) (*session.Info, error) {
	info, err := e.sessions.Info(sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	return info, nil
}

// CleanupSessions removes expired sessions and returns the count removed.
func (e *engine) CleanupSessions() int {
	return e.sessions.CleanupExpired()
}

// Store returns the underlying store for diagnostic access.
func (e *engine) Store() *store.Store {
	return e.store
}

// Close shuts down the engine.
func (e *engine) Close() error {
	return e.store.Close()
}

// maxEmbedChars is the maximum character length for a single text sent
// to the embedding model. Most embedding models have a context window of
// 8192 tokens; ~24000 chars leaves headroom for varied tokenisers.
const maxEmbedChars = 24000

// truncateForEmbed truncates text to maxEmbedChars on a word boundary.
func truncateForEmbed(text string) string {
	if len(text) <= maxEmbedChars {
		return text
	}
	cut := strings.LastIndex(text[:maxEmbedChars], " ")
	if cut <= 0 {
		cut = maxEmbedChars
	}
	return text[:cut]
}

// embedChunks generates embeddings in batches. Individual batch failures
// trigger per-text fallback so a single oversized text does not cause
// the entire batch to be lost.
func (e *engine) embedChunks(ctx context.Context, chunks []store.Chunk, chunkIDs []int64) error {
	const batchSize = 32
	var failed int

	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, end-i)
		for j := i; j < end; j++ {
			texts[j-i] = truncateForEmbed(chunks[j].Content)
		}

		embeddings, err := e.embedLLM.Embed(ctx, texts)
		if err != nil {
			slog.Warn("embedding batch failed, falling back to individual",
				"batch_start", i, "batch_end", end, "error", err)
			for j, text := range texts {
				single, serr := e.embedLLM.Embed(ctx, []string{text})
				if serr != nil {
					slog.Warn("embedding single text failed",
						"chunk_id", chunkIDs[i+j], "error", serr)
					failed++
					continue
				}
				if len(single) == 0 || len(single[0]) == 0 {
					failed++
					continue
				}
				if serr := e.store.InsertEmbedding(ctx, chunkIDs[i+j], single[0]); serr != nil {
					slog.Warn("storing embedding failed",
						"chunk_id", chunkIDs[i+j], "error", serr)
					failed++
				}
			}
			continue
		}

		for j, emb := range embeddings {
			if err := e.store.InsertEmbedding(ctx, chunkIDs[i+j], emb); err != nil {
				slog.Warn("storing embedding failed",
					"chunk_id", chunkIDs[i+j], "error", err)
				failed++
			}
		}
	}

	if failed == len(chunks) {
		return fmt.Errorf("all %d chunks failed embedding", len(chunks))
	}
	if failed > 0 {
		slog.Warn("some embeddings failed", "failed", failed, "total", len(chunks))
	}
	return nil
}

// supportedExtensions are the file formats the ingest scan picks up.
var supportedExtensions = map[string]bool{
	".pdf": true, ".docx": true, ".xlsx": true,
	".md": true, ".markdown": true,
	".html": true, ".htm": true, ".txt": true,
}

func supportedFile(entry fs.DirEntry) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(entry.Name()))]
}

// fileStem returns the filename without directory or extension, used as
// the chunk key prefix.
func fileStem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// fileHash computes the SHA-256 hash of a file's content.
func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
