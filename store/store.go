// Package store wraps the SQLite database holding documents, chunks,
// embeddings and the full-text index.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	sqlite_vec.Auto()
}

// Document categories.
const (
	CategoryMaterial   = "material"
	CategoryAssignment = "assignment"
)

// Document represents a row in the documents table.
type Document struct {
	ID          int64  `json:"id"`
	Path        string `json:"path"`
	Filename    string `json:"filename"`
	Format      string `json:"format"`
	Category    string `json:"category"`
	ContentHash string `json:"content_hash"`
	ParseMethod string `json:"parse_method"`
	Status      string `json:"status"`
	Metadata    string `json:"metadata,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Chunk represents a row in the chunks table. ChunkKey is the stable
// per-document identifier ("hw1_q0", "ch3_chunk_2") used for upserts.
type Chunk struct {
	ID           int64  `json:"id"`
	DocumentID   int64  `json:"document_id"`
	ChunkKey     string `json:"chunk_key"`
	Content      string `json:"content"`
	ChunkType    string `json:"chunk_type"`
	QuestionID   string `json:"question_id,omitempty"`
	QuestionOnly string `json:"question_only,omitempty"`
	HasScenario  bool   `json:"has_scenario,omitempty"`
	HasTable     bool   `json:"has_table,omitempty"`
	HasImage     bool   `json:"has_image,omitempty"`
	PageNumber   int    `json:"page_number,omitempty"`
	ChunkIndex   int    `json:"chunk_index"`
	Metadata     string `json:"metadata,omitempty"`
	ContentHash  string `json:"content_hash"`
}

// QueryLog represents a row in the query_log table.
type QueryLog struct {
	SessionID        string      `json:"session_id"`
	Question         string      `json:"question"`
	Hint             string      `json:"hint"`
	Sources          interface{} `json:"sources"`
	RetrievalMethod  string      `json:"retrieval_method"`
	ModelUsed        string      `json:"model_used"`
	PromptTokens     int         `json:"prompt_tokens"`
	CompletionTokens int         `json:"completion_tokens"`
	TotalTokens      int         `json:"total_tokens"`
}

// RetrievalResult holds a chunk with its retrieval score and document info.
type RetrievalResult struct {
	ChunkID    int64   `json:"chunk_id"`
	DocumentID int64   `json:"document_id"`
	Content    string  `json:"content"`
	ChunkType  string  `json:"chunk_type"`
	QuestionID string  `json:"question_id,omitempty"`
	Category   string  `json:"category"`
	PageNumber int     `json:"page_number"`
	Filename   string  `json:"filename"`
	Path       string  `json:"path"`
	Score      float64 `json:"score"`
}

// Store wraps the SQLite database for all studyhint persistence.
type Store struct {
	db           *sql.DB
	embeddingDim int
}

// New opens (or creates) a SQLite database at the given path and
// initialises the schema including sqlite-vec and FTS5 virtual tables.
func New(dbPath string, embeddingDim int) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schemaSQL(embeddingDim)); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	// Connection pool settings for SQLite.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db, embeddingDim: embeddingDim}

	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// EmbeddingDim returns the configured embedding dimension.
func (s *Store) EmbeddingDim() int {
	return s.embeddingDim
}

// --- Document operations ---

// UpsertDocument inserts or updates a document record. Returns the document ID.
func (s *Store) UpsertDocument(ctx context.Context, doc Document) (int64, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (path, filename, format, category, content_hash, parse_method, status, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			filename = excluded.filename,
			format = excluded.format,
			category = excluded.category,
			content_hash = excluded.content_hash,
			parse_method = excluded.parse_method,
			status = excluded.status,
			metadata = excluded.metadata,
			updated_at = CURRENT_TIMESTAMP
	`, doc.Path, doc.Filename, doc.Format, doc.Category, doc.ContentHash, doc.ParseMethod, doc.Status, doc.Metadata)
	if err != nil {
		return 0, err
	}

	// LastInsertId is unreliable for upserts that update; resolve by path.
	existing, err := s.GetDocumentByPath(ctx, doc.Path)
	if err != nil {
		return 0, err
	}
	if existing == nil {
		return 0, fmt.Errorf("document not found after upsert: %s", doc.Path)
	}
	return existing.ID, nil
}

const documentColumns = `id, path, filename, format, category, content_hash, parse_method, status,
	COALESCE(metadata, ''), created_at, updated_at`

func scanDocument(row interface{ Scan(...any) error }) (*Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.Path, &d.Filename, &d.Format, &d.Category,
		&d.ContentHash, &d.ParseMethod, &d.Status, &d.Metadata, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDocumentByPath returns the document with the given path, or nil if absent.
func (s *Store) GetDocumentByPath(ctx context.Context, path string) (*Document, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE path = ?", path)
	d, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return d, err
}

// GetDocument returns the document with the given ID.
func (s *Store) GetDocument(ctx context.Context, id int64) (*Document, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = ?", id)
	return scanDocument(row)
}

// ListDocuments returns all documents, optionally filtered by category.
// An empty category means all documents.
func (s *Store) ListDocuments(ctx context.Context, category string) ([]Document, error) {
	query := "SELECT " + documentColumns + " FROM documents"
	var args []any
	if category != "" {
		query += " WHERE category = ?"
		args = append(args, category)
	}
	query += " ORDER BY filename"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

// UpdateDocumentStatus sets a document's processing status.
func (s *Store) UpdateDocumentStatus(ctx context.Context, id int64, status string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE documents SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		status, id)
	return err
}

// DeleteDocument removes a document and all data derived from it.
func (s *Store) DeleteDocument(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := deleteChunkData(ctx, tx, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
		return err
	})
}

// DeleteDocumentData removes all chunks and embeddings for a document
// but keeps the document record itself. Used before re-ingesting a
// changed file.
func (s *Store) DeleteDocumentData(ctx context.Context, docID int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return deleteChunkData(ctx, tx, docID)
	})
}

func deleteChunkData(ctx context.Context, tx *sql.Tx, docID int64) error {
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM vec_chunks WHERE chunk_id IN (
			SELECT id FROM chunks WHERE document_id = ?
		)`, docID); err != nil {
		return err
	}
	// Triggers clean up FTS.
	_, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", docID)
	return err
}

// --- Chunk operations ---

// InsertChunks inserts a batch of chunks and returns their IDs.
// Existing rows with the same chunk_key are replaced.
func (s *Store) InsertChunks(ctx context.Context, chunks []Chunk) ([]int64, error) {
	ids := make([]int64, len(chunks))

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO chunks (document_id, chunk_key, content, chunk_type,
				question_id, question_only, has_scenario, has_table, has_image,
				page_number, chunk_index, metadata, content_hash)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, c := range chunks {
			hash := sha256.Sum256([]byte(c.Content))
			contentHash := hex.EncodeToString(hash[:])

			res, err := stmt.ExecContext(ctx,
				c.DocumentID, c.ChunkKey, c.Content, c.ChunkType,
				c.QuestionID, c.QuestionOnly,
				boolInt(c.HasScenario), boolInt(c.HasTable), boolInt(c.HasImage),
				c.PageNumber, c.ChunkIndex, c.Metadata, contentHash)
			if err != nil {
				return err
			}
			ids[i], err = res.LastInsertId()
			if err != nil {
				return err
			}
		}
		return nil
	})

	return ids, err
}

const chunkColumns = `id, document_id, chunk_key, content, chunk_type,
	COALESCE(question_id, ''), COALESCE(question_only, ''),
	has_scenario, has_table, has_image,
	COALESCE(page_number, 0), COALESCE(chunk_index, 0),
	COALESCE(metadata, ''), content_hash`

func scanChunk(rows *sql.Rows) (Chunk, error) {
	var c Chunk
	var hasScenario, hasTable, hasImage int
	err := rows.Scan(&c.ID, &c.DocumentID, &c.ChunkKey, &c.Content, &c.ChunkType,
		&c.QuestionID, &c.QuestionOnly, &hasScenario, &hasTable, &hasImage,
		&c.PageNumber, &c.ChunkIndex, &c.Metadata, &c.ContentHash)
	c.HasScenario = hasScenario != 0
	c.HasTable = hasTable != 0
	c.HasImage = hasImage != 0
	return c, err
}

// GetChunksByDocument returns all chunks for a given document in
// insertion order.
func (s *Store) GetChunksByDocument(ctx context.Context, docID int64) ([]Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+chunkColumns+" FROM chunks WHERE document_id = ? ORDER BY chunk_index", docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// QuestionChunks returns every question-type chunk across all
// assignment documents, grouped by document.
func (s *Store) QuestionChunks(ctx context.Context) (map[string][]Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.filename,
			c.id, c.document_id, c.chunk_key, c.content, c.chunk_type,
			COALESCE(c.question_id, ''), COALESCE(c.question_only, ''),
			c.has_scenario, c.has_table, c.has_image,
			COALESCE(c.page_number, 0), COALESCE(c.chunk_index, 0),
			COALESCE(c.metadata, ''), c.content_hash
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE c.chunk_type = 'question'
		ORDER BY d.filename, c.chunk_index
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byFile := make(map[string][]Chunk)
	for rows.Next() {
		var filename string
		var c Chunk
		var hasScenario, hasTable, hasImage int
		if err := rows.Scan(&filename,
			&c.ID, &c.DocumentID, &c.ChunkKey, &c.Content, &c.ChunkType,
			&c.QuestionID, &c.QuestionOnly, &hasScenario, &hasTable, &hasImage,
			&c.PageNumber, &c.ChunkIndex, &c.Metadata, &c.ContentHash); err != nil {
			return nil, err
		}
		c.HasScenario = hasScenario != 0
		c.HasTable = hasTable != 0
		c.HasImage = hasImage != 0
		byFile[filename] = append(byFile[filename], c)
	}
	return byFile, rows.Err()
}

// --- Embedding operations ---

// InsertEmbedding stores a vector embedding for a chunk.
func (s *Store) InsertEmbedding(ctx context.Context, chunkID int64, embedding []float32) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO vec_chunks (chunk_id, embedding) VALUES (?, ?)",
		chunkID, serializeFloat32(embedding))
	return err
}

// VectorSearch performs a KNN search returning the top-k nearest chunks.
func (s *Store) VectorSearch(ctx context.Context, queryEmbedding []float32, k int) ([]RetrievalResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT v.chunk_id, v.distance,
			c.content, c.chunk_type, c.question_id, c.page_number, c.document_id,
			d.filename, d.path, d.category
		FROM vec_chunks v
		JOIN chunks c ON c.id = v.chunk_id
		JOIN documents d ON d.id = c.document_id
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance
	`, serializeFloat32(queryEmbedding), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []RetrievalResult
	for rows.Next() {
		var r RetrievalResult
		var distance float64
		var page sql.NullInt64
		var questionID sql.NullString
		if err := rows.Scan(&r.ChunkID, &distance,
			&r.Content, &r.ChunkType, &questionID, &page, &r.DocumentID,
			&r.Filename, &r.Path, &r.Category); err != nil {
			return nil, err
		}
		r.QuestionID = questionID.String
		r.PageNumber = int(page.Int64)
		// Convert distance to similarity score (1 - distance for cosine)
		r.Score = 1.0 - distance
		results = append(results, r)
	}
	return results, rows.Err()
}

// FTSSearch performs a full-text search using FTS5 BM25 ranking.
func (s *Store) FTSSearch(ctx context.Context, query string, limit int) ([]RetrievalResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.rowid, f.rank,
			c.content, c.chunk_type, c.question_id, c.page_number, c.document_id,
			d.filename, d.path, d.category
		FROM chunks_fts f
		JOIN chunks c ON c.id = f.rowid
		JOIN documents d ON d.id = c.document_id
		WHERE chunks_fts MATCH ?
		ORDER BY f.rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []RetrievalResult
	for rows.Next() {
		var r RetrievalResult
		var rank float64
		var page sql.NullInt64
		var questionID sql.NullString
		if err := rows.Scan(&r.ChunkID, &rank,
			&r.Content, &r.ChunkType, &questionID, &page, &r.DocumentID,
			&r.Filename, &r.Path, &r.Category); err != nil {
			return nil, err
		}
		r.QuestionID = questionID.String
		r.PageNumber = int(page.Int64)
		// FTS5 rank is negative (lower = better), convert to positive score
		r.Score = -rank
		results = append(results, r)
	}
	return results, rows.Err()
}

// --- Query log ---

// LogQuery writes an entry to the hint audit log.
func (s *Store) LogQuery(ctx context.Context, q QueryLog) error {
	sourcesJSON, _ := json.Marshal(q.Sources)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO query_log (session_id, question, hint, sources, retrieval_method, model_used, prompt_tokens, completion_tokens, total_tokens)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, q.SessionID, q.Question, q.Hint, string(sourcesJSON), q.RetrievalMethod, q.ModelUsed,
		q.PromptTokens, q.CompletionTokens, q.TotalTokens)
	return err
}

// --- Stats ---

// DBStats holds counts of key database objects.
type DBStats struct {
	Documents   int `json:"documents"`
	Materials   int `json:"materials"`
	Assignments int `json:"assignments"`
	Chunks      int `json:"chunks"`
	Questions   int `json:"questions"`
	Embeddings  int `json:"embeddings"`
	Queries     int `json:"queries"`
}

// DBStats returns counts of documents, chunks, questions and embeddings.
func (s *Store) DBStats(ctx context.Context) (*DBStats, error) {
	stats := &DBStats{}
	queries := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM documents", &stats.Documents},
		{"SELECT COUNT(*) FROM documents WHERE category = 'material'", &stats.Materials},
		{"SELECT COUNT(*) FROM documents WHERE category = 'assignment'", &stats.Assignments},
		{"SELECT COUNT(*) FROM chunks", &stats.Chunks},
		{"SELECT COUNT(*) FROM chunks WHERE chunk_type = 'question'", &stats.Questions},
		{"SELECT COUNT(*) FROM vec_chunks", &stats.Embeddings},
		{"SELECT COUNT(*) FROM query_log", &stats.Queries},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("counting %s: %w", q.query, err)
		}
	}
	return stats, nil
}

// --- helpers ---

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// serializeFloat32 converts a float32 slice to little-endian bytes for sqlite-vec.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
