//go:build cgo

package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath, 4) // dim=4 for test vectors
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ---------------------------------------------------------------------------
// Schema / construction
// ---------------------------------------------------------------------------

func TestNew(t *testing.T) {
	s := newTestStore(t)
	if s.EmbeddingDim() != 4 {
		t.Fatalf("expected embedding dim 4, got %d", s.EmbeddingDim())
	}
	if s.DB() == nil {
		t.Fatal("expected non-nil *sql.DB")
	}
}

func TestNewCreatesParentDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sub", "dir", "test.db")
	s, err := New(dbPath, 4)
	if err != nil {
		t.Fatalf("creating store in nested dir: %v", err)
	}
	s.Close()
}

// ---------------------------------------------------------------------------
// Document CRUD
// ---------------------------------------------------------------------------

func sampleDoc(path, category string) Document {
	return Document{
		Path:        path,
		Filename:    filepath.Base(path),
		Format:      "pdf",
		Category:    category,
		ContentHash: "abc123",
		ParseMethod: "native",
		Status:      "pending",
		Metadata:    `{"pages":3}`,
	}
}

func TestUpsertAndGetDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.UpsertDocument(ctx, sampleDoc("/tmp/hw1.pdf", CategoryAssignment))
	if err != nil {
		t.Fatalf("upserting document: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero document id")
	}

	got, err := s.GetDocument(ctx, id)
	if err != nil {
		t.Fatalf("getting document by id: %v", err)
	}
	if got.Filename != "hw1.pdf" || got.Category != CategoryAssignment {
		t.Errorf("document = %+v", got)
	}

	byPath, err := s.GetDocumentByPath(ctx, "/tmp/hw1.pdf")
	if err != nil {
		t.Fatalf("getting document by path: %v", err)
	}
	if byPath == nil || byPath.ID != id {
		t.Errorf("byPath = %+v, want id %d", byPath, id)
	}
}

func TestUpsertDocumentKeepsIDOnUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := sampleDoc("/tmp/ch1.pdf", CategoryMaterial)
	id1, err := s.UpsertDocument(ctx, doc)
	if err != nil {
		t.Fatal(err)
	}

	doc.ContentHash = "def456"
	doc.Status = "processed"
	id2, err := s.UpsertDocument(ctx, doc)
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Fatalf("upsert changed id: %d -> %d", id1, id2)
	}

	got, _ := s.GetDocument(ctx, id1)
	if got.ContentHash != "def456" || got.Status != "processed" {
		t.Errorf("update not applied: %+v", got)
	}
}

func TestGetDocumentByPathMissing(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetDocumentByPath(context.Background(), "/tmp/nope.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("got %+v, want nil for missing path", got)
	}
}

func TestListDocumentsByCategory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, d := range []Document{
		sampleDoc("/tmp/ch1.pdf", CategoryMaterial),
		sampleDoc("/tmp/ch2.pdf", CategoryMaterial),
		sampleDoc("/tmp/hw1.pdf", CategoryAssignment),
	} {
		if _, err := s.UpsertDocument(ctx, d); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.ListDocuments(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("all documents = %d, want 3", len(all))
	}

	materials, err := s.ListDocuments(ctx, CategoryMaterial)
	if err != nil {
		t.Fatal(err)
	}
	if len(materials) != 2 {
		t.Errorf("materials = %d, want 2", len(materials))
	}

	assignments, err := s.ListDocuments(ctx, CategoryAssignment)
	if err != nil {
		t.Fatal(err)
	}
	if len(assignments) != 1 || assignments[0].Filename != "hw1.pdf" {
		t.Errorf("assignments = %+v", assignments)
	}
}

// ---------------------------------------------------------------------------
// Chunks and embeddings
// ---------------------------------------------------------------------------

func insertTestChunks(t *testing.T, s *Store, docID int64) []int64 {
	t.Helper()
	ids, err := s.InsertChunks(context.Background(), []Chunk{
		{
			DocumentID:  docID,
			ChunkKey:    "hw1_q0",
			Content:     "Question: 1. Prepare the adjusted trial balance.",
			ChunkType:   "question",
			QuestionID:  "1.",
			HasTable:    true,
			HasScenario: true,
			ChunkIndex:  0,
		},
		{
			DocumentID: docID,
			ChunkKey:   "hw1_chunk_1",
			Content:    "Context/Background:\nThe firm opened in March with two partners.",
			ChunkType:  "scenario",
			PageNumber: 1,
			ChunkIndex: 1,
		},
	})
	if err != nil {
		t.Fatalf("inserting chunks: %v", err)
	}
	return ids
}

func TestInsertAndGetChunks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	docID, err := s.UpsertDocument(ctx, sampleDoc("/tmp/hw1.pdf", CategoryAssignment))
	if err != nil {
		t.Fatal(err)
	}

	ids := insertTestChunks(t, s, docID)
	if len(ids) != 2 || ids[0] == 0 || ids[1] == 0 {
		t.Fatalf("chunk ids = %v", ids)
	}

	chunks, err := s.GetChunksByDocument(ctx, docID)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	q := chunks[0]
	if q.ChunkKey != "hw1_q0" || q.QuestionID != "1." || !q.HasTable || !q.HasScenario || q.HasImage {
		t.Errorf("question chunk = %+v", q)
	}
	if q.ContentHash == "" {
		t.Error("content hash not computed on insert")
	}
}

func TestInsertChunksReplacesByKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	docID, err := s.UpsertDocument(ctx, sampleDoc("/tmp/hw1.pdf", CategoryAssignment))
	if err != nil {
		t.Fatal(err)
	}
	insertTestChunks(t, s, docID)

	_, err = s.InsertChunks(ctx, []Chunk{{
		DocumentID: docID,
		ChunkKey:   "hw1_q0",
		Content:    "Question: 1. Prepare the adjusted trial balance as of March 31.",
		ChunkType:  "question",
		QuestionID: "1.",
		ChunkIndex: 0,
	}})
	if err != nil {
		t.Fatal(err)
	}

	chunks, err := s.GetChunksByDocument(ctx, docID)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks after replace, want 2", len(chunks))
	}
	if !strings.Contains(chunks[0].Content, "March 31") {
		t.Errorf("replacement not applied: %q", chunks[0].Content)
	}
}

func TestQuestionChunks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	docID, err := s.UpsertDocument(ctx, sampleDoc("/tmp/hw1.pdf", CategoryAssignment))
	if err != nil {
		t.Fatal(err)
	}
	insertTestChunks(t, s, docID)

	byFile, err := s.QuestionChunks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	qs := byFile["hw1.pdf"]
	if len(qs) != 1 || qs[0].QuestionID != "1." {
		t.Errorf("question chunks = %+v", byFile)
	}
}

func TestVectorSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	docID, err := s.UpsertDocument(ctx, sampleDoc("/tmp/hw1.pdf", CategoryAssignment))
	if err != nil {
		t.Fatal(err)
	}
	ids := insertTestChunks(t, s, docID)

	if err := s.InsertEmbedding(ctx, ids[0], []float32{1, 0, 0, 0}); err != nil {
		t.Fatalf("inserting embedding: %v", err)
	}
	if err := s.InsertEmbedding(ctx, ids[1], []float32{0, 1, 0, 0}); err != nil {
		t.Fatalf("inserting embedding: %v", err)
	}

	results, err := s.VectorSearch(ctx, []float32{0.9, 0.1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("vector search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ChunkID != ids[0] {
		t.Errorf("nearest = chunk %d, want %d", results[0].ChunkID, ids[0])
	}
	if results[0].Category != CategoryAssignment {
		t.Errorf("category = %q", results[0].Category)
	}
}

func TestFTSSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	docID, err := s.UpsertDocument(ctx, sampleDoc("/tmp/hw1.pdf", CategoryAssignment))
	if err != nil {
		t.Fatal(err)
	}
	insertTestChunks(t, s, docID)

	results, err := s.FTSSearch(ctx, "trial balance", 10)
	if err != nil {
		t.Fatalf("FTS search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].ChunkType != "question" {
		t.Errorf("result = %+v", results[0])
	}
}

func TestDeleteDocumentData(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	docID, err := s.UpsertDocument(ctx, sampleDoc("/tmp/hw1.pdf", CategoryAssignment))
	if err != nil {
		t.Fatal(err)
	}
	ids := insertTestChunks(t, s, docID)
	if err := s.InsertEmbedding(ctx, ids[0], []float32{1, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteDocumentData(ctx, docID); err != nil {
		t.Fatalf("deleting document data: %v", err)
	}

	chunks, err := s.GetChunksByDocument(ctx, docID)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 0 {
		t.Errorf("chunks remain after delete: %d", len(chunks))
	}

	// Document record survives.
	doc, err := s.GetDocument(ctx, docID)
	if err != nil || doc == nil {
		t.Fatalf("document record should survive: %v", err)
	}

	// FTS index cleaned by triggers.
	results, err := s.FTSSearch(ctx, "trial", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("FTS results remain after delete: %d", len(results))
	}
}

func TestDBStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	docID, err := s.UpsertDocument(ctx, sampleDoc("/tmp/hw1.pdf", CategoryAssignment))
	if err != nil {
		t.Fatal(err)
	}
	insertTestChunks(t, s, docID)

	stats, err := s.DBStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Documents != 1 || stats.Assignments != 1 || stats.Chunks != 2 || stats.Questions != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestLogQuery(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.LogQuery(ctx, QueryLog{
		SessionID:       "sess-1",
		Question:        "How do I start question 1?",
		Hint:            "Look at which accounts the payment touches.",
		Sources:         []string{"hw1.pdf"},
		RetrievalMethod: "hybrid",
		ModelUsed:       "gemini-2.0-flash",
		TotalTokens:     321,
	})
	if err != nil {
		t.Fatalf("logging query: %v", err)
	}

	stats, err := s.DBStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Queries != 1 {
		t.Errorf("queries = %d, want 1", stats.Queries)
	}
}
