package studyhint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Lokesh-Kollepara/studyhint/chunker"
	"github.com/Lokesh-Kollepara/studyhint/extract"
	"github.com/Lokesh-Kollepara/studyhint/parser"
)

func TestFileHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte("course notes"), 0644); err != nil {
		t.Fatal(err)
	}

	h1, err := fileHash(path)
	if err != nil {
		t.Fatalf("fileHash: %v", err)
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(h1))
	}

	h2, err := fileHash(path)
	if err != nil {
		t.Fatalf("fileHash: %v", err)
	}
	if h1 != h2 {
		t.Error("hash not deterministic")
	}

	if err := os.WriteFile(path, []byte("changed notes"), 0644); err != nil {
		t.Fatal(err)
	}
	h3, err := fileHash(path)
	if err != nil {
		t.Fatalf("fileHash: %v", err)
	}
	if h3 == h1 {
		t.Error("hash unchanged after content change")
	}

	if _, err := fileHash(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFileStem(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hw1.pdf", "hw1"},
		{"/data/pdfs/assignments/hw1.pdf", "hw1"},
		{"chapter 3 notes.docx", "chapter 3 notes"},
		{"README", "README"},
	}
	for _, tt := range tests {
		if got := fileStem(tt.in); got != tt.want {
			t.Errorf("fileStem(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncateForEmbed(t *testing.T) {
	short := "fits easily"
	if got := truncateForEmbed(short); got != short {
		t.Errorf("short text should be unchanged")
	}

	long := strings.Repeat("word ", maxEmbedChars/4)
	got := truncateForEmbed(long)
	if len(got) > maxEmbedChars {
		t.Errorf("truncated length = %d, want <= %d", len(got), maxEmbedChars)
	}
	if strings.HasSuffix(got, " wor") {
		t.Error("truncation split a word")
	}
}

func TestResolveDBPath(t *testing.T) {
	cfg := Config{DBPath: "/tmp/explicit.db"}
	if got := cfg.resolveDBPath(); got != "/tmp/explicit.db" {
		t.Errorf("explicit path = %q", got)
	}

	cfg = Config{DBName: "course", StorageDir: "local"}
	if got := cfg.resolveDBPath(); got != "course.db" {
		t.Errorf("local path = %q", got)
	}

	cfg = Config{DBName: "course", StorageDir: "home"}
	got := cfg.resolveDBPath()
	if !strings.HasSuffix(got, filepath.Join(".studyhint", "course.db")) {
		t.Errorf("home path = %q", got)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Chat.Provider != "gemini" {
		t.Errorf("chat provider = %q", cfg.Chat.Provider)
	}
	if cfg.ChunkSize != 1000 || cfg.ChunkOverlap != 200 {
		t.Errorf("chunking = %d/%d", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.MaxHistory != 20 || cfg.SessionTimeoutMinutes != 60 {
		t.Errorf("session limits = %d/%d", cfg.MaxHistory, cfg.SessionTimeoutMinutes)
	}
}

func testEngine() *engine {
	return &engine{
		cfg:       DefaultConfig(),
		extractor: extract.New(),
		chunkr:    chunker.New(chunker.Config{ChunkSize: 1000, Overlap: 200}),
	}
}

func TestAssignmentChunkKeys(t *testing.T) {
	e := testEngine()

	res := &parser.Result{
		Pages: []parser.Page{{
			Number: 1,
			Blocks: []parser.Block{
				{Text: "Consider the following scenario about Harbor Cleaning."},
				{Text: "1. Explain which accounts need adjusting entries."},
			},
		}},
	}

	rows := e.assignmentChunks("hw1.pdf", res, 42)
	if len(rows) == 0 {
		t.Fatal("no chunks produced")
	}

	var questionKeys, scenarioKeys []string
	for _, r := range rows {
		if r.DocumentID != 42 {
			t.Errorf("DocumentID = %d", r.DocumentID)
		}
		switch r.ChunkType {
		case extract.TypeQuestion:
			questionKeys = append(questionKeys, r.ChunkKey)
		case extract.TypeScenario:
			scenarioKeys = append(scenarioKeys, r.ChunkKey)
		}
	}
	for _, k := range questionKeys {
		if !strings.HasPrefix(k, "hw1_q") {
			t.Errorf("question key = %q", k)
		}
	}
	for _, k := range scenarioKeys {
		if !strings.HasPrefix(k, "hw1_chunk_") {
			t.Errorf("scenario key = %q", k)
		}
	}
}

func TestMaterialChunks(t *testing.T) {
	e := testEngine()

	res := &parser.Result{
		Pages: []parser.Page{{
			Number: 1,
			Blocks: []parser.Block{{Text: "Depreciation spreads an asset's cost over its useful life."}},
			Tables: []parser.Table{{Rows: [][]string{{"Year", "Expense"}, {"1", "500"}}}},
		}},
	}

	rows := e.materialChunks("ch3_notes.pdf", res, 7)
	if len(rows) != 1 {
		t.Fatalf("got %d chunks, want 1", len(rows))
	}
	r := rows[0]
	if r.ChunkKey != "ch3_notes_chunk_0" {
		t.Errorf("ChunkKey = %q", r.ChunkKey)
	}
	if r.ChunkType != "content" {
		t.Errorf("ChunkType = %q", r.ChunkType)
	}
	if !strings.Contains(r.Content, "Depreciation") || !strings.Contains(r.Content, "Year | Expense") {
		t.Errorf("content missing text or table:\n%s", r.Content)
	}
}

func TestSupportedFileExtensions(t *testing.T) {
	if !supportedExtensions[".pdf"] || !supportedExtensions[".docx"] || !supportedExtensions[".txt"] {
		t.Error("expected common formats to be supported")
	}
	if supportedExtensions[".exe"] || supportedExtensions[".png"] {
		t.Error("unexpected format marked supported")
	}
}
