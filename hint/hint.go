// Package hint generates tutoring responses that guide students toward
// answers without revealing them. It wraps an llm.Provider with the
// tutor system prompt, retrieved course material as grounding context,
// and recent conversation history.
package hint

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Lokesh-Kollepara/studyhint/llm"
	"github.com/Lokesh-Kollepara/studyhint/store"
)

// Config holds hint generation settings.
type Config struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	HistoryTurns int // how many recent messages to include in the prompt
}

// Message is one turn of a tutoring conversation.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Source identifies a chunk that grounded the hint.
type Source struct {
	ChunkID    int64   `json:"chunk_id"`
	Filename   string  `json:"filename"`
	ChunkType  string  `json:"chunk_type"`
	QuestionID string  `json:"question_id,omitempty"`
	PageNumber int     `json:"page_number,omitempty"`
	Score      float64 `json:"score"`
}

// Response is the generated hint plus provenance.
type Response struct {
	Text             string   `json:"text"`
	Sources          []Source `json:"sources"`
	ModelUsed        string   `json:"model_used"`
	PromptTokens     int      `json:"prompt_tokens"`
	CompletionTokens int      `json:"completion_tokens"`
	TotalTokens      int      `json:"total_tokens"`
}

// Engine produces hints over an LLM provider.
type Engine struct {
	chat llm.Provider
	cfg  Config
}

// New creates a hint engine.
func New(chat llm.Provider, cfg Config) *Engine {
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.HistoryTurns == 0 {
		cfg.HistoryTurns = 10
	}
	return &Engine{chat: chat, cfg: cfg}
}

// Generate builds the tutor prompt from the retrieved chunks and recent
// history, then asks the model for a hint. History beyond the configured
// turn count is dropped from the oldest end.
func (e *Engine) Generate(ctx context.Context, question string, chunks []store.RetrievalResult, history []Message) (*Response, error) {
	start := time.Now()

	if len(history) > e.cfg.HistoryTurns {
		history = history[len(history)-e.cfg.HistoryTurns:]
	}

	systemPrompt := buildSystemPrompt(buildMaterials(chunks))
	userPrompt := buildUserPrompt(question, formatHistory(history))

	resp, err := e.chat.Chat(ctx, llm.ChatRequest{
		Model: e.cfg.Model,
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: e.cfg.Temperature,
		MaxTokens:   e.cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generating hint: %w", err)
	}

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		text = "I couldn't come up with a hint for that. Could you rephrase your question or ask about something from the class materials?"
	}

	slog.Info("hint: generated",
		"question_len", len(question),
		"chunks", len(chunks),
		"history", len(history),
		"tokens", resp.TotalTokens,
		"elapsed", time.Since(start).Round(time.Millisecond))

	return &Response{
		Text:             text,
		Sources:          sourcesFromChunks(chunks),
		ModelUsed:        resp.Model,
		PromptTokens:     resp.PromptTokens,
		CompletionTokens: resp.CompletionTokens,
		TotalTokens:      resp.TotalTokens,
	}, nil
}

// buildMaterials renders retrieved chunks as the CLASS MATERIALS block.
func buildMaterials(chunks []store.RetrievalResult) string {
	if len(chunks) == 0 {
		return ""
	}
	var b strings.Builder
	for i, c := range chunks {
		fmt.Fprintf(&b, "--- Material %d: %s", i+1, c.Filename)
		if c.QuestionID != "" {
			fmt.Fprintf(&b, " | Question %s", c.QuestionID)
		}
		if c.PageNumber > 0 {
			fmt.Fprintf(&b, " | Page %d", c.PageNumber)
		}
		b.WriteString(" ---\n")
		b.WriteString(c.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}

func sourcesFromChunks(chunks []store.RetrievalResult) []Source {
	sources := make([]Source, len(chunks))
	for i, c := range chunks {
		sources[i] = Source{
			ChunkID:    c.ChunkID,
			Filename:   c.Filename,
			ChunkType:  c.ChunkType,
			QuestionID: c.QuestionID,
			PageNumber: c.PageNumber,
			Score:      c.Score,
		}
	}
	return sources
}
