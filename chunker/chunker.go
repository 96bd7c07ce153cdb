// Package chunker splits study-material text into overlapping pieces
// sized for embedding. Assignment documents do not pass through here;
// their chunks are synthesized from extracted structure instead.
package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Config controls the chunking behaviour.
type Config struct {
	ChunkSize int // target characters per chunk
	Overlap   int // characters shared between consecutive chunks
}

// Chunker splits cleaned material text into overlapping chunks.
type Chunker struct {
	cfg Config
}

// New returns a Chunker with the given configuration. Zero-value
// fields are replaced with defaults.
func New(cfg Config) *Chunker {
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.Overlap == 0 {
		cfg.Overlap = 200
	}
	if cfg.Overlap >= cfg.ChunkSize {
		cfg.Overlap = cfg.ChunkSize / 5
	}
	return &Chunker{cfg: cfg}
}

// Chunk is one piece of material text ready for embedding and storage.
type Chunk struct {
	Index       int
	Text        string
	ContentHash string
}

// Chunk splits text into overlapping pieces of roughly ChunkSize
// characters. When a cut point falls mid-sentence, the boundary backs
// off to the nearest sentence ending within a 100-character window on
// either side, so chunks tend to end on complete sentences.
func (c *Chunker) Chunk(text string) []Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= c.cfg.ChunkSize {
		return []Chunk{{Index: 0, Text: text, ContentHash: contentHash(text)}}
	}

	var chunks []Chunk
	start := 0

	for start < len(text) {
		end := start + c.cfg.ChunkSize

		if end < len(text) {
			end = adjustToSentence(text, start, end)
		} else {
			end = len(text)
		}

		piece := strings.TrimSpace(text[start:end])
		if piece != "" {
			chunks = append(chunks, Chunk{
				Index:       len(chunks),
				Text:        piece,
				ContentHash: contentHash(piece),
			})
		}

		if end == len(text) {
			break
		}
		next := end - c.cfg.Overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// BySentences splits text into chunks of sentencesPerChunk sentences
// with a one-sentence overlap between consecutive chunks. It is an
// alternative to the character-window Chunk for prose where sentence
// count matters more than byte length.
func (c *Chunker) BySentences(text string, sentencesPerChunk int) []Chunk {
	if sentencesPerChunk <= 1 {
		sentencesPerChunk = 5
	}
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []Chunk
	step := sentencesPerChunk - 1 // one-sentence overlap
	for start := 0; start < len(sentences); start += step {
		end := start + sentencesPerChunk
		if end > len(sentences) {
			end = len(sentences)
		}
		piece := strings.Join(sentences[start:end], " ")
		chunks = append(chunks, Chunk{
			Index:       len(chunks),
			Text:        piece,
			ContentHash: contentHash(piece),
		})
		if end == len(sentences) {
			break
		}
	}
	return chunks
}

// splitSentences cuts text at sentence endings followed by a space or
// the end of the text.
func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	var cur strings.Builder
	for i := 0; i < len(text); i++ {
		cur.WriteByte(text[i])
		ch := text[i]
		if ch == '.' || ch == '?' || ch == '!' {
			if i+1 >= len(text) || text[i+1] == ' ' || text[i+1] == '\n' {
				if s := strings.TrimSpace(cur.String()); s != "" {
					sentences = append(sentences, s)
				}
				cur.Reset()
			}
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// adjustToSentence moves a cut point to just after the last sentence
// ending found in a window around it. The window spans from 100
// characters before the nominal end to 100 after; when no sentence
// ending falls inside, the nominal end stands.
func adjustToSentence(text string, start, end int) int {
	searchStart := end - 100
	if searchStart < start {
		searchStart = start
	}
	searchEnd := end + 100
	if searchEnd > len(text) {
		searchEnd = len(text)
	}

	window := text[searchStart:searchEnd]
	breakPoint := -1
	for _, ending := range []string{". ", "? ", "! "} {
		if i := strings.LastIndex(window, ending); i > breakPoint {
			breakPoint = i
		}
	}
	if breakPoint > 0 {
		return searchStart + breakPoint + 2
	}
	return end
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
