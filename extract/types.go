package extract

import "github.com/Lokesh-Kollepara/studyhint/parser"

// Scenario is a detected background/context passage: one to three
// consecutive blocks joined with a blank line.
type Scenario struct {
	Text       string
	Page       int
	BlockIndex int
}

// Question is a parsed assignment item. The parser creates it without
// annotation flags; Annotation.Apply produces the annotated copy.
type Question struct {
	ID          string // matched marker text, e.g. "a)" or "Question 2"
	Text        string // all merged lines, including the marker line
	HasScenario bool
	HasTable    bool
	HasImage    bool
}

// Annotation holds the context flags computed for a question.
type Annotation struct {
	HasScenario bool
	HasTable    bool
	HasImage    bool
}

// Apply returns a copy of q with the annotation flags set.
func (a Annotation) Apply(q Question) Question {
	q.HasScenario = a.HasScenario
	q.HasTable = a.HasTable
	q.HasImage = a.HasImage
	return q
}

// Chunk is a retrieval unit: human-readable text plus metadata for the
// search index.
type Chunk struct {
	Text     string
	Metadata ChunkMeta
}

// Chunk metadata type values.
const (
	TypeQuestion = "question"
	TypeScenario = "scenario"
)

// ChunkMeta describes a chunk for index storage. Question-type chunks
// carry the question id, the context flags and the bare question text;
// scenario-type chunks carry the source page.
type ChunkMeta struct {
	Type        string `json:"type"`
	QuestionID  string `json:"question_id,omitempty"`
	HasScenario bool   `json:"has_scenario,omitempty"`
	HasTable    bool   `json:"has_table,omitempty"`
	HasImage    bool   `json:"has_image,omitempty"`
	QuestionOnly string `json:"question_only,omitempty"`
	Page        int    `json:"page,omitempty"`
}

// Document is the structured representation of one assignment document:
// the raw per-page inventories plus everything the pipeline derived from
// them. It lives for one processing pass; callers persist chunks only.
type Document struct {
	Filename  string
	Pages     []parser.Page
	Scenarios []Scenario
	Questions []Question
	FullText  string
}

// Tables returns all tables across the document's pages in page order.
func (d *Document) Tables() []parser.Table {
	var tables []parser.Table
	for _, p := range d.Pages {
		tables = append(tables, p.Tables...)
	}
	return tables
}

// Images returns all image markers across the document's pages.
func (d *Document) Images() []parser.Image {
	var images []parser.Image
	for _, p := range d.Pages {
		images = append(images, p.Images...)
	}
	return images
}
