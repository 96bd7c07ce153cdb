package extract

import "strings"

// Section headers used in chunk text. A header is only ever emitted
// with non-empty content after it.
const (
	scenarioHeader   = "Context/Scenario:\n"
	tableHeader      = "Table:\n"
	questionHeader   = "Question: "
	backgroundHeader = "Context/Background:\n"
)

// contextPicker selects which scenario and table accompany a question in
// its chunk. The default picks the last one in document order; isolating
// the choice here lets proximity-based matching replace it without
// touching chunk assembly.
type contextPicker struct{}

func (contextPicker) scenario(d *Document) string {
	if len(d.Scenarios) == 0 {
		return ""
	}
	return d.Scenarios[len(d.Scenarios)-1].Text
}

func (contextPicker) table(d *Document) string {
	tables := d.Tables()
	if len(tables) == 0 {
		return ""
	}
	return FormatTable(tables[len(tables)-1].Rows)
}

// BuildChunks assembles the retrieval units for a structured document:
// one chunk per question combining its scenario/table context, followed
// by standalone chunks for scenarios not already contained in an earlier
// chunk's text.
func BuildChunks(d *Document) []Chunk {
	var chunks []Chunk
	var pick contextPicker

	for _, q := range d.Questions {
		var parts []string

		if q.HasScenario {
			if s := pick.scenario(d); s != "" {
				parts = append(parts, scenarioHeader+s)
			}
		}
		if q.HasTable {
			if t := pick.table(d); t != "" {
				parts = append(parts, tableHeader+t)
			}
		}
		parts = append(parts, questionHeader+q.Text)

		chunks = append(chunks, Chunk{
			Text: strings.Join(parts, "\n\n"),
			Metadata: ChunkMeta{
				Type:         TypeQuestion,
				QuestionID:   q.ID,
				HasScenario:  q.HasScenario,
				HasTable:     q.HasTable,
				HasImage:     q.HasImage,
				QuestionOnly: q.Text,
			},
		})
	}

	// Standalone scenario chunks, skipping any scenario whose text is
	// already a substring of a chunk produced so far (covers both
	// question chunks and earlier overlapping scenarios).
	for _, s := range d.Scenarios {
		if containedInAny(s.Text, chunks) {
			continue
		}
		chunks = append(chunks, Chunk{
			Text: backgroundHeader + s.Text,
			Metadata: ChunkMeta{
				Type: TypeScenario,
				Page: s.Page,
			},
		})
	}

	return chunks
}

func containedInAny(text string, chunks []Chunk) bool {
	for _, c := range chunks {
		if strings.Contains(c.Text, text) {
			return true
		}
	}
	return false
}

// FormatTable renders a cell grid as readable text: rows joined with
// newlines, cells joined with " | ", blank cells rendered empty.
func FormatTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = strings.Join(row, " | ")
	}
	return strings.Join(lines, "\n")
}
