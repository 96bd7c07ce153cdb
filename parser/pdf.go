package parser

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFParser extracts per-page layout from native PDFs via text rows.
// Scanned PDFs without a text layer produce no blocks; those files need
// OCR upstream, which is out of scope here.
type PDFParser struct{}

func (p *PDFParser) SupportedFormats() []string { return []string{"pdf"} }

func (p *PDFParser) Parse(ctx context.Context, path string) (*Result, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	totalPages := reader.NumPage()
	pages := make([]Page, 0, totalPages)

	for i := 1; i <= totalPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		out := Page{Number: i}

		rows, err := page.GetTextByRow()
		if err == nil {
			raw := rowsToLines(rows)
			for _, group := range groupLines(raw) {
				if b, ok := groupToBlock(i, len(out.Blocks), group); ok {
					out.Blocks = append(out.Blocks, b)
					if cells := tableCells(group); cells != nil {
						out.Tables = append(out.Tables, Table{
							Page: i,
							Rows: cells,
							BBox: b.BBox,
						})
					}
				}
			}
		}
		out.Images = pageImages(i, page)

		if len(out.Blocks) == 0 && len(out.Images) == 0 {
			continue
		}
		pages = append(pages, out)
	}

	return &Result{
		Pages:  pages,
		Method: "native",
		Metadata: map[string]string{
			"total_pages": fmt.Sprintf("%d", totalPages),
		},
	}, nil
}

// pdfLine is one text row flattened to a string. Wide horizontal gaps
// between fragments become double spaces so column structure survives
// into table detection; block text later collapses them.
type pdfLine struct {
	text string
	pos  int64
	box  Rect
}

func rowsToLines(rows pdf.Rows) []pdfLine {
	var lines []pdfLine
	for _, row := range rows {
		text, box := rowLine(row)
		if strings.TrimSpace(text) == "" {
			continue
		}
		lines = append(lines, pdfLine{text: text, pos: row.Position, box: box})
	}
	return lines
}

func rowLine(row *pdf.Row) (string, Rect) {
	frags := make([]pdf.Text, len(row.Content))
	copy(frags, row.Content)
	sort.Slice(frags, func(a, b int) bool { return frags[a].X < frags[b].X })

	var sb strings.Builder
	var box Rect
	prevEnd := 0.0
	for i, t := range frags {
		if i == 0 {
			box = Rect{X0: t.X, Y0: t.Y, X1: t.X + t.W, Y1: t.Y + t.FontSize}
		} else {
			gap := t.X - prevEnd
			wide := t.FontSize
			if wide < 6 {
				wide = 6
			}
			switch {
			case gap > wide:
				sb.WriteString("  ")
			case gap > 1:
				sb.WriteString(" ")
			}
			if t.X+t.W > box.X1 {
				box.X1 = t.X + t.W
			}
			if t.Y+t.FontSize > box.Y1 {
				box.Y1 = t.Y + t.FontSize
			}
			if t.Y < box.Y0 {
				box.Y0 = t.Y
			}
		}
		sb.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	return sb.String(), box
}

// groupLines splits a page's rows into layout blocks. Rows arrive
// top-down; a vertical gap clearly larger than the typical line leading
// starts a new block, approximating the paragraph blocks a full layout
// engine would report.
func groupLines(lines []pdfLine) [][]pdfLine {
	if len(lines) == 0 {
		return nil
	}

	limit := gapLimit(lines)

	var groups [][]pdfLine
	current := []pdfLine{lines[0]}
	for i := 1; i < len(lines); i++ {
		if lines[i-1].pos-lines[i].pos > limit {
			groups = append(groups, current)
			current = nil
		}
		current = append(current, lines[i])
	}
	return append(groups, current)
}

// gapLimit derives the block-break threshold from the median inter-row
// gap on the page, with a floor for sparse pages.
func gapLimit(lines []pdfLine) int64 {
	var gaps []int64
	for i := 1; i < len(lines); i++ {
		if g := lines[i-1].pos - lines[i].pos; g > 0 {
			gaps = append(gaps, g)
		}
	}
	if len(gaps) == 0 {
		return 20
	}
	sort.Slice(gaps, func(a, b int) bool { return gaps[a] < gaps[b] })
	limit := gaps[len(gaps)/2]
	limit += limit / 2
	if limit < 20 {
		limit = 20
	}
	return limit
}

func groupToBlock(pageNum, index int, group []pdfLine) (Block, bool) {
	var texts []string
	var box Rect
	for _, l := range group {
		if t := cleanLine(l.text); t != "" {
			texts = append(texts, t)
		}
		box = box.union(l.box)
	}
	if len(texts) == 0 {
		return Block{}, false
	}
	return Block{
		Page:  pageNum,
		Index: index,
		Text:  strings.Join(texts, "\n"),
		BBox:  box,
	}, true
}

func (r Rect) union(o Rect) Rect {
	if o == (Rect{}) {
		return r
	}
	if r == (Rect{}) {
		return o
	}
	if o.X0 < r.X0 {
		r.X0 = o.X0
	}
	if o.Y0 < r.Y0 {
		r.Y0 = o.Y0
	}
	if o.X1 > r.X1 {
		r.X1 = o.X1
	}
	if o.Y1 > r.Y1 {
		r.Y1 = o.Y1
	}
	return r
}

// tableCells lifts a block into a cell grid when every line shares the
// same multi-column layout, columns being separated by wide space runs.
// Native PDF text has no table markup; alignment is the only signal.
func tableCells(group []pdfLine) [][]string {
	if len(group) < 2 {
		return nil
	}

	var rows [][]string
	cols := 0
	for _, l := range group {
		var row []string
		for _, c := range strings.Split(l.text, "  ") {
			if c = strings.TrimSpace(c); c != "" {
				row = append(row, c)
			}
		}
		if len(row) < 2 {
			return nil
		}
		if cols == 0 {
			cols = len(row)
		} else if len(row) != cols {
			return nil
		}
		rows = append(rows, row)
	}
	return rows
}

// pageImages counts image XObjects in the page's resource dictionary.
// Only presence and order matter downstream.
func pageImages(pageNum int, page pdf.Page) []Image {
	resources := page.V.Key("Resources")
	if resources.IsNull() {
		return nil
	}
	xobjects := resources.Key("XObject")
	if xobjects.IsNull() {
		return nil
	}

	names := xobjects.Keys()
	sort.Strings(names)

	var images []Image
	for _, name := range names {
		obj := xobjects.Key(name)
		if obj.Key("Subtype").Name() == "Image" {
			images = append(images, Image{Page: pageNum, Index: len(images)})
		}
	}
	return images
}
