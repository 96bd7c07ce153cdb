package parser

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Word documents have no fixed pages,
// so the whole document maps to a single page inventory: paragraphs
// become blocks, word tables become cell grids and inline drawings
// become image markers.
type DOCXParser struct{}

func (p *DOCXParser) SupportedFormats() []string { return []string{"docx"} }

func (p *DOCXParser) Parse(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening DOCX: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat DOCX: %w", err)
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("parsing DOCX: %w", err)
	}

	page := Page{Number: 1}

	for _, item := range doc.Document.Body.Items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch v := item.(type) {
		case *docx.Paragraph:
			text, drawings := paragraphContent(v)
			if text != "" {
				page.Blocks = append(page.Blocks, Block{
					Page:  1,
					Index: len(page.Blocks),
					Text:  text,
				})
			}
			for i := 0; i < drawings; i++ {
				page.Images = append(page.Images, Image{Page: 1, Index: len(page.Images)})
			}

		case *docx.Table:
			if rows := tableGrid(v); len(rows) > 0 {
				page.Tables = append(page.Tables, Table{Page: 1, Rows: rows})
			}
		}
	}

	if len(page.Blocks) == 0 && len(page.Tables) == 0 && len(page.Images) == 0 {
		return &Result{Method: "docx"}, nil
	}

	return &Result{
		Pages:  []Page{page},
		Method: "docx",
	}, nil
}

// paragraphContent returns the paragraph's run text and the number of
// embedded drawings.
func paragraphContent(para *docx.Paragraph) (string, int) {
	var sb strings.Builder
	drawings := 0
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			switch t := rc.(type) {
			case *docx.Text:
				sb.WriteString(t.Text)
			case *docx.Drawing:
				drawings++
			}
		}
	}
	return strings.TrimSpace(sb.String()), drawings
}

// tableGrid flattens a word table into cell strings. Cell paragraphs
// are joined with single newlines.
func tableGrid(tbl *docx.Table) [][]string {
	var rows [][]string
	for _, tr := range tbl.TableRows {
		var row []string
		for _, tc := range tr.TableCells {
			var parts []string
			for _, para := range tc.Paragraphs {
				if text, _ := paragraphContent(para); text != "" {
					parts = append(parts, text)
				}
			}
			row = append(row, strings.Join(parts, "\n"))
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}
