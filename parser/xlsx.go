package parser

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXParser handles spreadsheets. Each sheet maps to one page carrying
// a single cell grid; spreadsheets contribute tables, not prose blocks.
type XLSXParser struct{}

func (p *XLSXParser) SupportedFormats() []string { return []string{"xlsx", "xls"} }

func (p *XLSXParser) Parse(ctx context.Context, path string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening XLSX: %w", err)
	}
	defer f.Close()

	var pages []Page
	sheets := f.GetSheetList()

	for i, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}

		pages = append(pages, Page{
			Number: i + 1,
			Tables: []Table{{Page: i + 1, Rows: rows}},
		})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("no data found in XLSX")
	}

	return &Result{
		Pages:  pages,
		Method: "xlsx",
		Metadata: map[string]string{
			"sheet_count": fmt.Sprintf("%d", len(sheets)),
		},
	}, nil
}
