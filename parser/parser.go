package parser

import (
	"context"
	"strings"
)

// Rect is a layout bounding box in page coordinates. The extraction
// pipeline treats it as opaque pass-through data.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Block is one layout-extracted unit of text on a page.
type Block struct {
	Page  int    // 1-based page number
	Index int    // order of the block on its page
	Text  string // trimmed block text; internal lines joined with \n
	BBox  Rect
}

// Table is a 2-D grid of cell strings extracted from a page.
type Table struct {
	Page int
	Rows [][]string
	BBox Rect
}

// Image records that an image exists at a position; pixel data is not
// carried through the pipeline.
type Image struct {
	Page  int
	Index int
}

// Page is the per-page layout inventory a parser produces.
type Page struct {
	Number int
	Blocks []Block
	Tables []Table
	Images []Image
}

// Result is what a parser produces from a document file.
type Result struct {
	Pages    []Page
	Method   string // "native", "docx", "xlsx", ...
	Metadata map[string]string
}

// Parser can parse a specific document format.
type Parser interface {
	Parse(ctx context.Context, path string) (*Result, error)
	SupportedFormats() []string
}

// FullText concatenates all block texts in page-major, block-minor
// order, with blocks separated by a blank line.
func (r *Result) FullText() string {
	var parts []string
	for _, p := range r.Pages {
		for _, b := range p.Blocks {
			if b.Text != "" {
				parts = append(parts, b.Text)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

// Tables returns every table in the document in page order.
func (r *Result) Tables() []Table {
	var tables []Table
	for _, p := range r.Pages {
		tables = append(tables, p.Tables...)
	}
	return tables
}

// Images returns every image marker in the document in page order.
func (r *Result) Images() []Image {
	var images []Image
	for _, p := range r.Pages {
		images = append(images, p.Images...)
	}
	return images
}
