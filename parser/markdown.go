package parser

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files via the goldmark AST. Top-level
// blocks map one-to-one onto layout blocks, GFM tables become cell
// grids and image nodes become image markers. The whole file is one
// page.
type MarkdownParser struct{}

func (p *MarkdownParser) SupportedFormats() []string { return []string{"md", "markdown"} }

func (p *MarkdownParser) Parse(ctx context.Context, path string) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading markdown: %w", err)
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(src))

	page := Page{Number: 1}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if tbl, ok := n.(*extast.Table); ok {
			if rows := mdTableGrid(tbl, src); len(rows) > 0 {
				page.Tables = append(page.Tables, Table{Page: 1, Rows: rows})
			}
			continue
		}

		page.Images = appendImageMarkers(page.Images, n)

		if t := nodeText(n, src); t != "" {
			page.Blocks = append(page.Blocks, Block{
				Page:  1,
				Index: len(page.Blocks),
				Text:  t,
			})
		}
	}

	if len(page.Blocks) == 0 && len(page.Tables) == 0 && len(page.Images) == 0 {
		return &Result{Method: "markdown"}, nil
	}

	return &Result{
		Pages:  []Page{page},
		Method: "markdown",
	}, nil
}

// nodeText gets the text content of a goldmark AST node. Blocks with
// raw source lines (paragraphs, headings) read those directly; their
// inline children cover the same segments and must not be re-read.
// Container blocks like lists recurse.
func nodeText(n ast.Node, src []byte) string {
	if n.Type() == ast.TypeBlock {
		if lines := n.Lines(); lines.Len() > 0 {
			var buf bytes.Buffer
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(src))
			}
			return strings.TrimSpace(buf.String())
		}
	}

	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			continue
		}
		if s := nodeText(c, src); s != "" {
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(s)
		}
	}
	return strings.TrimSpace(buf.String())
}

func mdTableGrid(tbl *extast.Table, src []byte) [][]string {
	var rows [][]string
	for r := tbl.FirstChild(); r != nil; r = r.NextSibling() {
		var row []string
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			row = append(row, nodeText(c, src))
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

// appendImageMarkers records one marker per image node under n.
func appendImageMarkers(images []Image, n ast.Node) []Image {
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if _, ok := node.(*ast.Image); ok {
				images = append(images, Image{Page: 1, Index: len(images)})
			}
		}
		return ast.WalkContinue, nil
	})
	return images
}
