package parser

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// TextParser handles plain text files. Paragraphs separated by blank
// lines become blocks on a single page.
type TextParser struct{}

func (p *TextParser) SupportedFormats() []string { return []string{"txt"} }

func (p *TextParser) Parse(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading text file: %w", err)
	}

	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	page := Page{Number: 1}

	for _, para := range strings.Split(content, "\n\n") {
		var lines []string
		for _, l := range strings.Split(para, "\n") {
			if l = cleanLine(l); l != "" {
				lines = append(lines, l)
			}
		}
		if len(lines) == 0 {
			continue
		}
		page.Blocks = append(page.Blocks, Block{
			Page:  1,
			Index: len(page.Blocks),
			Text:  strings.Join(lines, "\n"),
		})
	}

	if len(page.Blocks) == 0 {
		return &Result{Method: "text"}, nil
	}

	return &Result{
		Pages:  []Page{page},
		Method: "text",
	}, nil
}
