package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Registry maps file formats to parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry returns a registry with all built-in parsers registered.
func NewRegistry() *Registry {
	r := &Registry{parsers: make(map[string]Parser)}

	builtins := []Parser{
		&PDFParser{},
		&DOCXParser{},
		&XLSXParser{},
		&MarkdownParser{},
		&HTMLParser{},
		&TextParser{},
	}
	for _, p := range builtins {
		for _, f := range p.SupportedFormats() {
			r.parsers[f] = p
		}
	}
	return r
}

// Get returns the parser for a format, e.g. "pdf".
func (r *Registry) Get(format string) (Parser, error) {
	p, ok := r.parsers[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("no parser for format: %s", format)
	}
	return p, nil
}

// Register adds or replaces the parser for a format.
func (r *Registry) Register(format string, p Parser) {
	r.parsers[strings.ToLower(format)] = p
}

// Formats returns the registered format names, unordered.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.parsers))
	for f := range r.parsers {
		out = append(out, f)
	}
	return out
}

// ParseFile resolves the parser from the file extension and runs it.
func (r *Registry) ParseFile(ctx context.Context, path string) (*Result, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	p, err := r.Get(ext)
	if err != nil {
		return nil, err
	}
	return p.Parse(ctx, path)
}
