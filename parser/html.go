package parser

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html"
)

// HTMLParser handles HTML files: content elements become blocks,
// <table> elements become cell grids and <img> tags become image
// markers. Script, style and chrome elements are skipped. The whole
// file is one page.
type HTMLParser struct{}

func (p *HTMLParser) SupportedFormats() []string { return []string{"html", "htm"} }

func (p *HTMLParser) Parse(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening HTML: %w", err)
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	page := Page{Number: 1}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "img":
				page.Images = append(page.Images, Image{Page: 1, Index: len(page.Images)})
				return
			case "table":
				if rows := htmlTableGrid(n); len(rows) > 0 {
					page.Tables = append(page.Tables, Table{Page: 1, Rows: rows})
				}
				return
			case "p", "li", "blockquote", "pre",
				"h1", "h2", "h3", "h4", "h5", "h6":
				if t := htmlText(n); t != "" {
					page.Blocks = append(page.Blocks, Block{
						Page:  1,
						Index: len(page.Blocks),
						Text:  t,
					})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findElement(doc, "body"); body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	if len(page.Blocks) == 0 && len(page.Tables) == 0 && len(page.Images) == 0 {
		return &Result{Method: "html"}, nil
	}

	return &Result{
		Pages:  []Page{page},
		Method: "html",
	}, nil
}

func htmlText(n *html.Node) string {
	var sb strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(sb.String())
}

// htmlTableGrid flattens tr/th/td structure into cell strings,
// descending through thead/tbody wrappers.
func htmlTableGrid(table *html.Node) [][]string {
	var rows [][]string
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var row []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					row = append(row, htmlText(c))
				}
			}
			if len(row) > 0 {
				rows = append(rows, row)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(table)
	return rows
}

func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if e := findElement(c, name); e != nil {
			return e
		}
	}
	return nil
}
