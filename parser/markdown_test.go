package parser

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMarkdownParser(t *testing.T) {
	src := `# Worksheet

Consider the following data for the quarter.

| Account | Debit |
| ------- | ----- |
| Cash    | 4,500 |

1. Prepare the journal entries.

![ledger](ledger.png)
`
	path := writeFixture(t, "worksheet.md", src)

	res, err := (&MarkdownParser{}).Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(res.Pages))
	}
	page := res.Pages[0]

	if len(page.Tables) != 1 {
		t.Fatalf("got %d tables, want 1: %+v", len(page.Tables), page.Tables)
	}
	wantRows := [][]string{{"Account", "Debit"}, {"Cash", "4,500"}}
	if len(page.Tables[0].Rows) != 2 {
		t.Fatalf("table rows = %+v, want %v", page.Tables[0].Rows, wantRows)
	}
	for i, row := range wantRows {
		for j, cell := range row {
			if page.Tables[0].Rows[i][j] != cell {
				t.Errorf("cell[%d][%d] = %q, want %q", i, j, page.Tables[0].Rows[i][j], cell)
			}
		}
	}

	if len(page.Images) != 1 {
		t.Errorf("got %d images, want 1", len(page.Images))
	}

	full := res.FullText()
	if !strings.Contains(full, "Consider the following data") {
		t.Errorf("full text missing paragraph:\n%s", full)
	}
	if !strings.Contains(full, "Prepare the journal entries.") {
		t.Errorf("full text missing list item:\n%s", full)
	}
}

func TestMarkdownParserEmpty(t *testing.T) {
	path := writeFixture(t, "empty.md", "")

	res, err := (&MarkdownParser{}).Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Pages) != 0 {
		t.Fatalf("got %d pages for empty file, want 0", len(res.Pages))
	}
}
