package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Lokesh-Kollepara/studyhint/extract"
	"github.com/Lokesh-Kollepara/studyhint/parser"
)

var flagExtractJSON bool

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Run structured extraction on an assignment and print the result",
	Long: `Parse an assignment document and show what the extraction pipeline
found: scenarios, questions with their context flags, and the retrieval
chunks that would be indexed. Useful for checking how a new assignment
will be chunked before ingesting it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		reg := parser.NewRegistry()
		res, err := reg.ParseFile(cmd.Context(), path)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}

		ex := extract.New()
		doc := ex.Structure(filepath.Base(path), res)
		chunks := ex.Chunks(doc)

		if flagExtractJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]interface{}{
				"filename":  doc.Filename,
				"scenarios": doc.Scenarios,
				"questions": doc.Questions,
				"chunks":    chunks,
			})
		}

		printExtraction(doc, chunks)
		return nil
	},
}

func init() {
	extractCmd.Flags().BoolVar(&flagExtractJSON, "json", false, "emit the extraction as JSON")
	rootCmd.AddCommand(extractCmd)
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	flagOnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func printExtraction(doc *extract.Document, chunks []extract.Chunk) {
	fmt.Println(headingStyle.Render(doc.Filename))
	fmt.Printf("%s %d pages, %d scenarios, %d questions, %d chunks\n\n",
		dimStyle.Render("summary:"),
		len(doc.Pages), len(doc.Scenarios), len(doc.Questions), len(chunks))

	if len(doc.Scenarios) > 0 {
		fmt.Println(headingStyle.Render("Scenarios"))
		for i, s := range doc.Scenarios {
			fmt.Printf("%s %s\n", labelStyle.Render(fmt.Sprintf("[%d] page %d:", i+1, s.Page)), truncate(s.Text, 120))
		}
		fmt.Println()
	}

	if len(doc.Questions) > 0 {
		fmt.Println(headingStyle.Render("Questions"))
		for _, q := range doc.Questions {
			fmt.Printf("%s %s%s\n",
				labelStyle.Render(q.ID),
				truncate(q.Text, 100),
				flagMarkers(q))
		}
	}
}

func flagMarkers(q extract.Question) string {
	var marks string
	if q.HasScenario {
		marks += " " + flagOnStyle.Render("[scenario]")
	}
	if q.HasTable {
		marks += " " + flagOnStyle.Render("[table]")
	}
	if q.HasImage {
		marks += " " + flagOnStyle.Render("[image]")
	}
	return marks
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
