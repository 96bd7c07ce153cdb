package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Lokesh-Kollepara/studyhint"
)

var flagAssignment bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Index course material into the knowledge base",
	Long: `Ingest a single document or scan a data directory.

With a file argument the document is indexed as lecture material, or as
an assignment when --assignment is set. With a directory argument (or no
argument, using the configured data dir) the conventional layout is
scanned: <dir>/pdfs/materials and <dir>/pdfs/assignments.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		cfg := loadConfig()
		path := cfg.DataDir
		if len(args) == 1 {
			path = args[0]
		}

		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		if info.IsDir() {
			report, err := engine.IngestDir(cmd.Context(), path)
			if err != nil {
				return err
			}
			printIngestReport(report)
			return nil
		}

		if flagAssignment {
			_, err = engine.IngestAssignment(cmd.Context(), path)
		} else {
			_, err = engine.IngestMaterial(cmd.Context(), path)
		}
		if err != nil {
			return err
		}
		fmt.Println(okStyle.Render("✓ " + path))
		return nil
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&flagAssignment, "assignment", false, "index the file as an assignment with structured extraction")
	rootCmd.AddCommand(ingestCmd)
}

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	labelStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func printIngestReport(report *studyhint.IngestReport) {
	fmt.Printf("%s %d\n", labelStyle.Render("Materials loaded:"), report.MaterialsLoaded)
	fmt.Printf("%s %d\n", labelStyle.Render("Assignments loaded:"), report.AssignmentsLoaded)
	if report.Skipped > 0 {
		fmt.Printf("%s %d\n", dimStyle.Render("Skipped:"), report.Skipped)
	}
	for _, e := range report.Errors {
		fmt.Println(errStyle.Render("✗ " + e))
	}
}
