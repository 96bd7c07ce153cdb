package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Lokesh-Kollepara/studyhint"
)

var (
	flagDBPath  string
	flagDataDir string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "studyhint",
	Short: "Course-material hint chatbot",
	Long: `studyhint indexes course materials and assignments into a local
knowledge base and answers student questions with hints instead of
solutions. Assignments get structured question/scenario extraction;
lecture material is chunked plainly. Both feed hybrid vector plus
full-text retrieval.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if flagVerbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "path to the SQLite database file")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "root directory holding pdfs/materials and pdfs/assignments")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

// loadConfig merges .env/environment configuration with CLI flags.
func loadConfig() studyhint.Config {
	cfg := studyhint.LoadEnv()
	if flagDBPath != "" {
		cfg.DBPath = flagDBPath
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	return cfg
}

// openEngine builds the engine from the merged configuration.
func openEngine() (studyhint.Engine, error) {
	return studyhint.New(loadConfig())
}
