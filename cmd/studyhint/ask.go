package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var flagSessionID string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a one-shot question and print the hint",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		question := strings.Join(args, " ")
		result, err := engine.Ask(cmd.Context(), flagSessionID, question)
		if err != nil {
			return err
		}

		fmt.Println(result.Response)
		if len(result.Sources) > 0 {
			fmt.Println()
			fmt.Println(headingStyle.Render("Sources"))
			for _, s := range result.Sources {
				line := fmt.Sprintf("%s (%s", s.Filename, s.ChunkType)
				if s.QuestionID != "" {
					line += " " + s.QuestionID
				}
				line += ")"
				fmt.Println(dimStyle.Render("- " + line))
				if s.Snippet != "" {
					fmt.Println("  " + truncate(s.Snippet, 200))
				}
			}
		}
		fmt.Println()
		fmt.Println(dimStyle.Render("session: " + result.SessionID))
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&flagSessionID, "session", "", "continue an existing chat session")
	rootCmd.AddCommand(askCmd)
}
