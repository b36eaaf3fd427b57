package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var question string

var askCmd = &cobra.Command{
	Use:   "ask -q QUESTION FILE_OR_DIR...",
	Short: "Index documents and answer a single question",
	Example: `  scholar-chat ask -q "What dataset was used?" paper.pdf
  scholar-chat ask --json -k 6 -q "Summarize the results" ./papers`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if question == "" {
			return fmt.Errorf("a question is required, pass it with --question")
		}

		ctx := cmd.Context()
		sess, err := newSession(ctx)
		if err != nil {
			return err
		}
		if err := processFiles(ctx, cmd.OutOrStdout(), sess, args); err != nil {
			return err
		}

		result, err := sess.Ask(ctx, question)
		if err != nil {
			return err
		}
		printAnswer(cmd.OutOrStdout(), result)
		return nil
	},
}

func init() {
	askCmd.Flags().StringVarP(&question, "question", "q", "", "question to answer")
}
