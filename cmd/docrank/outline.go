package main

import (
	"github.com/spf13/cobra"
)

var (
	outlineInput  string
	outlineOutput string
)

var outlineCmd = &cobra.Command{
	Use:   "outline",
	Short: "Write a title and outline JSON for every document in a directory",
	Long: `Process every supported document in --input and write <name>.json to
--output with the document's title and heading outline.

A document that cannot be read still gets a file whose title explains the
failure and whose outline is empty.

Examples:
  docrank outline --input ./input --output ./output`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		analyzer, err := newAnalyzer(loadConfig(), log)
		if err != nil {
			return err
		}

		n, err := analyzer.OutlineDir(cmd.Context(), outlineInput, outlineOutput)
		if err != nil {
			return err
		}
		cmd.Printf("wrote %d outlines to %s\n", n, outlineOutput)
		return nil
	},
}

func init() {
	outlineCmd.Flags().StringVar(&outlineInput, "input", "input", "directory of documents to read")
	outlineCmd.Flags().StringVar(&outlineOutput, "output", "output", "directory to write outline JSON files to")
}
