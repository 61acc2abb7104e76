package main

import (
	"github.com/spf13/cobra"
)

var collectionsBase string

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Rank the sections of every collection under a base directory",
	Long: `Process every "Collection*" directory under --base. Each collection holds
challenge1b_input.json (documents, persona, job to be done) and its documents
under PDFs/. The ranked result is written to challenge1b_output.json in the
same directory.

Examples:
  docrank collections --base .`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		analyzer, err := newAnalyzer(loadConfig(), log)
		if err != nil {
			return err
		}

		n, err := analyzer.CollectionsDir(cmd.Context(), collectionsBase)
		if err != nil {
			return err
		}
		cmd.Printf("processed %d collections under %s\n", n, collectionsBase)
		return nil
	},
}

func init() {
	collectionsCmd.Flags().StringVar(&collectionsBase, "base", ".", "directory containing Collection* subdirectories")
}
