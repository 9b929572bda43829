package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docsearch/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a docsearch configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose the answer model, embeddings and vector store, and writes the result to the config file (default .docsearch.yml).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
