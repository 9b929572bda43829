package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docsearch/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "docsearch",
	Short: "Semantic and agentic search over your documents",
	Long: `docsearch indexes plain-text documents into an in-memory vector store and
answers questions about them. Simple mode retrieves the closest chunks and
asks a language model for a grounded answer. Agentic mode classifies the
question, plans sub-queries, runs them in parallel and returns an answer with
evidence and a confidence score.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A .env file is optional.
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}
		setupLogger("info")
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".docsearch.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// setupLogger installs a text slog handler on stderr. --verbose forces debug.
// Stdout is left alone so the MCP transport stays clean.
func setupLogger(level string) {
	lvl, _ := config.ParseLogLevel(level)
	if verbose {
		lvl = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
