package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docsearch/internal/eval"
	"github.com/ziadkadry99/docsearch/internal/search"
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Run evaluation questions against the indexed documents",
	Long: `Indexes the documents named by --file/--dir, then runs every question in the
cases file. Each case checks that retrieval ranks the expected source first and
that the answer mentions the expected keyword, and reports retrieval and answer
timings.`,
	Example: `  docsearch eval --dir testdata/docs --cases testdata/eval/cases.yaml
  docsearch eval --dir ./policies --cases cases.yaml --strict`,
	Args: cobra.NoArgs,
	RunE: runEvalCmd,
}

func init() {
	evalCmd.Flags().String("cases", "testdata/eval/cases.yaml", "YAML file of evaluation cases")
	evalCmd.Flags().Int("top-k", 0, "chunks retrieved per question (default simple_top_k)")
	evalCmd.Flags().Bool("strict", false, "exit with an error unless every case passes")
	addIngestFlags(evalCmd)
	rootCmd.AddCommand(evalCmd)
}

func runEvalCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	casesPath, _ := cmd.Flags().GetString("cases")
	topK, _ := cmd.Flags().GetInt("top-k")
	strict, _ := cmd.Flags().GetBool("strict")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if topK <= 0 {
		topK = cfg.SimpleTopK
	}
	svc, err := buildService(cfg)
	if err != nil {
		return err
	}
	if err := ingestFromFlags(ctx, cmd, cfg, svc); err != nil {
		return err
	}
	return runEvaluation(ctx, os.Stdout, svc, casesPath, topK, strict)
}

// runEvaluation loads the cases, runs them and writes the report to w.
func runEvaluation(ctx context.Context, w io.Writer, svc *search.Service, casesPath string, topK int, strict bool) error {
	cases, err := eval.LoadCases(casesPath)
	if err != nil {
		return err
	}

	results := eval.NewRunner(svc, topK, slog.Default()).Run(ctx, cases)
	eval.WriteReport(w, results)

	if summary := eval.Summarize(results); summary.Errors > 0 {
		return fmt.Errorf("%d evaluation case(s) failed to run", summary.Errors)
	}
	if strict {
		return eval.Check(results)
	}
	return nil
}
