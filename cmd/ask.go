package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docsearch/internal/vectordb"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask one question about the indexed documents",
	Long: `Indexes the documents named by --file/--dir, answers a single question and
exits. Use --mode agentic for intent detection, planning and evidence, or
--chunks to print the retrieved chunks without generating an answer.`,
	Example: `  docsearch ask --dir ./policies "What is the refund window?"
  docsearch ask --file refund.txt --file cancel.txt --mode agentic "Compare refund and cancellation policies"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().String("mode", "simple", "search mode: simple or agentic")
	askCmd.Flags().Bool("json", false, "output the response as JSON")
	askCmd.Flags().Bool("chunks", false, "print retrieved chunks instead of an answer")
	askCmd.Flags().Int("limit", 5, "number of chunks to print with --chunks")
	addIngestFlags(askCmd)
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	question := strings.Join(args, " ")

	mode, _ := cmd.Flags().GetString("mode")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	chunksOnly, _ := cmd.Flags().GetBool("chunks")
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := buildService(cfg)
	if err != nil {
		return err
	}
	if err := ingestFromFlags(ctx, cmd, cfg, svc); err != nil {
		return err
	}

	if chunksOnly {
		results, err := svc.Engine().Query(ctx, question, limit)
		if errors.Is(err, vectordb.ErrEmptyStore) {
			fmt.Println("No documents indexed. Pass --file or --dir.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("retrieval failed: %w", err)
		}
		fmt.Print(vectordb.FormatResults(results))
		return nil
	}

	resp, err := svc.Search(ctx, question, mode)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return printResponse(os.Stdout, resp, jsonOutput)
}
