package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docsearch/internal/search"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions interactively",
	Long:  `Indexes the documents named by --file/--dir, then answers questions in a loop until you type "exit" or press Ctrl+C.`,
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().String("mode", "", "search mode: simple or agentic (prompted when empty)")
	addIngestFlags(chatCmd)
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

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

	mode, _ := cmd.Flags().GetString("mode")
	if mode == "" {
		modePrompt := promptui.Select{
			Label: "Select search mode",
			Items: []string{string(search.ModeSimple), string(search.ModeAgentic)},
		}
		if _, mode, err = modePrompt.Run(); err != nil {
			return fmt.Errorf("mode selection: %w", err)
		}
	}
	if _, err := search.ParseMode(mode); err != nil {
		return err
	}

	fmt.Printf("Indexed %d chunks from %d sources. Type \"exit\" to quit.\n\n",
		svc.Engine().Store().Count(), len(svc.Engine().Store().Sources()))

	for {
		questionPrompt := promptui.Prompt{Label: "Question"}
		question, err := questionPrompt.Run()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading question: %w", err)
		}

		question = strings.TrimSpace(question)
		switch strings.ToLower(question) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		resp, err := svc.Search(ctx, question, mode)
		if err != nil {
			// Keep the session alive; the next question may succeed.
			slog.Error("search failed", "error", err, "kind", search.Classify(err))
			continue
		}
		if err := printResponse(os.Stdout, resp, false); err != nil {
			return err
		}
		fmt.Println()
	}
}
