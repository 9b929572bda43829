package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docsearch/internal/agent"
	"github.com/ziadkadry99/docsearch/internal/chunker"
	"github.com/ziadkadry99/docsearch/internal/config"
	"github.com/ziadkadry99/docsearch/internal/embeddings"
	"github.com/ziadkadry99/docsearch/internal/llm"
	"github.com/ziadkadry99/docsearch/internal/loader"
	"github.com/ziadkadry99/docsearch/internal/progress"
	"github.com/ziadkadry99/docsearch/internal/rag"
	"github.com/ziadkadry99/docsearch/internal/search"
	"github.com/ziadkadry99/docsearch/internal/vectordb"
)

// loadConfig loads and validates the config, then applies its log level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `docsearch init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	setupLogger(cfg.LogLevel)
	return cfg, nil
}

// hasOpenAICredentials reports whether an OpenAI-compatible key is available.
func hasOpenAICredentials(cfg *config.Config) bool {
	if os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI)) != "" {
		return true
	}
	return cfg.BaseURL != "" && os.Getenv("GITHUB_TOKEN") != ""
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
// Without OpenAI credentials the offline hashing embedder is used instead.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == config.ProviderOpenAI && !hasOpenAICredentials(cfg) {
		slog.Warn("OPENAI_API_KEY not set, using offline hashing embeddings")
		provider = config.ProviderHashing
	}

	baseURL := ""
	if provider == cfg.Provider {
		baseURL = cfg.BaseURL
	}
	return embeddings.NewEmbedder(string(provider), cfg.EmbeddingModel, baseURL, cfg.EmbeddingDimensions)
}

// createLLMProviderFromConfig creates the answer model provider, rate limited
// when requests_per_minute is set. Without OpenAI credentials the offline
// extractive provider is used instead.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	providerType := cfg.Provider
	if providerType == config.ProviderOpenAI && !hasOpenAICredentials(cfg) {
		slog.Warn("OPENAI_API_KEY not set, using the offline extractive answer model")
		providerType = config.ProviderExtractive
	}

	provider, err := llm.NewProvider(string(providerType), cfg.Model, cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	return llm.NewRateLimitedProvider(provider, cfg.RequestsPerMinute), nil
}

// buildService wires store, embedder, model, engine and agent from cfg.
func buildService(cfg *config.Config) (*search.Service, error) {
	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	provider, err := createLLMProviderFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}

	store, err := vectordb.New(string(cfg.VectorStore), cfg.EmbeddingDimensions)
	if err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}

	ch, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("creating chunker: %w", err)
	}

	logger := slog.Default()
	gen := llm.NewGenerator(provider, cfg.Model, cfg.GenerateTimeout(), cfg.Temperature)
	engine := rag.NewEngine(store, embedder, gen, ch, rag.Options{
		EmbedTimeout: cfg.EmbedTimeout(),
		Logger:       logger,
	})
	ag := agent.New(engine, gen, agent.Options{
		TopK:            cfg.TopK,
		SummaryTopK:     cfg.SummaryTopK,
		EvidenceLimit:   cfg.EvidenceLimit,
		MaxExcerptChars: cfg.MaxExcerptChars,
		MaxConcurrency:  cfg.MaxConcurrency,
		Logger:          logger,
	})

	logger.Debug("service ready",
		"provider", provider.Name(),
		"embedder", embedder.Name(),
		"vector_store", cfg.VectorStore,
	)
	return search.NewService(engine, ag, cfg.SimpleTopK, logger), nil
}

// addIngestFlags registers the --file and --dir flags shared by commands
// that can seed the index at startup.
func addIngestFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("file", nil, "document to index at startup (repeatable)")
	cmd.Flags().StringSlice("dir", nil, "directory of .txt/.md/.text documents to index at startup (repeatable)")
}

// ingestFromFlags loads the documents named by --file and --dir and indexes
// them. A document that fails to index is reported and skipped.
func ingestFromFlags(ctx context.Context, cmd *cobra.Command, cfg *config.Config, svc *search.Service) error {
	files, _ := cmd.Flags().GetStringSlice("file")
	dirs, _ := cmd.Flags().GetStringSlice("dir")
	if len(files) == 0 && len(dirs) == 0 {
		return nil
	}

	var docs []loader.Document
	for _, f := range files {
		doc, err := loader.LoadFile(f)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}
	for _, d := range dirs {
		found, err := loader.Load(loader.Config{
			Root:    d,
			Include: cfg.Include,
			Exclude: cfg.Exclude,
		})
		if err != nil {
			return err
		}
		docs = append(docs, found...)
	}

	reporter := progress.NewReporter()
	reporter.Start(len(docs))
	for _, doc := range docs {
		n, err := svc.Ingest(ctx, doc.Text, doc.Source)
		if err != nil {
			slog.Warn("skipping document", "source", doc.Source, "error", err)
		}
		reporter.Step(doc.Source, n, err)
	}
	summary := reporter.Finish()
	slog.Info(summary.String())

	if summary.Documents == 0 && summary.Failed > 0 {
		return fmt.Errorf("no documents could be indexed")
	}
	return nil
}
