// Package rag implements the retrieval engine: ingesting documents into the
// vector store, nearest-chunk retrieval and the simple grounded-answer path.
package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/docsearch/internal/chunker"
	"github.com/ziadkadry99/docsearch/internal/embeddings"
	"github.com/ziadkadry99/docsearch/internal/llm"
	"github.com/ziadkadry99/docsearch/internal/vectordb"
)

var (
	// ErrInvalidSource is returned when a document is ingested without a source name.
	ErrInvalidSource = errors.New("source name is required")

	// ErrEmptyQuery is returned when the query text is blank.
	ErrEmptyQuery = errors.New("query text is required")
)

// Answers returned without error when retrieval has nothing to offer.
const (
	NoDocumentsAnswer = "No documents have been indexed yet. Upload a document first."
	NotFoundAnswer    = "I couldn't find any relevant information in the documents."
)

// GroundingInstruction constrains the model to the retrieved context.
const GroundingInstruction = "You are a helpful assistant that answers questions about the user's documents. " +
	"Answer only from the provided context. If the context is insufficient to answer, say so explicitly. " +
	"Be concise and accurate."

// Retriever is the retrieval primitive exposed to the agent as a tool.
// It never calls the language model.
type Retriever interface {
	Query(ctx context.Context, text string, k int) ([]vectordb.ScoredChunk, error)
}

// Options tunes the engine.
type Options struct {
	EmbedTimeout time.Duration
	Logger       *slog.Logger
}

// Engine owns the path from raw text to stored chunks and from a question to
// ranked chunks or a grounded answer.
type Engine struct {
	store     vectordb.Store
	embedder  embeddings.Embedder
	generator *llm.Generator
	chunker   *chunker.Chunker
	timeout   time.Duration
	logger    *slog.Logger
}

// NewEngine wires the engine's collaborators.
func NewEngine(store vectordb.Store, embedder embeddings.Embedder, generator *llm.Generator, ch *chunker.Chunker, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:     store,
		embedder:  embedder,
		generator: generator,
		chunker:   ch,
		timeout:   opts.EmbedTimeout,
		logger:    logger,
	}
}

// Store returns the engine's vector store.
func (e *Engine) Store() vectordb.Store { return e.store }

// Ingest chunks text, embeds every chunk in one batch and inserts the batch.
// It returns the number of chunks indexed.
func (e *Engine) Ingest(ctx context.Context, text, source string) (int, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return 0, ErrInvalidSource
	}

	texts, err := e.chunker.Split(text)
	if err != nil {
		return 0, fmt.Errorf("chunking %s: %w", source, err)
	}

	vectors, err := e.embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding %s: %w", source, err)
	}

	chunks := make([]vectordb.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = vectordb.Chunk{
			ID:       uuid.NewString(),
			Text:     t,
			Source:   source,
			Position: i,
			Vector:   vectors[i],
		}
	}

	n, err := e.store.Insert(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("indexing %s: %w", source, err)
	}

	e.logger.Info("document indexed", "source", source, "chunks", n, "total_chunks", e.store.Count())
	return n, nil
}

// Query embeds text and returns the k most similar chunks.
func (e *Engine) Query(ctx context.Context, text string, k int) ([]vectordb.ScoredChunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}

	vectors, err := e.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	results, err := e.store.Search(ctx, vectors[0], k)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("retrieval", "query", text, "k", k, "results", len(results))
	return results, nil
}

// embed calls the embedder under the configured timeout. Every failure is
// reported as ErrEmbeddingUnavailable.
func (e *Engine) embed(ctx context.Context, texts []string) ([][]float32, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	vectors, err := e.embedder.Embed(ctx, texts)
	if err != nil {
		if errors.Is(err, embeddings.ErrEmbeddingUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", embeddings.ErrEmbeddingUnavailable, e.embedder.Name(), err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: %s returned %d vectors for %d texts", embeddings.ErrEmbeddingUnavailable, e.embedder.Name(), len(vectors), len(texts))
	}
	return vectors, nil
}
