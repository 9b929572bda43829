package rag

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/docsearch/internal/chunker"
	"github.com/ziadkadry99/docsearch/internal/embeddings"
	"github.com/ziadkadry99/docsearch/internal/llm"
	"github.com/ziadkadry99/docsearch/internal/vectordb"
)

type failingEmbedder struct{ err error }

func (f failingEmbedder) Embed(context.Context, []string) ([][]float32, error) { return nil, f.err }
func (f failingEmbedder) Dimensions() int                                       { return 8 }
func (f failingEmbedder) Name() string                                          { return "failing" }

type slowEmbedder struct{ delay time.Duration }

func (s slowEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.delay):
		return make([][]float32, len(texts)), nil
	}
}
func (s slowEmbedder) Dimensions() int { return 8 }
func (s slowEmbedder) Name() string    { return "slow" }

type recordingProvider struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
}

func (p *recordingProvider) Name() string { return "recording" }

func (p *recordingProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, req.Messages[len(req.Messages)-1].Content)
	if p.err != nil {
		return nil, p.err
	}
	return &llm.CompletionResponse{Content: p.reply}, nil
}

func (p *recordingProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}

func newEngine(t *testing.T, embedder embeddings.Embedder, provider llm.Provider) *Engine {
	t.Helper()
	ch, err := chunker.New(chunker.DefaultSize, chunker.DefaultOverlap)
	require.NoError(t, err)
	gen := llm.NewGenerator(provider, "", time.Second, 0)
	return NewEngine(vectordb.NewMemoryStore(0), embedder, gen, ch, Options{EmbedTimeout: 50 * time.Millisecond})
}

func TestIngest(t *testing.T) {
	e := newEngine(t, embeddings.NewHashingEmbedder(0), llm.NewExtractiveProvider())
	ctx := context.Background()

	n, err := e.Ingest(ctx, "Refunds are accepted within 30 days of purchase.", "refund.txt")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, e.Store().Count())
	assert.Equal(t, []string{"refund.txt"}, e.Store().Sources())

	long := strings.Repeat("Policies are reviewed every quarter by the support team. ", 40)
	n, err = e.Ingest(ctx, long, "policies.md")
	require.NoError(t, err)
	assert.Greater(t, n, 1)
	assert.Equal(t, 1+n, e.Store().Count())
}

func TestIngest_Errors(t *testing.T) {
	ctx := context.Background()

	e := newEngine(t, embeddings.NewHashingEmbedder(0), llm.NewExtractiveProvider())
	_, err := e.Ingest(ctx, "   \n\t", "blank.txt")
	assert.ErrorIs(t, err, chunker.ErrEmptyDocument)

	_, err = e.Ingest(ctx, "text", "  ")
	assert.ErrorIs(t, err, ErrInvalidSource)

	down := newEngine(t, failingEmbedder{err: errors.New("connection refused")}, llm.NewExtractiveProvider())
	_, err = down.Ingest(ctx, "some text", "a.txt")
	assert.ErrorIs(t, err, embeddings.ErrEmbeddingUnavailable)
	assert.Zero(t, down.Store().Count())
}

func TestQuery_EmbedTimeout(t *testing.T) {
	e := newEngine(t, slowEmbedder{delay: time.Second}, llm.NewExtractiveProvider())

	start := time.Now()
	_, err := e.Query(context.Background(), "anything", 3)
	assert.ErrorIs(t, err, embeddings.ErrEmbeddingUnavailable)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestQuery_Errors(t *testing.T) {
	e := newEngine(t, embeddings.NewHashingEmbedder(0), llm.NewExtractiveProvider())

	_, err := e.Query(context.Background(), "refunds", 3)
	assert.ErrorIs(t, err, vectordb.ErrEmptyStore)

	_, err = e.Query(context.Background(), " ", 3)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestGenerateAnswer_Grounded(t *testing.T) {
	e := newEngine(t, embeddings.NewHashingEmbedder(0), llm.NewExtractiveProvider())
	ctx := context.Background()

	_, err := e.Ingest(ctx, "Refunds are accepted within 30 days of purchase.", "refund.txt")
	require.NoError(t, err)

	ans, err := e.GenerateAnswer(ctx, "What is the refund window?", 3)
	require.NoError(t, err)
	assert.Contains(t, ans.Answer, "30 days")
	assert.Equal(t, []string{"refund.txt"}, ans.Sources)
	assert.Equal(t, []string{"Refunds are accepted within 30 days of purchase."}, ans.Context)
}

func TestGenerateAnswer_EmptyStore(t *testing.T) {
	provider := &recordingProvider{reply: "should not be used"}
	e := newEngine(t, embeddings.NewHashingEmbedder(0), provider)

	ans, err := e.GenerateAnswer(context.Background(), "anything?", 3)
	require.NoError(t, err)
	assert.Equal(t, NoDocumentsAnswer, ans.Answer)
	assert.Empty(t, ans.Sources)
	assert.Zero(t, provider.calls())
}

func TestGenerateAnswer_ZeroK(t *testing.T) {
	provider := &recordingProvider{reply: "should not be used"}
	e := newEngine(t, embeddings.NewHashingEmbedder(0), provider)
	_, err := e.Ingest(context.Background(), "Some content.", "a.txt")
	require.NoError(t, err)

	ans, err := e.GenerateAnswer(context.Background(), "content?", 0)
	require.NoError(t, err)
	assert.Equal(t, NotFoundAnswer, ans.Answer)
	assert.Zero(t, provider.calls())
}

func TestGenerateAnswer_GenerationFailure(t *testing.T) {
	provider := &recordingProvider{err: errors.New("503 upstream")}
	e := newEngine(t, embeddings.NewHashingEmbedder(0), provider)
	_, err := e.Ingest(context.Background(), "Some content.", "a.txt")
	require.NoError(t, err)

	_, err = e.GenerateAnswer(context.Background(), "content?", 3)
	assert.ErrorIs(t, err, llm.ErrGenerationUnavailable)
}

func TestGenerateAnswer_PromptCarriesContextAndQuestion(t *testing.T) {
	provider := &recordingProvider{reply: "ok"}
	e := newEngine(t, embeddings.NewHashingEmbedder(0), provider)
	ctx := context.Background()
	_, err := e.Ingest(ctx, "Cancellations must occur 24 hours before service.", "cancel.txt")
	require.NoError(t, err)

	_, err = e.GenerateAnswer(ctx, "When can I cancel?", 3)
	require.NoError(t, err)
	require.Equal(t, 1, provider.calls())
	assert.Contains(t, provider.prompts[0], "Source: cancel.txt")
	assert.Contains(t, provider.prompts[0], "Question: When can I cancel?")
}

func TestSourcesOf(t *testing.T) {
	chunks := []vectordb.ScoredChunk{
		{Chunk: vectordb.Chunk{Source: "b.txt"}},
		{Chunk: vectordb.Chunk{Source: "a.txt"}},
		{Chunk: vectordb.Chunk{Source: "b.txt"}},
	}
	assert.Equal(t, []string{"b.txt", "a.txt"}, SourcesOf(chunks))
	assert.Empty(t, SourcesOf(nil))
}
