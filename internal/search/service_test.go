package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/docsearch/internal/agent"
	"github.com/ziadkadry99/docsearch/internal/chunker"
	"github.com/ziadkadry99/docsearch/internal/embeddings"
	"github.com/ziadkadry99/docsearch/internal/llm"
	"github.com/ziadkadry99/docsearch/internal/rag"
	"github.com/ziadkadry99/docsearch/internal/vectordb"
)

const (
	refundText = "Refunds are accepted within 30 days of purchase."
	cancelText = "Cancellations must occur 24 hours before service."
)

func newService(t *testing.T, provider llm.Provider) *Service {
	t.Helper()
	ch, err := chunker.New(chunker.DefaultSize, chunker.DefaultOverlap)
	require.NoError(t, err)

	gen := llm.NewGenerator(provider, "", 5*time.Second, 0)
	engine := rag.NewEngine(vectordb.NewMemoryStore(0), embeddings.NewHashingEmbedder(0), gen, ch, rag.Options{EmbedTimeout: 5 * time.Second})
	ag := agent.New(engine, gen, agent.Options{
		TopK:            5,
		SummaryTopK:     10,
		EvidenceLimit:   3,
		MaxExcerptChars: 300,
		MaxConcurrency:  4,
	})
	return NewService(engine, ag, 3, nil)
}

func TestEndToEnd_SimpleRefundWindow(t *testing.T) {
	svc := newService(t, llm.NewExtractiveProvider())
	ctx := context.Background()

	n, err := svc.Ingest(ctx, refundText, "refund.txt")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	resp, err := svc.Search(ctx, "What is the refund window?", "simple")
	require.NoError(t, err)
	require.Equal(t, ModeSimple, resp.Mode())

	simple := resp.(SimpleResponse)
	assert.Contains(t, simple.Answer, "30 days")
	assert.Equal(t, []string{"refund.txt"}, simple.Sources)
	assert.Equal(t, []string{refundText}, simple.Context)
}

func TestEndToEnd_AgenticCompare(t *testing.T) {
	svc := newService(t, llm.NewExtractiveProvider())
	ctx := context.Background()

	_, err := svc.Ingest(ctx, refundText, "refund.txt")
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, cancelText, "cancel.txt")
	require.NoError(t, err)

	resp, err := svc.Search(ctx, "Compare refund and cancellation policies", "agentic")
	require.NoError(t, err)
	require.Equal(t, ModeAgentic, resp.Mode())

	ag := resp.(AgenticResponse)
	assert.Equal(t, agent.IntentCompare, ag.Intent)
	assert.Len(t, ag.AgentPlan.SearchQueries, 2)
	assert.Contains(t, ag.Sources, "refund.txt")
	assert.Contains(t, ag.Sources, "cancel.txt")
	assert.NotEmpty(t, ag.Answer)
	assert.Greater(t, ag.Confidence, agent.MinConfidence)
	assert.LessOrEqual(t, ag.Confidence, 1.0)

	for _, e := range ag.Evidence {
		assert.True(t, e.Excerpt == refundText || e.Excerpt == cancelText, "evidence %q is not a chunk substring", e.Excerpt)
	}
}

func TestSearch_ModeAlias(t *testing.T) {
	svc := newService(t, llm.NewExtractiveProvider())
	_, err := svc.Ingest(context.Background(), refundText, "refund.txt")
	require.NoError(t, err)

	resp, err := svc.Search(context.Background(), "refund window", "RAG")
	require.NoError(t, err)
	assert.Equal(t, ModeSimple, resp.Mode())
}

func TestSearch_InvalidMode(t *testing.T) {
	svc := newService(t, llm.NewExtractiveProvider())
	_, err := svc.Search(context.Background(), "anything", "telepathic")
	assert.ErrorIs(t, err, ErrInvalidMode)
	assert.Equal(t, KindInvalidInput, Classify(err))
}

func TestSearch_EmptyStore(t *testing.T) {
	svc := newService(t, llm.NewExtractiveProvider())
	ctx := context.Background()

	resp, err := svc.Search(ctx, "anything?", "simple")
	require.NoError(t, err)
	assert.Equal(t, rag.NoDocumentsAnswer, resp.(SimpleResponse).Answer)
	assert.Equal(t, []string{}, resp.(SimpleResponse).Sources)

	resp, err = svc.Search(ctx, "compare refund and cancellation", "agentic")
	require.NoError(t, err)
	ag := resp.(AgenticResponse)
	assert.Equal(t, rag.NoDocumentsAnswer, ag.Answer)
	assert.Equal(t, agent.MinConfidence, ag.Confidence)
	assert.Empty(t, ag.Sources)
}

type brokenProvider struct{}

func (brokenProvider) Name() string { return "broken" }
func (brokenProvider) Complete(context.Context, llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return nil, errors.New("upstream 502")
}

func TestSearch_GenerationFailureSurfaces(t *testing.T) {
	svc := newService(t, brokenProvider{})
	_, err := svc.Ingest(context.Background(), refundText, "refund.txt")
	require.NoError(t, err)

	for _, mode := range []string{"simple", "agentic"} {
		_, err := svc.Search(context.Background(), "What is the refund window?", mode)
		assert.ErrorIs(t, err, llm.ErrGenerationUnavailable, mode)
		assert.Equal(t, KindProviderUnavailable, Classify(err), mode)
	}
}

func TestAgenticResponse_JSONShape(t *testing.T) {
	svc := newService(t, llm.NewExtractiveProvider())
	_, err := svc.Ingest(context.Background(), refundText, "refund.txt")
	require.NoError(t, err)

	resp, err := svc.Search(context.Background(), "why are refunds limited", "agentic")
	require.NoError(t, err)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &m))

	for _, field := range []string{"intent", "agent_plan", "actions_taken", "answer", "evidence", "sources", "confidence"} {
		assert.Contains(t, m, field)
	}
	assert.Len(t, m, 7)
}

func TestSimpleResponse_JSONShape(t *testing.T) {
	data, err := json.Marshal(AssembleSimple(&rag.Answer{Answer: "a"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"answer":"a","sources":[],"context":[]}`, string(data))
}

func TestAssembleAgentic_DedupSources(t *testing.T) {
	resp := AssembleAgentic(&agent.Result{
		Intent: agent.IntentLookup,
		Evidence: []agent.Evidence{
			{Source: "b.txt", Excerpt: "1"},
			{Source: "a.txt", Excerpt: "2"},
			{Source: "b.txt", Excerpt: "3"},
		},
	})
	assert.Equal(t, []string{"b.txt", "a.txt"}, resp.Sources)
	assert.Equal(t, []string{}, resp.ActionsTaken)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{fmt.Errorf("chunking a.txt: %w", chunker.ErrEmptyDocument), KindInvalidInput},
		{rag.ErrInvalidSource, KindInvalidInput},
		{rag.ErrEmptyQuery, KindInvalidInput},
		{vectordb.ErrDimensionMismatch, KindInvalidInput},
		{fmt.Errorf("insert: %w", vectordb.ErrDuplicateID), KindInvalidInput},
		{vectordb.ErrEmptyStore, KindNoData},
		{fmt.Errorf("x: %w", embeddings.ErrEmbeddingUnavailable), KindProviderUnavailable},
		{llm.ErrGenerationUnavailable, KindProviderUnavailable},
		{agent.ErrInvalidIntent, KindInternal},
		{errors.New("disk on fire"), KindInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.err), tt.err.Error())
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeSimple, "simple": ModeSimple, "rag": ModeSimple, " Agentic ": ModeAgentic} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
