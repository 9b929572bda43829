package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/docsearch/internal/llm"
	"github.com/ziadkadry99/docsearch/internal/rag"
	"github.com/ziadkadry99/docsearch/internal/vectordb"
)

func testOptions() Options {
	return Options{TopK: 5, SummaryTopK: 10, EvidenceLimit: 3, MaxExcerptChars: 300, MaxConcurrency: 4}
}

func TestRun_Compare(t *testing.T) {
	r := newFakeRetriever()
	r.results["refund"] = []vectordb.ScoredChunk{scored("r1", "refund.txt", "Refunds are accepted within 30 days of purchase.", 0.8, 0)}
	r.results["cancellation policies"] = []vectordb.ScoredChunk{scored("c1", "cancel.txt", "Cancellations must occur 24 hours before service.", 0.7, 1)}
	gen := &fakeGenerator{reply: "Refunds take up to 30 days; cancellations need 24 hours notice."}

	res, err := New(r, gen, testOptions()).Run(context.Background(), "Compare refund and cancellation policies")
	require.NoError(t, err)

	assert.Equal(t, IntentCompare, res.Intent)
	assert.Equal(t, []string{"refund", "cancellation policies"}, res.Plan.SearchQueries)
	assert.Equal(t, MethodCombineAndCompare, res.Plan.PostProcessingMethod)
	assert.Len(t, res.Evidence, 2)
	assert.Greater(t, res.Confidence, MinConfidence)

	assert.Equal(t, "detected intent: compare", res.Actions[0])
	assert.True(t, strings.HasPrefix(res.Actions[1], "created execution plan: "))
	assert.Equal(t, "selected tool: rag_retrieval", res.Actions[2])
	assert.Contains(t, res.Actions, "executing retrieval for: 'refund'")
	assert.Contains(t, res.Actions, "starting post-processing: combine_and_compare")
}

func TestRun_SummaryUsesWiderK(t *testing.T) {
	r := newFakeRetriever()
	gen := &fakeGenerator{reply: "unused"}

	res, err := New(r, gen, testOptions()).Run(context.Background(), "Summarize the handbook")
	require.NoError(t, err)
	assert.Equal(t, IntentSummarize, res.Intent)
	assert.Equal(t, []int{10}, r.ks)
	assert.Equal(t, rag.NotFoundAnswer, res.Answer)
}

func TestRun_EmptyQuery(t *testing.T) {
	_, err := New(newFakeRetriever(), &fakeGenerator{}, testOptions()).Run(context.Background(), "   ")
	assert.ErrorIs(t, err, rag.ErrEmptyQuery)
}

func TestRun_GenerationFailure(t *testing.T) {
	r := newFakeRetriever()
	r.results["what is the deadline"] = []vectordb.ScoredChunk{scored("1", "a.txt", "Deadline is Friday.", 0.9, 0)}
	gen := &fakeGenerator{err: llm.ErrGenerationUnavailable}

	_, err := New(r, gen, testOptions()).Run(context.Background(), "what is the deadline")
	assert.ErrorIs(t, err, llm.ErrGenerationUnavailable)
}
