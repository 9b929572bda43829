package agent

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/docsearch/internal/rag"
	"github.com/ziadkadry99/docsearch/internal/vectordb"
)

// RetrievalResult is the outcome of one sub-query. A failed sub-query has no
// chunks and a non-nil Err.
type RetrievalResult struct {
	Query  string
	Chunks []vectordb.ScoredChunk
	Err    error
}

// Executor runs a plan's sub-queries against the retriever.
type Executor struct {
	retriever   rag.Retriever
	concurrency int
	logger      *slog.Logger
}

// NewExecutor creates an executor running at most concurrency sub-queries at once.
func NewExecutor(retriever rag.Retriever, concurrency int, logger *slog.Logger) *Executor {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{retriever: retriever, concurrency: concurrency, logger: logger}
}

// Execute retrieves for every sub-query in plan. Sub-queries run in parallel
// but results and actions are reported in plan order. A failing sub-query is
// recorded and does not stop the others.
func (x *Executor) Execute(ctx context.Context, plan Plan) ([]RetrievalResult, []string) {
	results := make([]RetrievalResult, len(plan.SearchQueries))

	var g errgroup.Group
	g.SetLimit(x.concurrency)
	for i, q := range plan.SearchQueries {
		g.Go(func() error {
			chunks, err := x.retriever.Query(ctx, q, plan.TopK)
			if err != nil {
				x.logger.Warn("retrieval failed", "query", q, "error", err)
				results[i] = RetrievalResult{Query: q, Chunks: []vectordb.ScoredChunk{}, Err: err}
				return nil
			}
			results[i] = RetrievalResult{Query: q, Chunks: chunks}
			return nil
		})
	}
	_ = g.Wait()

	actions := make([]string, 0, 2*len(results))
	for _, r := range results {
		actions = append(actions, fmt.Sprintf("executing retrieval for: '%s'", r.Query))
		if r.Err != nil {
			actions = append(actions, fmt.Sprintf("retrieval failed for '%s': %v", r.Query, r.Err))
			continue
		}
		actions = append(actions, fmt.Sprintf("retrieved %d chunks", len(r.Chunks)))
	}
	return results, actions
}
