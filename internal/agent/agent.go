package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ziadkadry99/docsearch/internal/rag"
)

// Options configures the pipeline.
type Options struct {
	TopK            int
	SummaryTopK     int
	EvidenceLimit   int
	MaxExcerptChars int
	MaxConcurrency  int
	Logger          *slog.Logger
}

// Result is the full record of one agentic run.
type Result struct {
	Intent     Intent
	Plan       Plan
	Actions    []string
	Answer     string
	Evidence   []Evidence
	Confidence float64
}

// Agent classifies a query, plans retrieval, runs it and post-processes the
// results.
type Agent struct {
	planOpts PlanOptions
	executor *Executor
	post     *PostProcessor
	logger   *slog.Logger
}

// New creates an agent that retrieves through retriever and generates with generator.
func New(retriever rag.Retriever, generator Generator, opts Options) *Agent {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		planOpts: PlanOptions{TopK: opts.TopK, SummaryTopK: opts.SummaryTopK},
		executor: NewExecutor(retriever, opts.MaxConcurrency, logger),
		post:     NewPostProcessor(generator, opts.EvidenceLimit, opts.MaxExcerptChars),
		logger:   logger,
	}
}

// Run executes the pipeline for query. Retrieval failures degrade the affected
// sub-query only; a failure of the final generation call fails the run.
func (a *Agent) Run(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, rag.ErrEmptyQuery
	}

	intent := Classify(query)
	actions := []string{fmt.Sprintf("detected intent: %s", intent)}

	plan, err := NewPlan(intent, query, a.planOpts)
	if err != nil {
		return nil, err
	}
	actions = append(actions,
		fmt.Sprintf("created execution plan: %s", plan.Strategy),
		fmt.Sprintf("selected tool: %s", strings.Join(plan.ToolsUsed, ", ")),
	)
	a.logger.Debug("agent plan", "intent", intent, "queries", plan.SearchQueries, "method", plan.PostProcessingMethod, "k", plan.TopK)

	results, execActions := a.executor.Execute(ctx, plan)
	actions = append(actions, execActions...)

	actions = append(actions, fmt.Sprintf("starting post-processing: %s", plan.PostProcessingMethod))
	out, err := a.post.Process(ctx, plan.PostProcessingMethod, query, results)
	if err != nil {
		return nil, fmt.Errorf("post-processing %s: %w", plan.PostProcessingMethod, err)
	}
	actions = append(actions, fmt.Sprintf("answer ready with %d evidence excerpts", len(out.Evidence)))

	a.logger.Info("agentic search", "intent", intent, "sub_queries", len(plan.SearchQueries), "evidence", len(out.Evidence), "confidence", out.Confidence)

	return &Result{
		Intent:     intent,
		Plan:       plan,
		Actions:    actions,
		Answer:     out.Answer,
		Evidence:   out.Evidence,
		Confidence: out.Confidence,
	}, nil
}
