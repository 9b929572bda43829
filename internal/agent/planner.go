package agent

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidIntent is returned when planning is asked for an unknown intent.
var ErrInvalidIntent = errors.New("invalid intent")

// ToolRAGRetrieval is the only tool the executor knows how to run.
const ToolRAGRetrieval = "rag_retrieval"

// Method selects how retrieval results are turned into an answer.
type Method string

const (
	MethodDirectAnswer         Method = "direct_answer"
	MethodCombineAndCompare    Method = "combine_and_compare"
	MethodSynthesizeSummary    Method = "synthesize_summary"
	MethodExplainWithReasoning Method = "explain_with_reasoning"
)

const (
	strategyLookup    = "Direct retrieval and answer generation"
	strategyCompare   = "Split query into components, retrieve relevant sections for each, then synthesize comparison"
	strategySummarize = "Retrieve relevant sections, then generate comprehensive summary"
	strategyAnalyze   = "Retrieve relevant context, then perform detailed analysis"
)

// Plan describes what to retrieve and how to post-process it.
type Plan struct {
	Strategy             string   `json:"strategy"`
	SearchQueries        []string `json:"search_queries"`
	ToolsUsed            []string `json:"tools_used"`
	PostProcessingMethod Method   `json:"post_processing_method"`
	TopK                 int      `json:"-"`
}

// PlanOptions sets retrieval breadth per plan.
type PlanOptions struct {
	TopK        int
	SummaryTopK int
}

// NewPlan builds the execution plan for query under intent.
func NewPlan(intent Intent, query string, opts PlanOptions) (Plan, error) {
	switch intent {
	case IntentLookup:
		return lookupPlan(query, opts), nil

	case IntentCompare:
		targets := CompareTargets(query)
		if len(targets) < 2 {
			return lookupPlan(query, opts), nil
		}
		return Plan{
			Strategy:             strategyCompare,
			SearchQueries:        targets,
			ToolsUsed:            []string{ToolRAGRetrieval},
			PostProcessingMethod: MethodCombineAndCompare,
			TopK:                 opts.TopK,
		}, nil

	case IntentSummarize:
		k := opts.SummaryTopK
		if k < opts.TopK {
			k = opts.TopK
		}
		return Plan{
			Strategy:             strategySummarize,
			SearchQueries:        []string{query},
			ToolsUsed:            []string{ToolRAGRetrieval},
			PostProcessingMethod: MethodSynthesizeSummary,
			TopK:                 k,
		}, nil

	case IntentAnalyze:
		return Plan{
			Strategy:             strategyAnalyze,
			SearchQueries:        []string{query},
			ToolsUsed:            []string{ToolRAGRetrieval},
			PostProcessingMethod: MethodExplainWithReasoning,
			TopK:                 opts.TopK,
		}, nil

	default:
		return Plan{}, fmt.Errorf("%w: %q", ErrInvalidIntent, string(intent))
	}
}

func lookupPlan(query string, opts PlanOptions) Plan {
	return Plan{
		Strategy:             strategyLookup,
		SearchQueries:        []string{query},
		ToolsUsed:            []string{ToolRAGRetrieval},
		PostProcessingMethod: MethodDirectAnswer,
		TopK:                 opts.TopK,
	}
}

const minTargetLen = 3

var (
	leadingCueRe = regexp.MustCompile(`(?i)^(?:what are the differences between|what is the difference between|the differences between|the difference between|differences between|difference between|comparison of|compare|contrast)\s+`)
	connectiveRe = regexp.MustCompile(`(?i)\s*,\s*(?:(?:and|or)\s+)?|\s+(?:and|versus|vs\.?|or|with|against)\s+`)
)

// CompareTargets splits a comparison query into its targets.
//
// Trailing punctuation is dropped, leading cue phrases ("compare",
// "difference between", ...) are removed, and the rest is split on commas and
// the whole-word connectives and, versus, vs, vs., or, with, against.
// Targets shorter than three characters and case-insensitive duplicates are
// discarded.
func CompareTargets(query string) []string {
	q := strings.TrimRight(strings.TrimSpace(query), "?.! ")
	for {
		stripped := leadingCueRe.ReplaceAllString(q, "")
		if stripped == q {
			break
		}
		q = stripped
	}

	var targets []string
	seen := make(map[string]struct{})
	for _, part := range connectiveRe.Split(q, -1) {
		part = strings.TrimSpace(part)
		if len([]rune(part)) < minTargetLen {
			continue
		}
		key := strings.ToLower(part)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		targets = append(targets, part)
	}
	return targets
}
