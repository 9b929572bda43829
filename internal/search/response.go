package search

import (
	"github.com/ziadkadry99/docsearch/internal/agent"
	"github.com/ziadkadry99/docsearch/internal/rag"
)

// Mode selects the search path.
type Mode string

const (
	ModeSimple  Mode = "simple"
	ModeAgentic Mode = "agentic"
)

// ParseMode accepts "simple" (or its alias "rag") and "agentic",
// case-insensitively. An empty mode means simple.
func ParseMode(s string) (Mode, error) {
	switch Mode(lower(s)) {
	case "", ModeSimple, "rag":
		return ModeSimple, nil
	case ModeAgentic:
		return ModeAgentic, nil
	default:
		return "", invalidMode(s)
	}
}

// Response is either a SimpleResponse or an AgenticResponse.
type Response interface {
	Mode() Mode
}

// SimpleResponse is the minimal retrieve-then-answer shape.
type SimpleResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
	Context []string `json:"context"`
}

func (SimpleResponse) Mode() Mode { return ModeSimple }

// AgenticResponse carries the full record of an agentic run.
type AgenticResponse struct {
	Intent       agent.Intent     `json:"intent"`
	AgentPlan    agent.Plan       `json:"agent_plan"`
	ActionsTaken []string         `json:"actions_taken"`
	Answer       string           `json:"answer"`
	Evidence     []agent.Evidence `json:"evidence"`
	Sources      []string         `json:"sources"`
	Confidence   float64          `json:"confidence"`
}

func (AgenticResponse) Mode() Mode { return ModeAgentic }

// AssembleSimple builds the simple response from a generated answer.
func AssembleSimple(a *rag.Answer) SimpleResponse {
	return SimpleResponse{
		Answer:  a.Answer,
		Sources: nonNil(a.Sources),
		Context: nonNil(a.Context),
	}
}

// AssembleAgentic builds the agentic response. Sources are drawn from the
// evidence, deduplicated in first-seen order.
func AssembleAgentic(r *agent.Result) AgenticResponse {
	evidence := r.Evidence
	if evidence == nil {
		evidence = []agent.Evidence{}
	}
	seen := make(map[string]struct{}, len(evidence))
	sources := make([]string, 0, len(evidence))
	for _, e := range evidence {
		if _, ok := seen[e.Source]; ok {
			continue
		}
		seen[e.Source] = struct{}{}
		sources = append(sources, e.Source)
	}

	return AgenticResponse{
		Intent:       r.Intent,
		AgentPlan:    r.Plan,
		ActionsTaken: nonNil(r.Actions),
		Answer:       r.Answer,
		Evidence:     evidence,
		Sources:      sources,
		Confidence:   r.Confidence,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
