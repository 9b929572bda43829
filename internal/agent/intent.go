// Package agent implements the agentic search pipeline: intent
// classification, planning, retrieval-as-a-tool execution and
// post-processing into an evidence-bearing answer.
package agent

import (
	"regexp"
	"strings"
)

// Intent is the classified purpose of a query.
type Intent string

const (
	IntentLookup    Intent = "lookup"
	IntentCompare   Intent = "compare"
	IntentSummarize Intent = "summarize"
	IntentAnalyze   Intent = "analyze"
)

// Valid reports whether i is one of the known intents.
func (i Intent) Valid() bool {
	switch i {
	case IntentLookup, IntentCompare, IntentSummarize, IntentAnalyze:
		return true
	}
	return false
}

// Rule maps cue words or phrases to an intent.
type Rule struct {
	Intent Intent
	Cues   []string
}

// rules are checked in order; the first rule with a matching cue wins.
var rules = []Rule{
	{IntentCompare, []string{"compare", "comparison", "difference between", "differences between", "versus", "vs", "vs.", "contrast"}},
	{IntentSummarize, []string{"summarize", "summarise", "summary", "overview", "give me a summary"}},
	{IntentAnalyze, []string{"analyze", "analyse", "analysis", "explain how", "explain why", "why", "how does"}},
}

var rulePatterns = compileRules(rules)

func compileRules(rs []Rule) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(rs))
	for i, r := range rs {
		alts := make([]string, len(r.Cues))
		for j, c := range r.Cues {
			alts[j] = regexp.QuoteMeta(c)
		}
		// Cues match whole words only: "vs" must not fire inside "canvas".
		out[i] = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(?:` + strings.Join(alts, "|") + `)(?:$|[^\p{L}\p{N}])`)
	}
	return out
}

// Rules returns the classification table in precedence order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = Rule{Intent: r.Intent, Cues: append([]string(nil), r.Cues...)}
	}
	return out
}

// Classify returns the intent of query. It is deterministic and falls back to
// IntentLookup when no cue matches.
func Classify(query string) Intent {
	for i, re := range rulePatterns {
		if re.MatchString(query) {
			return rules[i].Intent
		}
	}
	return IntentLookup
}
