package llm

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const maxExtractedSentences = 3

// NoContextAnswer is what the extractive provider says when the prompt carries
// no usable context.
const NoContextAnswer = "The provided context does not contain enough information to answer the question."

var (
	blockHeaderRe = regexp.MustCompile(`^\[(\d+)\] Source: `)
	sentenceRe    = regexp.MustCompile(`[^.!?]+[.!?]*`)
	wordRe        = regexp.MustCompile(`\p{L}+|\p{N}+`)
)

// ExtractiveProvider answers offline by quoting the context sentences that
// best overlap the question. It reads prompts produced by BuildPrompt and
// cites each quoted sentence with its block number.
type ExtractiveProvider struct{}

// NewExtractiveProvider creates an ExtractiveProvider.
func NewExtractiveProvider() *ExtractiveProvider {
	return &ExtractiveProvider{}
}

func (p *ExtractiveProvider) Name() string {
	return "extractive"
}

type sentence struct {
	block int
	order int
	text  string
	score int
}

func (p *ExtractiveProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctxText, question := splitPrompt(lastUserMessage(req.Messages))
	sentences := parseSentences(ctxText)
	if len(sentences) == 0 {
		return &CompletionResponse{Content: NoContextAnswer, Model: "extractive", FinishReason: "stop"}, nil
	}

	qTokens := toTokenSet(question)
	for i := range sentences {
		sentences[i].score = overlapScore(qTokens, sentences[i].text)
	}

	ranked := append([]sentence(nil), sentences...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	var picked []sentence
	for _, s := range ranked {
		if len(picked) == maxExtractedSentences || (s.score == 0 && len(picked) > 0) {
			break
		}
		picked = append(picked, s)
	}
	// Present in document order so the answer reads naturally.
	sort.SliceStable(picked, func(i, j int) bool { return picked[i].order < picked[j].order })

	parts := make([]string, len(picked))
	for i, s := range picked {
		parts[i] = s.text
		if s.block > 0 {
			parts[i] += " [" + strconv.Itoa(s.block) + "]"
		}
	}

	return &CompletionResponse{
		Content:      strings.Join(parts, " "),
		Model:        "extractive",
		FinishReason: "stop",
	}, nil
}

// splitPrompt separates the context section from the question.
func splitPrompt(prompt string) (string, string) {
	ctxStart := strings.Index(prompt, contextMarker)
	qStart := strings.LastIndex(prompt, questionMarker)
	if qStart < 0 {
		return "", prompt
	}
	question := strings.TrimSpace(prompt[qStart+len(questionMarker):])
	if ctxStart < 0 || ctxStart > qStart {
		return "", question
	}
	return prompt[ctxStart+len(contextMarker) : qStart], question
}

func parseSentences(ctxText string) []sentence {
	var out []sentence
	block := 0
	for _, line := range strings.Split(ctxText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, groupPrefix) {
			continue
		}
		if m := blockHeaderRe.FindStringSubmatch(line); m != nil {
			block, _ = strconv.Atoi(m[1])
			continue
		}
		for _, s := range sentenceRe.FindAllString(line, -1) {
			s = strings.TrimSpace(s)
			if len(wordRe.FindAllString(s, -1)) == 0 {
				continue
			}
			out = append(out, sentence{block: block, order: len(out), text: s})
		}
	}
	return out
}

func toTokenSet(s string) map[string]struct{} {
	tokens := wordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, stop := questionStopwords[t]; stop {
			continue
		}
		m[stem(t)] = struct{}{}
	}
	return m
}

func overlapScore(queryTokens map[string]struct{}, text string) int {
	score := 0
	seen := make(map[string]struct{})
	for _, t := range wordRe.FindAllString(strings.ToLower(text), -1) {
		t = stem(t)
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}

// stem strips a plural "s" so "refund" matches "refunds".
func stem(t string) string {
	if len(t) > 3 && strings.HasSuffix(t, "s") && !strings.HasSuffix(t, "ss") {
		return t[:len(t)-1]
	}
	return t
}

var questionStopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "what": {}, "how": {},
	"why": {}, "of": {}, "to": {}, "in": {}, "and": {}, "or": {}, "do": {},
	"does": {}, "for": {}, "on": {}, "me": {}, "about": {}, "with": {},
}
