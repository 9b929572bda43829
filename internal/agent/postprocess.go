package agent

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/ziadkadry99/docsearch/internal/llm"
	"github.com/ziadkadry99/docsearch/internal/rag"
	"github.com/ziadkadry99/docsearch/internal/vectordb"
)

// ErrUnknownMethod is returned for a post-processing method with no handler.
var ErrUnknownMethod = errors.New("unknown post-processing method")

const explainFallbackEvidence = 2

// Instructions sent as the system message for each method.
const (
	compareInstruction = "You compare topics using only the provided context. " +
		"The context is grouped by topic. Produce a structured comparison: cover each topic, " +
		"then list the key similarities and differences. If a topic has no supporting context, say so explicitly."
	summaryInstruction = "You summarize documents using only the provided context. " +
		"Write a comprehensive summary of the main points. Do not add information that is not in the context."
	explainInstruction = "You explain mechanisms and reasons using only the provided context. " +
		"Do not just restate facts: explain how and why, step by step. " +
		"Cite the passages you rely on by their number in square brackets, e.g. [1]. " +
		"If the context is insufficient, say so explicitly."
)

var citationRe = regexp.MustCompile(`\[(\d+)\]`)

// Generator produces text from an instruction and a prompt.
type Generator interface {
	Generate(ctx context.Context, instruction, prompt string) (string, error)
}

// Evidence is an excerpt of a retrieved chunk and the document it came from.
type Evidence struct {
	Source  string `json:"source"`
	Excerpt string `json:"excerpt"`
}

// Outcome is what post-processing hands to the response assembler.
type Outcome struct {
	Answer     string
	Evidence   []Evidence
	Confidence float64
}

// PostProcessor turns retrieval results into an answer with evidence.
type PostProcessor struct {
	generator     Generator
	evidenceLimit int
	maxExcerpt    int
}

// NewPostProcessor creates a post-processor. evidenceLimit caps evidence for
// the direct and summary methods; maxExcerpt caps each excerpt in runes.
func NewPostProcessor(generator Generator, evidenceLimit, maxExcerpt int) *PostProcessor {
	if evidenceLimit < 1 {
		evidenceLimit = 1
	}
	return &PostProcessor{generator: generator, evidenceLimit: evidenceLimit, maxExcerpt: maxExcerpt}
}

// Process dispatches to the handler for method.
func (p *PostProcessor) Process(ctx context.Context, method Method, query string, results []RetrievalResult) (Outcome, error) {
	switch method {
	case MethodDirectAnswer, MethodCombineAndCompare, MethodSynthesizeSummary, MethodExplainWithReasoning:
	default:
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownMethod, string(method))
	}

	if totalChunks(results) == 0 {
		return Outcome{Answer: emptyAnswer(results), Evidence: []Evidence{}, Confidence: MinConfidence}, nil
	}

	var (
		out Outcome
		err error
	)
	switch method {
	case MethodDirectAnswer:
		out, err = p.directAnswer(ctx, query, results)
	case MethodCombineAndCompare:
		out, err = p.combineAndCompare(ctx, query, results)
	case MethodSynthesizeSummary:
		out, err = p.synthesizeSummary(ctx, query, results)
	case MethodExplainWithReasoning:
		out, err = p.explainWithReasoning(ctx, query, results)
	}
	if err != nil {
		return Outcome{}, err
	}
	out.Confidence = Confidence(results)
	return out, nil
}

func (p *PostProcessor) directAnswer(ctx context.Context, query string, results []RetrievalResult) (Outcome, error) {
	chunks := merge(results)
	answer, err := p.generator.Generate(ctx, rag.GroundingInstruction, llm.BuildPrompt(blocks(chunks, ""), query))
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Answer: answer, Evidence: p.evidence(top(chunks, p.evidenceLimit))}, nil
}

func (p *PostProcessor) combineAndCompare(ctx context.Context, query string, results []RetrievalResult) (Outcome, error) {
	var (
		ctxBlocks []llm.ContextBlock
		best      []vectordb.ScoredChunk
	)
	seen := make(map[string]struct{})
	for _, r := range results {
		if len(r.Chunks) == 0 {
			// Keep the empty topic visible so the model can say it found nothing.
			ctxBlocks = append(ctxBlocks, llm.ContextBlock{Group: "Results for: " + r.Query, Source: "none", Text: "No relevant passages found."})
			continue
		}
		ctxBlocks = append(ctxBlocks, blocks(r.Chunks, "Results for: "+r.Query)...)
		key := chunkKey(r.Chunks[0].Chunk)
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			best = append(best, r.Chunks[0])
		}
	}

	answer, err := p.generator.Generate(ctx, compareInstruction, llm.BuildPrompt(ctxBlocks, query))
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Answer: answer, Evidence: p.evidence(best)}, nil
}

func (p *PostProcessor) synthesizeSummary(ctx context.Context, query string, results []RetrievalResult) (Outcome, error) {
	chunks := merge(results)
	answer, err := p.generator.Generate(ctx, summaryInstruction, llm.BuildPrompt(blocks(chunks, ""), query))
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Answer: answer, Evidence: p.evidence(top(chunks, p.evidenceLimit))}, nil
}

func (p *PostProcessor) explainWithReasoning(ctx context.Context, query string, results []RetrievalResult) (Outcome, error) {
	chunks := merge(results)
	answer, err := p.generator.Generate(ctx, explainInstruction, llm.BuildPrompt(blocks(chunks, ""), query))
	if err != nil {
		return Outcome{}, err
	}

	cited := citedChunks(answer, chunks)
	if len(cited) == 0 {
		cited = top(chunks, explainFallbackEvidence)
	}
	return Outcome{Answer: answer, Evidence: p.evidence(cited)}, nil
}

func (p *PostProcessor) evidence(chunks []vectordb.ScoredChunk) []Evidence {
	out := make([]Evidence, len(chunks))
	for i, c := range chunks {
		out[i] = Evidence{Source: c.Chunk.Source, Excerpt: Excerpt(c.Chunk.Text, p.maxExcerpt)}
	}
	return out
}

// citedChunks returns the chunks referenced as [n] in answer, in citation
// order, ignoring out-of-range and repeated numbers.
func citedChunks(answer string, chunks []vectordb.ScoredChunk) []vectordb.ScoredChunk {
	var out []vectordb.ScoredChunk
	seen := make(map[int]struct{})
	for _, m := range citationRe.FindAllStringSubmatch(answer, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > len(chunks) {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, chunks[n-1])
	}
	return out
}

// Excerpt returns a prefix of text at most limit runes long, cut at a word
// boundary when possible. The result is always a substring of text.
// limit <= 0 returns text unchanged.
func Excerpt(text string, limit int) string {
	r := []rune(text)
	if limit <= 0 || len(r) <= limit {
		return text
	}
	cut := limit
	for i := limit; i > 0; i-- {
		if unicode.IsSpace(r[i]) {
			cut = i
			break
		}
	}
	return strings.TrimRightFunc(string(r[:cut]), unicode.IsSpace)
}

func blocks(chunks []vectordb.ScoredChunk, group string) []llm.ContextBlock {
	out := make([]llm.ContextBlock, len(chunks))
	for i, c := range chunks {
		out[i] = llm.ContextBlock{Group: group, Source: c.Chunk.Source, Text: c.Chunk.Text}
	}
	return out
}

// merge combines all results, dropping duplicate chunks, ordered by
// similarity then insertion order.
func merge(results []RetrievalResult) []vectordb.ScoredChunk {
	var out []vectordb.ScoredChunk
	seen := make(map[string]struct{})
	for _, r := range results {
		for _, c := range r.Chunks {
			key := chunkKey(c.Chunk)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b vectordb.ScoredChunk) int {
		if c := cmp.Compare(b.Similarity, a.Similarity); c != 0 {
			return c
		}
		return cmp.Compare(a.Chunk.Seq, b.Chunk.Seq)
	})
	return out
}

func top(chunks []vectordb.ScoredChunk, n int) []vectordb.ScoredChunk {
	if n < len(chunks) {
		return chunks[:n]
	}
	return chunks
}

func totalChunks(results []RetrievalResult) int {
	n := 0
	for _, r := range results {
		n += len(r.Chunks)
	}
	return n
}

// emptyAnswer explains why nothing was retrieved.
func emptyAnswer(results []RetrievalResult) string {
	if len(results) == 0 {
		return rag.NotFoundAnswer
	}
	for _, r := range results {
		if !errors.Is(r.Err, vectordb.ErrEmptyStore) {
			return rag.NotFoundAnswer
		}
	}
	return rag.NoDocumentsAnswer
}

func chunkKey(c vectordb.Chunk) string {
	if c.ID != "" {
		return c.ID
	}
	return c.Source + "#" + strconv.Itoa(c.Position) + "#" + strconv.Itoa(c.Seq)
}
