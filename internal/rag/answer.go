package rag

import (
	"context"
	"errors"

	"github.com/ziadkadry99/docsearch/internal/llm"
	"github.com/ziadkadry99/docsearch/internal/vectordb"
)

// Answer is the result of the simple retrieve-then-generate path.
type Answer struct {
	Answer  string
	Sources []string
	Context []string
	Chunks  []vectordb.ScoredChunk
}

// GenerateAnswer retrieves the k best chunks for text and asks the language
// model for an answer grounded in them. An empty store or an empty retrieval
// produce an explanatory answer rather than an error.
func (e *Engine) GenerateAnswer(ctx context.Context, text string, k int) (*Answer, error) {
	chunks, err := e.Query(ctx, text, k)
	if errors.Is(err, vectordb.ErrEmptyStore) {
		return &Answer{Answer: NoDocumentsAnswer, Sources: []string{}, Context: []string{}}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return &Answer{Answer: NotFoundAnswer, Sources: []string{}, Context: []string{}}, nil
	}

	blocks := make([]llm.ContextBlock, len(chunks))
	contextTexts := make([]string, len(chunks))
	for i, c := range chunks {
		blocks[i] = llm.ContextBlock{Source: c.Chunk.Source, Text: c.Chunk.Text}
		contextTexts[i] = c.Chunk.Text
	}

	answer, err := e.generator.Generate(ctx, GroundingInstruction, llm.BuildPrompt(blocks, text))
	if err != nil {
		return nil, err
	}

	return &Answer{
		Answer:  answer,
		Sources: SourcesOf(chunks),
		Context: contextTexts,
		Chunks:  chunks,
	}, nil
}

// SourcesOf returns the distinct sources of chunks in first-seen order.
func SourcesOf(chunks []vectordb.ScoredChunk) []string {
	seen := make(map[string]struct{}, len(chunks))
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if _, ok := seen[c.Chunk.Source]; ok {
			continue
		}
		seen[c.Chunk.Source] = struct{}{}
		out = append(out, c.Chunk.Source)
	}
	return out
}
