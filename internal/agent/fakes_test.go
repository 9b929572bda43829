package agent

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ziadkadry99/docsearch/internal/vectordb"
)

type fakeRetriever struct {
	mu      sync.Mutex
	results map[string][]vectordb.ScoredChunk
	errs    map[string]error
	delays  map[string]time.Duration
	calls   []string
	ks      []int
}

func newFakeRetriever() *fakeRetriever {
	return &fakeRetriever{
		results: make(map[string][]vectordb.ScoredChunk),
		errs:    make(map[string]error),
		delays:  make(map[string]time.Duration),
	}
}

func (f *fakeRetriever) Query(ctx context.Context, text string, k int) ([]vectordb.ScoredChunk, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.ks = append(f.ks, k)
	delay, err, chunks := f.delays[text], f.errs[text], f.results[text]
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	if k < len(chunks) {
		chunks = chunks[:k]
	}
	return chunks, nil
}

type fakeGenerator struct {
	mu           sync.Mutex
	reply        string
	err          error
	instructions []string
	prompts      []string
}

func (g *fakeGenerator) Generate(_ context.Context, instruction, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.instructions = append(g.instructions, instruction)
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

var errEmbedderDown = errors.New("embedding provider unavailable: connection refused")

func scored(id, source, text string, sim float64, seq int) vectordb.ScoredChunk {
	return vectordb.ScoredChunk{
		Chunk:      vectordb.Chunk{ID: id, Source: source, Text: text, Seq: seq},
		Similarity: sim,
	}
}
