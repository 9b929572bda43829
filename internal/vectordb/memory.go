package vectordb

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// MemoryStore is an in-memory vector store using brute-force cosine similarity.
type MemoryStore struct {
	mu        sync.RWMutex
	dimension int
	chunks    []Chunk
	sources   []string
	seen      map[string]struct{}
	ids       map[string]struct{}
}

// NewMemoryStore creates an empty store. A dimension of 0 is fixed by the first insert.
func NewMemoryStore(dimension int) *MemoryStore {
	return &MemoryStore{
		dimension: dimension,
		seen:      make(map[string]struct{}),
		ids:       make(map[string]struct{}),
	}
}

func (s *MemoryStore) Insert(ctx context.Context, chunks []Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dim, err := checkDimensions(chunks, s.dimension)
	if err != nil {
		return 0, err
	}
	batch := slices.Clone(chunks)
	if err := assignIDs(batch, s.has); err != nil {
		return 0, err
	}
	s.dimension = dim

	for _, c := range batch {
		s.ids[c.ID] = struct{}{}
		c.Vector = append([]float32(nil), c.Vector...)
		c.Seq = len(s.chunks)
		s.chunks = append(s.chunks, c)
		if _, ok := s.seen[c.Source]; !ok {
			s.seen[c.Source] = struct{}{}
			s.sources = append(s.sources, c.Source)
		}
	}
	return len(chunks), nil
}

func (s *MemoryStore) Search(ctx context.Context, query []float32, k int) ([]ScoredChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.chunks) == 0 {
		return nil, ErrEmptyStore
	}
	if len(query) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, want %d", ErrDimensionMismatch, len(query), s.dimension)
	}
	if k <= 0 {
		return []ScoredChunk{}, nil
	}

	scored := make([]ScoredChunk, len(s.chunks))
	for i, c := range s.chunks {
		scored[i] = ScoredChunk{Chunk: c, Similarity: Cosine(c.Vector, query)}
	}
	return rank(scored, k), nil
}

func (s *MemoryStore) has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

func (s *MemoryStore) Sources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.sources...)
}

func (s *MemoryStore) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}
