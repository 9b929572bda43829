package vectordb

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"sync"

	chromem "github.com/philippgille/chromem-go"
)

const collectionName = "documents"

// ChromemStore implements Store on top of a chromem-go collection. Chunks are
// added with precomputed embeddings; chromem computes the similarities and the
// store re-ranks them so results match MemoryStore exactly.
type ChromemStore struct {
	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection
	dimension  int
	chunks     map[string]Chunk
	order      []string
	sources    []string
	seen       map[string]struct{}
}

// NewChromemStore creates an in-memory chromem-go backed store.
func NewChromemStore(dimension int) (*ChromemStore, error) {
	db := chromem.NewDB()

	col, err := db.GetOrCreateCollection(collectionName, nil, precomputedOnly)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemStore{
		db:         db,
		collection: col,
		dimension:  dimension,
		chunks:     make(map[string]Chunk),
		seen:       make(map[string]struct{}),
	}, nil
}

// precomputedOnly stops chromem from falling back to its default remote
// embedding function. Every chunk must arrive with a vector.
func precomputedOnly(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("chunks must carry precomputed vectors")
}

func (s *ChromemStore) Insert(ctx context.Context, chunks []Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
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

	docs := make([]chromem.Document, len(batch))
	ids := make([]string, len(batch))
	for i, c := range batch {
		c.Vector = append([]float32(nil), c.Vector...)
		c.Seq = len(s.order) + i
		batch[i] = c
		ids[i] = c.ID
		docs[i] = chromem.Document{
			ID:        c.ID,
			Content:   c.Text,
			Embedding: c.Vector,
			Metadata: map[string]string{
				"source":   c.Source,
				"position": strconv.Itoa(c.Position),
				"seq":      strconv.Itoa(c.Seq),
			},
		}
	}

	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		// Drop whatever made it in so the batch stays all-or-nothing.
		_ = s.collection.Delete(context.Background(), nil, nil, ids...)
		return 0, fmt.Errorf("chromem add documents: %w", err)
	}

	s.dimension = dim
	for _, c := range batch {
		s.chunks[c.ID] = c
		s.order = append(s.order, c.ID)
		if _, ok := s.seen[c.Source]; !ok {
			s.seen[c.Source] = struct{}{}
			s.sources = append(s.sources, c.Source)
		}
	}
	return len(batch), nil
}

func (s *ChromemStore) Search(ctx context.Context, query []float32, k int) ([]ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.order) == 0 {
		return nil, ErrEmptyStore
	}
	if len(query) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, want %d", ErrDimensionMismatch, len(query), s.dimension)
	}
	if k <= 0 {
		return []ScoredChunk{}, nil
	}

	scored := make([]ScoredChunk, 0, len(s.order))
	if isZero(query) {
		for _, id := range s.order {
			scored = append(scored, ScoredChunk{Chunk: s.chunks[id]})
		}
		return rank(scored, k), nil
	}

	// chromem requires nResults <= collection size; ask for everything and
	// rank locally so ties resolve by insertion order.
	results, err := s.collection.QueryEmbedding(ctx, query, s.collection.Count(), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	for _, r := range results {
		c, ok := s.chunks[r.ID]
		if !ok {
			continue
		}
		sim := float64(r.Similarity)
		if math.IsNaN(sim) || math.IsInf(sim, 0) || isZero(c.Vector) {
			sim = 0
		}
		scored = append(scored, ScoredChunk{Chunk: c, Similarity: sim})
	}
	return rank(scored, k), nil
}

func (s *ChromemStore) has(id string) bool {
	_, ok := s.chunks[id]
	return ok
}

func (s *ChromemStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *ChromemStore) Sources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.sources...)
}

func (s *ChromemStore) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}
