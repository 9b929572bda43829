package vectordb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrEmptyStore is returned by Search when nothing has been indexed.
	ErrEmptyStore = errors.New("vector store is empty")

	// ErrDimensionMismatch is returned when a vector's length differs from the store's.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrDuplicateID is returned when a chunk ID repeats within a batch or is already stored.
	ErrDuplicateID = errors.New("duplicate chunk id")
)

// Store holds chunk embeddings and answers nearest-neighbour queries.
// Implementations must be safe for concurrent use.
type Store interface {
	// Insert appends chunks and returns how many were stored. The whole batch
	// is rejected if any vector has the wrong dimensionality or any ID is reused.
	Insert(ctx context.Context, chunks []Chunk) (int, error)

	// Search returns at most k chunks ranked by cosine similarity, highest first.
	// Ties are broken by insertion order.
	Search(ctx context.Context, query []float32, k int) ([]ScoredChunk, error)

	// Count returns the number of stored chunks.
	Count() int

	// Sources returns the distinct source names in first-insertion order.
	Sources() []string

	// Dimensions returns the vector length enforced by the store, or 0 if not yet fixed.
	Dimensions() int
}

// New returns the store backend named by kind ("memory" or "chromem").
func New(kind string, dimensions int) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(dimensions), nil
	case "chromem":
		return NewChromemStore(dimensions)
	default:
		return nil, fmt.Errorf("unsupported vector store: %s", kind)
	}
}

// checkDimensions validates every vector in chunks against dim. A dim of 0
// adopts the length of the first vector. It returns the effective dimension.
func checkDimensions(chunks []Chunk, dim int) (int, error) {
	for i, c := range chunks {
		if len(c.Vector) == 0 {
			return dim, fmt.Errorf("%w: chunk %d has an empty vector", ErrDimensionMismatch, i)
		}
		if dim == 0 {
			dim = len(c.Vector)
		}
		if len(c.Vector) != dim {
			return dim, fmt.Errorf("%w: chunk %d has %d dimensions, want %d", ErrDimensionMismatch, i, len(c.Vector), dim)
		}
	}
	return dim, nil
}

// assignIDs fills in missing chunk IDs and rejects IDs that repeat within the
// batch or for which stored reports true. chunks is modified in place.
func assignIDs(chunks []Chunk, stored func(id string) bool) error {
	batch := make(map[string]struct{}, len(chunks))
	for i := range chunks {
		if chunks[i].ID == "" {
			chunks[i].ID = uuid.NewString()
		}
		id := chunks[i].ID
		if _, dup := batch[id]; dup || stored(id) {
			return fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		batch[id] = struct{}{}
	}
	return nil
}
