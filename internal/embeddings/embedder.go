package embeddings

import (
	"context"
	"errors"
)

// ErrEmbeddingUnavailable is returned when the embedding provider fails or times out.
var ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

// Embedder defines the interface for generating text embeddings.
type Embedder interface {
	// Embed generates embeddings for one or more texts.
	// The result has exactly one vector per input, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}
