package vectordb

// Chunk is a bounded segment of a source document together with its embedding.
// Chunks are immutable once inserted.
type Chunk struct {
	ID       string
	Text     string
	Source   string
	Position int // ordinal within Source
	Vector   []float32
	Seq      int // insertion sequence, assigned by the store
}

// ScoredChunk pairs a chunk with its cosine similarity to a query.
type ScoredChunk struct {
	Chunk      Chunk
	Similarity float64
}
