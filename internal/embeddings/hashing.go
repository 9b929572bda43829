package embeddings

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// DefaultHashingDimensions is the vector size used when none is configured.
const DefaultHashingDimensions = 512

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

// HashingEmbedder is an offline, deterministic embedder. It hashes word tokens
// and character trigrams into a fixed number of buckets and L2-normalizes the
// result, so texts sharing vocabulary (including inflections like
// "refund"/"refunds") land close together. It needs no corpus preparation.
type HashingEmbedder struct {
	dimensions int
	stopwords  map[string]struct{}
}

// NewHashingEmbedder creates a hashing embedder. dimensions <= 0 uses
// DefaultHashingDimensions.
func NewHashingEmbedder(dimensions int) *HashingEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultHashingDimensions
	}
	return &HashingEmbedder{dimensions: dimensions, stopwords: defaultStopwords()}
}

func (e *HashingEmbedder) Name() string { return "hashing" }

func (e *HashingEmbedder) Dimensions() int { return e.dimensions }

func (e *HashingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.embed(text)
	}
	return out, nil
}

func (e *HashingEmbedder) embed(text string) []float32 {
	vec := make([]float64, e.dimensions)
	for _, tok := range e.tokenize(text) {
		// Whole words weigh more than their trigrams.
		e.add(vec, "w:"+tok, 2)
		padded := []rune("^" + tok + "$")
		for i := 0; i+3 <= len(padded); i++ {
			e.add(vec, "t:"+string(padded[i:i+3]), 1)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	out := make([]float32, e.dimensions)
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out
}

func (e *HashingEmbedder) add(vec []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	idx := int(sum % uint64(e.dimensions))
	// The top bit picks a sign so collisions tend to cancel.
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}

func (e *HashingEmbedder) tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, tok := range raw {
		if _, stop := e.stopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "can", "do", "does",
		"for", "from", "how", "i", "in", "is", "it", "its", "of", "on", "or",
		"that", "the", "this", "to", "was", "what", "when", "where", "which",
		"who", "will", "with", "you", "your", "my", "me", "we", "our", "they",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
