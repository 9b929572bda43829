package vectordb

import (
	"cmp"
	"math"
	"slices"
)

// Cosine returns the cosine similarity of a and b. A zero-length vector has
// similarity 0 with everything.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if math.IsNaN(sim) {
		return 0
	}
	return sim
}

func isZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// rank sorts scored chunks by similarity (descending) then insertion
// sequence, and truncates to k. Returned vectors are copies.
func rank(scored []ScoredChunk, k int) []ScoredChunk {
	slices.SortStableFunc(scored, func(a, b ScoredChunk) int {
		if c := cmp.Compare(b.Similarity, a.Similarity); c != 0 {
			return c
		}
		return cmp.Compare(a.Chunk.Seq, b.Chunk.Seq)
	})
	if k < len(scored) {
		scored = scored[:k]
	}
	for i := range scored {
		scored[i].Chunk.Vector = slices.Clone(scored[i].Chunk.Vector)
	}
	return scored
}
