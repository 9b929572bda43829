package agent

import "math"

// Confidence bounds.
const (
	MinConfidence = 0.05
	MaxConfidence = 0.95
)

// Confidence scores how well results support an answer. It grows with the
// number and similarity of distinct supporting chunks and shrinks with the
// share of sub-queries that came back empty. The result lies in
// [MinConfidence, MaxConfidence] and is rounded to two decimals.
func Confidence(results []RetrievalResult) float64 {
	if len(results) == 0 {
		return MinConfidence
	}

	var support float64
	empty := 0
	seen := make(map[string]struct{})
	for _, r := range results {
		if len(r.Chunks) == 0 {
			empty++
			continue
		}
		for _, c := range r.Chunks {
			key := chunkKey(c.Chunk)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			support += clamp01(c.Similarity)
		}
	}

	coverage := 1 - 0.5*float64(empty)/float64(len(results))
	saturation := 1 - math.Exp(-support/2)
	score := MinConfidence + (MaxConfidence-MinConfidence)*saturation*coverage
	return math.Round(score*100) / 100
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
