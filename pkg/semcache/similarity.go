package semcache

import "math"

// l2Normalize returns a copy of v scaled to unit length. A zero vector is
// returned unchanged (norm 0 would divide by zero).
func l2Normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return append([]float32(nil), v...)
	}
	norm := math.Sqrt(sumSq)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// cosineSimilarity computes the dot product of two already L2-normalized
// vectors of equal length, which equals their cosine similarity.
func cosineSimilarity(a, b []float32) float64 {
	var dot float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// scoredIndex pairs a matrix row index with its similarity score, used for
// top-K selection.
type scoredIndex struct {
	index int
	score float64
}

// topK returns the indices of the k highest-scoring entries in scores that
// meet or exceed threshold, ordered by descending score.
func topK(scores []float64, k int, threshold float64) []scoredIndex {
	candidates := make([]scoredIndex, 0, len(scores))
	for i, s := range scores {
		if s >= threshold {
			candidates = append(candidates, scoredIndex{index: i, score: s})
		}
	}
	// Partial selection sort: k is small (default 10) relative to cache
	// size, so this beats a full sort.
	if k > len(candidates) {
		k = len(candidates)
	}
	for i := 0; i < k; i++ {
		best := i
		for j := i + 1; j < len(candidates); j++ {
			if candidates[j].score > candidates[best].score {
				best = j
			}
		}
		candidates[i], candidates[best] = candidates[best], candidates[i]
	}
	return candidates[:k]
}
