package vectorize

import "math"

// Cosine computes the cosine similarity between two equal-length vectors.
// Zero-magnitude vectors (no known tokens) have zero similarity to
// everything, including themselves.
func Cosine(a, b []float64) float64 {
	var dot, na2, nb2 float64
	for i := range a {
		dot += a[i] * b[i]
		na2 += a[i] * a[i]
		nb2 += b[i] * b[i]
	}
	if na2 == 0 || nb2 == 0 {
		return 0
	}
	return dot / (math.Sqrt(na2) * math.Sqrt(nb2))
}

// SimilarityScores computes the dense pairwise cosine matrix for the given
// vectors, row-major. Symmetry holds by construction: each pair is computed
// once and mirrored.
func SimilarityScores(vectors [][]float64) []float64 {
	n := len(vectors)
	scores := make([]float64, n*n)
	for i := 0; i < n; i++ {
		scores[i*n+i] = Cosine(vectors[i], vectors[i])
		for j := i + 1; j < n; j++ {
			s := Cosine(vectors[i], vectors[j])
			scores[i*n+j] = s
			scores[j*n+i] = s
		}
	}
	return scores
}
