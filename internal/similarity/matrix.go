// Package similarity holds the precomputed pairwise similarity matrix.
// The matrix is a plain dense N×N table with row-major access, aligned with
// catalog order, and read-only after construction.
package similarity

import (
	"fmt"
	"math"
)

// Matrix is an N×N table of pairwise similarity scores in [0,1].
// The diagonal is self-similarity (1.0 for any non-empty feature vector).
type Matrix struct {
	n      int
	scores []float64
}

// NewMatrix wraps a row-major score slice. len(scores) must equal n*n.
func NewMatrix(n int, scores []float64) (*Matrix, error) {
	if n < 0 {
		return nil, fmt.Errorf("matrix size must be non-negative, got %d", n)
	}
	if len(scores) != n*n {
		return nil, fmt.Errorf("expected %d scores for a %dx%d matrix, got %d", n*n, n, n, len(scores))
	}
	return &Matrix{n: n, scores: scores}, nil
}

// N returns the matrix dimension.
func (m *Matrix) N() int { return m.n }

// At returns the score at row i, column j.
func (m *Matrix) At(i, j int) float64 { return m.scores[i*m.n+j] }

// Row returns row i as a read-only view into the underlying storage.
// Callers must not mutate it.
func (m *Matrix) Row(i int) []float64 { return m.scores[i*m.n : (i+1)*m.n] }

// CheckSymmetry verifies score[i][j] == score[j][i] within tol. The matrix
// is produced offline; this is a diagnostic for the prepare tool and tests,
// not a serving-path check.
func (m *Matrix) CheckSymmetry(tol float64) error {
	for i := 0; i < m.n; i++ {
		for j := i + 1; j < m.n; j++ {
			if math.Abs(m.At(i, j)-m.At(j, i)) > tol {
				return fmt.Errorf("asymmetric scores at (%d,%d): %g vs %g", i, j, m.At(i, j), m.At(j, i))
			}
		}
	}
	return nil
}
