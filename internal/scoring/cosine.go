// Package scoring combines embedding similarity, keyword coverage, and an
// LLM fit judgment into a single composite fitness score.
package scoring

import "math"

// Cosine returns the cosine similarity of two vectors. Mismatched or empty
// vectors and zero-norm vectors yield 0.0 rather than dividing by zero.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
