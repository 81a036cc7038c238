package extract

import "math"

// Distance returns the Euclidean distance between two embedding vectors in
// the extraction service's embedding space. Lower means more similar.
// Mismatched or empty vectors are maximally distant.
func Distance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
