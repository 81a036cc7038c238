// Package match implements reference-based face retrieval: it scans a
// corpus of images, compares every detected face against a reference
// embedding, and streams the results as an ordered event channel.
package match

// Confidence converts an embedding distance to a percentage. The value is
// deliberately not clamped: a distance above 1 yields a negative
// confidence and a distance below 0 would exceed 100.
func Confidence(distance float64) float64 {
	return (1 - distance) * 100
}

// IsMatch applies the dual threshold gate: the distance must be within
// tolerance AND the confidence must reach minConfidence. Both checks are
// kept even though they look correlated; they diverge once distances
// exceed 1, and tightening either threshold can only shrink the match set.
func IsMatch(distance, confidence, tolerance, minConfidence float64) bool {
	return distance <= tolerance && confidence >= minConfidence
}
