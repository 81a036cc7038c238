package match

import (
	"math"
	"testing"
)

func TestConfidence(t *testing.T) {
	tests := []struct {
		distance float64
		expected float64
	}{
		{0, 100},
		{0.3, 70},
		{0.45, 55},
		{0.6, 40},
		{1, 0},
		{1.5, -50},  // not clamped below zero
		{-0.2, 120}, // not clamped above 100
	}

	for _, tt := range tests {
		result := Confidence(tt.distance)
		if math.Abs(result-tt.expected) > 1e-9 {
			t.Errorf("Confidence(%v) = %v, want %v", tt.distance, result, tt.expected)
		}
	}
}

func TestIsMatch(t *testing.T) {
	tests := []struct {
		name          string
		distance      float64
		tolerance     float64
		minConfidence float64
		expected      bool
	}{
		{"clear match", 0.3, 0.6, 55, true},
		{"boundary distance", 0.6, 0.6, 40, true},
		{"distance too far", 0.7, 0.6, 0, false},
		{"confidence too low", 0.5, 0.6, 55, false},
		{"both gates fail", 0.9, 0.6, 55, false},
		{"distance passes but confidence gate blocks", 0.5, 0.9, 55, false},
		{"zero distance", 0, 0.6, 55, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confidence := Confidence(tt.distance)
			result := IsMatch(tt.distance, confidence, tt.tolerance, tt.minConfidence)
			if result != tt.expected {
				t.Errorf("IsMatch(d=%v, c=%v, tol=%v, minConf=%v) = %v, want %v",
					tt.distance, confidence, tt.tolerance, tt.minConfidence, result, tt.expected)
			}
		})
	}
}

// Tightening either threshold must never turn a non-match into a match.
func TestIsMatchMonotonic(t *testing.T) {
	distances := []float64{0, 0.1, 0.3, 0.45, 0.6, 0.75, 1, 1.3}
	tolerances := []float64{0.3, 0.45, 0.6, 0.8}
	confidences := []float64{40, 55, 70, 85}

	for _, d := range distances {
		c := Confidence(d)
		for _, t1 := range tolerances {
			for _, c1 := range confidences {
				if !IsMatch(d, c, t1, c1) {
					continue
				}
				// Any looser pair must also match.
				for _, t2 := range tolerances {
					for _, c2 := range confidences {
						if t2 >= t1 && c2 <= c1 && !IsMatch(d, c, t2, c2) {
							t.Errorf("distance %v matched (tol=%v, conf=%v) but not looser (tol=%v, conf=%v)",
								d, t1, c1, t2, c2)
						}
					}
				}
			}
		}
	}
}
