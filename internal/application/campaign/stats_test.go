package campaign

import (
	"math"
	"testing"
)

func TestMean(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		want    float64
	}{
		{"single", []float64{-4.2}, -4.2},
		{"pair", []float64{1.0, 3.0}, 2.0},
		{"negatives", []float64{-1.0, -2.0, -3.0}, -2.0},
		{"mixed", []float64{-5.0, 5.0}, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mean(tt.samples)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("mean(%v) = %g, want %g", tt.samples, got, tt.want)
			}
		})
	}
}

func TestSampleStdDev(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		want    float64
	}{
		{"identical", []float64{2.0, 2.0, 2.0}, 0.0},
		{"pair", []float64{1.0, 3.0}, math.Sqrt2},
		{"spread", []float64{-6.0, -5.0, -4.0}, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sampleStdDev(tt.samples)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("sampleStdDev(%v) = %g, want %g", tt.samples, got, tt.want)
			}
		})
	}
}

func TestSampleStdDevUsesBesselCorrection(t *testing.T) {
	// Population stddev of {0, 2} is 1; the sample estimator divides
	// by n-1 and must give sqrt(2).
	got := sampleStdDev([]float64{0.0, 2.0})
	if math.Abs(got-math.Sqrt2) > 1e-12 {
		t.Errorf("sampleStdDev({0,2}) = %g, want %g", got, math.Sqrt2)
	}
}
