package campaign

import "math"

// mean returns the arithmetic mean of samples. Callers guarantee
// len(samples) >= 1.
func mean(samples []float64) float64 {
	sum := 0.0
	for _, v := range samples {
		sum += v
	}
	return sum / float64(len(samples))
}

// sampleStdDev returns the Bessel-corrected sample standard deviation
// (n-1 divisor). Callers guarantee len(samples) >= 2; with a single
// sample the standard deviation is undefined, not zero.
func sampleStdDev(samples []float64) float64 {
	m := mean(samples)
	sum := 0.0
	for _, v := range samples {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(samples)-1))
}
