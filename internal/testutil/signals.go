package testutil

import "math"

// DeterministicSine generates a sine wave with an explicit start phase.
func DeterministicSine(freqHz, sampleRate, amplitude, startPhase float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(startPhase+step*float64(i))
	}
	return out
}

// Zeros returns a zeroed slice of length n.
func Zeros(n int) []float64 {
	return make([]float64, n)
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}
