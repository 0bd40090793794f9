package testutil

import (
	"math"
	"testing"

	algofft "github.com/cwbudde/algo-fft"
)

// Spectrum returns the magnitude spectrum of signal, zero-padded to the
// next power of two. Bin k corresponds to k*sampleRate/fftSize Hz.
func Spectrum(t *testing.T, signal []float64) []float64 {
	t.Helper()

	fftSize := 1
	for fftSize < len(signal) {
		fftSize *= 2
	}

	in := make([]complex128, fftSize)
	for i, v := range signal {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		t.Fatalf("fft plan: %v", err)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		t.Fatalf("fft forward: %v", err)
	}

	mags := make([]float64, fftSize/2+1)
	for k := range mags {
		mags[k] = math.Hypot(real(out[k]), imag(out[k]))
	}
	return mags
}

// DominantFrequency returns the frequency in Hz of the strongest
// non-DC spectral bin.
func DominantFrequency(t *testing.T, signal []float64, sampleRate float64) float64 {
	t.Helper()

	mags := Spectrum(t, signal)
	fftSize := 2 * (len(mags) - 1)

	best := 1
	for k := 2; k < len(mags); k++ {
		if mags[k] > mags[best] {
			best = k
		}
	}
	return float64(best) * sampleRate / float64(fftSize)
}
