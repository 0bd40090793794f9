// Package filter provides the lightweight per-operator filters: one-pole
// low-pass and high-pass sections and a band-pass composed from both.
//
// The filters are seeded from the first sample of each buffer rather than
// carrying state across calls, so they are cheap, allocation-free and safe
// to share between voices that process disjoint buffers.
package filter

import "math"

// Filter processes a sample buffer in place.
type Filter interface {
	Process(buf []float64, sampleRate float64)
}

type lowPass struct {
	cutoff float64
}

// LowPass returns a one-pole low-pass filter with the given cutoff in Hz.
func LowPass(cutoffHz float64) Filter {
	return lowPass{cutoff: cutoffHz}
}

func (f lowPass) Process(buf []float64, sampleRate float64) {
	if len(buf) == 0 {
		return
	}
	rc := 1 / (f.cutoff * 2 * math.Pi)
	dt := 1 / sampleRate
	alpha := dt / (rc + dt)

	previous := buf[0]
	for i := range buf {
		buf[i] = previous + alpha*(buf[i]-previous)
		previous = buf[i]
	}
}

type highPass struct {
	cutoff float64
}

// HighPass returns a one-pole high-pass filter with the given cutoff in Hz.
func HighPass(cutoffHz float64) Filter {
	return highPass{cutoff: cutoffHz}
}

func (f highPass) Process(buf []float64, sampleRate float64) {
	if len(buf) == 0 {
		return
	}
	rc := 1 / (f.cutoff * 2 * math.Pi)
	dt := 1 / sampleRate
	alpha := rc / (rc + dt)

	previousInput := buf[0]
	previousOutput := buf[0]
	for i := range buf {
		in := buf[i]
		buf[i] = alpha * (previousOutput + in - previousInput)
		previousInput = in
		previousOutput = buf[i]
	}
}

type bandPass struct {
	low  Filter
	high Filter
}

// BandPass returns a band-pass filter around center with the given
// bandwidth, built from a low-pass and a high-pass section.
func BandPass(centerHz, bandwidthHz float64) Filter {
	return bandPass{
		low:  LowPass(centerHz + bandwidthHz/2),
		high: HighPass(centerHz - bandwidthHz/2),
	}
}

func (f bandPass) Process(buf []float64, sampleRate float64) {
	f.low.Process(buf, sampleRate)
	f.high.Process(buf, sampleRate)
}
