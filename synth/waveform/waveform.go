// Package waveform provides the buffer-based oscillator primitives used by
// FM operators: a fixed family of waveform functions evaluated at an
// absolute phase plus a per-sample phase modulation input.
package waveform

import (
	"fmt"
	"math"
	"math/rand"
)

// Type identifies a waveform function.
type Type int

const (
	Sine Type = iota
	Square
	Sawtooth
	Triangle
	Noise
)

// typeCount is the length of the waveform cycle.
const typeCount = 5

// String returns the waveform name.
func (t Type) String() string {
	switch t {
	case Sine:
		return "sine"
	case Square:
		return "square"
	case Sawtooth:
		return "sawtooth"
	case Triangle:
		return "triangle"
	case Noise:
		return "noise"
	default:
		return fmt.Sprintf("waveform(%d)", int(t))
	}
}

// Next returns the following waveform in the fixed cyclic order
// sine, square, sawtooth, triangle, noise.
func (t Type) Next() Type {
	return (t + 1) % typeCount
}

// Prev returns the preceding waveform in the cycle.
func (t Type) Prev() Type {
	return (t + typeCount - 1) % typeCount
}

// Generator evaluates one waveform into sample buffers. It is stateless
// apart from the selected waveform and the noise source, so a single
// generator can serve any number of frequencies.
type Generator struct {
	waveform Type
	rng      *rand.Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets the deterministic seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed))
	}
}

// NewGenerator creates a generator for the given waveform.
func NewGenerator(t Type, opts ...Option) *Generator {
	g := &Generator{
		waveform: t,
		rng:      rand.New(rand.NewSource(1)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Type returns the currently selected waveform.
func (g *Generator) Type() Type {
	return g.waveform
}

// Set selects the waveform directly.
func (g *Generator) Set(t Type) {
	g.waveform = t
}

// Next advances the waveform one step forward through the cycle.
func (g *Generator) Next() {
	g.waveform = g.waveform.Next()
}

// Prev steps the waveform backward through the cycle.
func (g *Generator) Prev() {
	g.waveform = g.waveform.Prev()
}

// Generate fills output with samples of the selected waveform.
//
// The phase of sample i is phaseOffset + 2π·freqHz/sampleRate·i +
// modulation[i], where modulation is a per-sample phase perturbation in
// radians. modulation may be nil (no modulation) but must otherwise be
// at least as long as output. Noise ignores
// phase entirely and draws uniform values in [-1, 1).
func (g *Generator) Generate(freqHz, sampleRate, phaseOffset float64, output, modulation []float64) {
	if len(output) == 0 {
		return
	}

	if g.waveform == Noise {
		for i := range output {
			output[i] = g.rng.Float64()*2 - 1
		}
		return
	}

	wave := waveFunc(g.waveform)
	step := 2 * math.Pi * freqHz / sampleRate
	if modulation == nil {
		for i := range output {
			output[i] = wave(phaseOffset + step*float64(i))
		}
		return
	}
	for i := range output {
		phase := phaseOffset + step*float64(i) + modulation[i]
		output[i] = wave(phase)
	}
}

func waveFunc(t Type) func(float64) float64 {
	switch t {
	case Square:
		return func(phase float64) float64 {
			if math.Sin(phase) >= 0 {
				return 1
			}
			return -1
		}
	case Sawtooth:
		return func(phase float64) float64 {
			cycles := phase / (2 * math.Pi)
			return 2 * (cycles - math.Floor(cycles+0.5))
		}
	case Triangle:
		return func(phase float64) float64 {
			return (2 / math.Pi) * math.Asin(math.Sin(phase))
		}
	default:
		return math.Sin
	}
}
