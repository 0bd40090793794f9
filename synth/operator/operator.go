// Package operator implements a single FM operator: a waveform generator
// combined with a frequency ratio (or fixed frequency), a modulation index
// used when the operator acts as a modulator, an output gain and an
// optional output filter.
//
// The operator set is owned by the engine and shared by reference across
// all voices, so mutating an operator (for example cycling its waveform)
// affects every voice from the next buffer onward.
package operator

import (
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-fm/synth/filter"
	"github.com/cwbudde/algo-fm/synth/waveform"
)

// CycleDirection selects which way to step through the waveform cycle.
type CycleDirection int

const (
	CycleForward CycleDirection = iota
	CycleBackward
)

// Event is a control event applied to the engine's shared operator set.
type Event interface {
	operatorEvent()
}

// CycleWaveform cycles every operator's waveform one step.
type CycleWaveform struct {
	Direction CycleDirection
}

func (CycleWaveform) operatorEvent() {}

// Operator is one FM oscillator unit. It is not safe for concurrent use;
// the engine mutates and reads it exclusively from the audio context.
type Operator struct {
	// FrequencyRatio scales the voice's base frequency. Ignored when
	// FixedFrequency is set.
	FrequencyRatio float64
	// FixedFrequency pins the operator to an absolute frequency in Hz
	// when > 0; at 0 the operator tracks FrequencyRatio.
	FixedFrequency float64
	// ModulationIndex scales this operator's output before it perturbs
	// a target operator's phase.
	ModulationIndex float64
	// Gain scales the operator's own output.
	Gain float64
	// Filter, when non-nil, is applied to the operator output after gain.
	Filter filter.Filter

	gen *waveform.Generator
}

// New returns an operator with the default patch: sine waveform, ratio 1,
// modulation index 1, unity gain, no filter.
func New() *Operator {
	return &Operator{
		FrequencyRatio:  1,
		ModulationIndex: 1,
		Gain:            1,
		gen:             waveform.NewGenerator(waveform.Sine),
	}
}

// Waveform returns the operator's current waveform.
func (o *Operator) Waveform() waveform.Type {
	return o.gen.Type()
}

// SetWaveform assigns the waveform directly.
func (o *Operator) SetWaveform(t waveform.Type) {
	o.gen.Set(t)
}

// CycleWaveform steps the waveform through the fixed cycle.
func (o *Operator) CycleWaveform(direction CycleDirection) {
	if direction == CycleBackward {
		o.gen.Prev()
		return
	}
	o.gen.Next()
}

// SetGain sets the operator output gain.
func (o *Operator) SetGain(gain float64) {
	o.Gain = gain
}

// Frequency resolves the sounding frequency for a voice base frequency.
func (o *Operator) Frequency(baseFrequency float64) float64 {
	if o.FixedFrequency > 0 {
		return o.FixedFrequency
	}
	return baseFrequency * o.FrequencyRatio
}

// Process fills output with this operator's signal for a voice playing at
// baseFrequency. modulation is a per-sample phase perturbation in radians
// and must be at least as long as output. startSample is the absolute
// sample index of the first output sample since the voice was triggered;
// the phase offset derived from it keeps phase continuous across buffer
// boundaries regardless of buffer size.
func (o *Operator) Process(baseFrequency float64, output, modulation []float64, sampleRate float64, startSample uint64) {
	if len(output) == 0 {
		return
	}

	freq := o.Frequency(baseFrequency)
	step := 2 * math.Pi * freq / sampleRate
	phaseOffset := math.Mod(float64(startSample)*step, 2*math.Pi)

	o.gen.Generate(freq, sampleRate, phaseOffset, output, modulation)
	vecmath.ScaleBlockInPlace(output, o.Gain)

	if o.Filter != nil {
		o.Filter.Process(output, sampleRate)
	}
}
