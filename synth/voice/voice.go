// Package voice implements one polyphonic slot: the binding of a note to
// the engine's shared algorithm and operator set, with its own amplitude
// envelope and its own absolute sample counter for phase continuity.
package voice

import (
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-fm/synth/algorithm"
	"github.com/cwbudde/algo-fm/synth/core"
	"github.com/cwbudde/algo-fm/synth/envelope"
	"github.com/cwbudde/algo-fm/synth/note"
	"github.com/cwbudde/algo-fm/synth/operator"
)

// Voice is one pool slot. It is exclusively owned by the engine and never
// shared between execution contexts.
//
// A voice moves through three effective states derived from the active
// flag and the envelope: free (finished), sounding (active) and releasing
// (inactive but the envelope is still draining).
type Voice struct {
	active    bool
	number    int
	frequency float64
	source    note.Source
	env       *envelope.Generator

	// samplesElapsed counts samples since the last trigger; it seeds the
	// algorithm's start sample so phase stays continuous across buffers.
	samplesElapsed uint64

	raw []float64
}

// New creates a free voice with the default envelope.
func New() *Voice {
	return NewWithEnvelope(envelope.DefaultConfig())
}

// NewWithEnvelope creates a free voice with a specific envelope timing.
func NewWithEnvelope(cfg envelope.Config) *Voice {
	return &Voice{env: envelope.New(cfg)}
}

// Activate binds the voice to a note, resets the sample counter and
// triggers the envelope. It serves both fresh voices and retriggering a
// voice mid-release.
func (v *Voice) Activate(number int, source note.Source, frequency float64) {
	v.active = true
	v.number = number
	v.source = source
	v.frequency = frequency
	v.samplesElapsed = 0
	v.env.Trigger()
}

// Release starts the envelope's release phase and stops the voice from
// accepting further triggers. Duplicate note-offs are harmless: a voice
// that is neither active nor still sounding is left untouched.
func (v *Voice) Release() {
	if !v.active && v.env.IsFinished() {
		return
	}
	v.env.Release()
	v.active = false
}

// IsFinished reports whether the voice is free for reuse: not active and
// its envelope fully drained. This is the pool's sole reuse criterion.
func (v *Voice) IsFinished() bool {
	return !v.active && v.env.IsFinished()
}

// Active reports whether the voice is sounding and accepting triggers.
func (v *Voice) Active() bool {
	return v.active
}

// Number returns the bound MIDI note number.
func (v *Voice) Number() int {
	return v.number
}

// Frequency returns the bound note frequency in Hz.
func (v *Voice) Frequency() float64 {
	return v.frequency
}

// Matches reports whether the voice is bound to the given note number
// and source.
func (v *Voice) Matches(number int, source note.Source) bool {
	return v.number == number && v.source == source
}

// SamplesElapsed returns the absolute sample position since the last
// trigger. The engine's stealing heuristics use it as a voice age.
func (v *Voice) SamplesElapsed() uint64 {
	return v.samplesElapsed
}

// Process renders this voice through the shared algorithm and operator
// set, applies the envelope and additively mixes the result into output.
// It returns the mean-square energy of this voice's own contribution,
// measured after the envelope; the engine sums these per-voice energies
// for output gain normalization. Finished voices and zero-length buffers
// are no-ops with zero energy.
//
// The sample counter advances even when the algorithm fails: the voice
// degraded to silence for this buffer, and resuming phase where it left
// off keeps the next buffer continuous. The error is returned for the
// engine to report.
func (v *Voice) Process(alg *algorithm.Algorithm, ops []*operator.Operator, output []float64, sampleRate float64) (float64, error) {
	if v.IsFinished() || len(output) == 0 {
		return 0, nil
	}

	v.raw = core.EnsureLen(v.raw, len(output))
	err := alg.Process(ops, v.frequency, v.raw, sampleRate, v.samplesElapsed)

	v.env.Apply(v.raw, sampleRate)
	energy := vecmath.DotProduct(v.raw, v.raw) / float64(len(v.raw))
	vecmath.AddBlockInPlace(output, v.raw)
	v.samplesElapsed += uint64(len(output))
	return energy, err
}
