// Package envelope implements the per-voice ADSR gain envelope.
//
// The generator is a five-state machine (idle, attack, decay, sustain,
// release) advanced sample-by-sample over whole buffers. Triggering does
// not reset the current level, so retriggering a releasing voice restarts
// the attack from wherever the envelope happens to be, which avoids an
// audible level jump.
package envelope

import "github.com/cwbudde/algo-fm/synth/core"

// State identifies an envelope stage.
type State int

const (
	StateIdle State = iota
	StateAttack
	StateDecay
	StateSustain
	StateRelease
)

// minLevel is the release floor below which the envelope snaps to idle.
const minLevel = 0.001

// Config holds the ADSR timing parameters. Attack, Decay and Release are
// in seconds, Sustain is the hold level in [0, 1].
type Config struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
}

// DefaultConfig returns the engine's default envelope timing.
func DefaultConfig() Config {
	return Config{
		Attack:  0.01,
		Decay:   0.1,
		Sustain: 0.7,
		Release: 0.2,
	}
}

// sanitize clamps the configuration to usable values. Times shorter than
// one sample at common rates behave as immediate transitions.
func (c Config) sanitize() Config {
	const minSeconds = 1e-6
	if c.Attack < minSeconds {
		c.Attack = minSeconds
	}
	if c.Decay < minSeconds {
		c.Decay = minSeconds
	}
	if c.Release < minSeconds {
		c.Release = minSeconds
	}
	c.Sustain = core.Clamp(c.Sustain, 0, 1)
	return c
}

// Generator is a single ADSR envelope instance. One generator belongs to
// exactly one voice; it is not safe for concurrent use.
type Generator struct {
	cfg          Config
	value        float64
	state        State
	releaseStart float64
}

// New creates an idle generator with the given configuration.
func New(cfg Config) *Generator {
	return &Generator{cfg: cfg.sanitize()}
}

// Config returns the generator's timing parameters.
func (g *Generator) Config() Config {
	return g.cfg
}

// State returns the current stage.
func (g *Generator) State() State {
	return g.state
}

// Value returns the current envelope level in [0, 1].
func (g *Generator) Value() float64 {
	return g.value
}

// Trigger forces the state to attack regardless of the current stage.
// The level is deliberately not reset, so a retrigger restarts softly
// from the current value.
func (g *Generator) Trigger() {
	g.state = StateAttack
}

// Release transitions to the release stage, snapshotting the current
// level as the release starting point. It is a no-op when already idle.
func (g *Generator) Release() {
	if g.state == StateIdle {
		return
	}
	g.state = StateRelease
	g.releaseStart = g.value
}

// IsFinished reports whether the envelope is idle with zero level.
func (g *Generator) IsFinished() bool {
	return g.state == StateIdle && g.value == 0
}

// Apply advances the state machine over the whole buffer, multiplying
// every sample by the post-transition envelope level at that index.
//
// The per-sample step sizes are computed once from the level at the start
// of the buffer; in particular the release step stays fixed across the
// buffer even as the level falls.
func (g *Generator) Apply(output []float64, sampleRate float64) {
	attackStep := 1 / (g.cfg.Attack * sampleRate)
	decayStep := (1 - g.cfg.Sustain) / (g.cfg.Decay * sampleRate)
	releaseStep := g.value / (g.cfg.Release * sampleRate)

	for i := range output {
		switch g.state {
		case StateAttack:
			g.value += attackStep
			if g.value >= 1 {
				g.value = 1
				g.state = StateDecay
			}
		case StateDecay:
			g.value -= decayStep
			if g.value <= g.cfg.Sustain {
				g.value = g.cfg.Sustain
				g.state = StateSustain
			}
		case StateSustain:
			// Hold.
		case StateRelease:
			g.value -= releaseStep
			if g.value <= minLevel {
				g.value = 0
				g.state = StateIdle
			}
		case StateIdle:
			g.value = 0
		}

		output[i] *= g.value
	}
}
