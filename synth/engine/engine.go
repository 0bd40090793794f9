// Package engine combines the voice pool, operator bank and modulation
// algorithm into a complete polyphonic FM synthesizer with output gain
// management. A single goroutine (normally the audio callback) owns
// Process; note and operator events arrive from other goroutines
// through bounded queues.
package engine

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-fm/synth/algorithm"
	"github.com/cwbudde/algo-fm/synth/core"
	"github.com/cwbudde/algo-fm/synth/note"
	"github.com/cwbudde/algo-fm/synth/operator"
	"github.com/cwbudde/algo-fm/synth/voice"
	"github.com/cwbudde/algo-fm/synth/waveform"
)

// ErrPatchMismatch is returned when the configured algorithm and operator
// bank disagree on the operator count.
var ErrPatchMismatch = errors.New("algorithm and operator bank sizes differ")

const (
	// DefaultMasterVolume is the startup output level.
	DefaultMasterVolume = 0.65

	// eventQueueSize bounds the pending note and operator event queues.
	eventQueueSize = 256

	// limiterThreshold is the level above which the output limiter
	// starts attenuating samples.
	limiterThreshold = 0.9

	// Crossfade bounds: the output gain ramps over 5 ms for small gain
	// changes, stretching toward 20 ms for large ones.
	fadeMinMs  = 5.0
	fadeSpanMs = 15.0
)

// Option configures an Engine beyond the shared core settings.
type Option func(*settings)

type settings struct {
	logger  *log.Logger
	master  float64
	stealer Stealer
	alg     *algorithm.Algorithm
	ops     []*operator.Operator
}

// WithLogger sets the logger used for dropped events, voice stealing and
// processing faults.
func WithLogger(logger *log.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMasterVolume sets the initial master volume, clamped to [0, 1].
func WithMasterVolume(volume float64) Option {
	return func(s *settings) {
		s.master = core.Clamp(volume, 0, 1)
	}
}

// WithStealer sets the voice stealing strategy used when the pool is full.
func WithStealer(stealer Stealer) Option {
	return func(s *settings) {
		if stealer != nil {
			s.stealer = stealer
		}
	}
}

// WithAlgorithm sets the modulation routing. The algorithm's operator
// count overrides the core operator count unless WithOperators is also
// given, in which case both must agree.
func WithAlgorithm(alg *algorithm.Algorithm) Option {
	return func(s *settings) {
		if alg != nil {
			s.alg = alg
		}
	}
}

// WithOperators replaces the default operator bank.
func WithOperators(ops []*operator.Operator) Option {
	return func(s *settings) {
		if len(ops) > 0 {
			s.ops = ops
		}
	}
}

// Engine is a polyphonic FM synthesizer. All voices share one operator
// bank and one modulation algorithm; each voice adds its own envelope
// and phase position.
type Engine struct {
	cfg    core.EngineConfig
	logger *log.Logger

	alg     *algorithm.Algorithm
	ops     []*operator.Operator
	voices  []*voice.Voice
	stealer Stealer

	noteQueue chan note.Event
	opQueue   chan operator.Event

	masterBits  atomic.Uint64
	currentGain float64
}

// New creates an engine from shared core options plus engine-specific
// options. Without options it produces the default patch: a feedback
// carrier plus a sawtooth modulator routed through Feedback1.
func New(coreOpts []core.Option, opts ...Option) (*Engine, error) {
	cfg := core.ApplyOptions(coreOpts...)

	s := settings{
		logger: log.Default(),
		master: DefaultMasterVolume,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	if s.stealer == nil {
		s.stealer = StealFirst{}
	}

	opCount := cfg.OperatorCount
	if s.ops != nil {
		opCount = len(s.ops)
	} else if s.alg != nil {
		opCount = s.alg.NumOperators()
	}

	if s.alg == nil {
		alg, err := algorithm.Feedback1(opCount)
		if err != nil {
			return nil, fmt.Errorf("default algorithm: %w", err)
		}
		s.alg = alg
	}
	if s.alg.NumOperators() != opCount {
		return nil, fmt.Errorf("%w: algorithm wants %d operators, bank has %d",
			ErrPatchMismatch, s.alg.NumOperators(), opCount)
	}

	if s.ops == nil {
		s.ops = defaultOperators(opCount)
	}
	cfg.OperatorCount = opCount

	voices := make([]*voice.Voice, cfg.MaxVoices)
	for i := range voices {
		voices[i] = voice.New()
	}

	e := &Engine{
		cfg:         cfg,
		logger:      s.logger,
		alg:         s.alg,
		ops:         s.ops,
		voices:      voices,
		stealer:     s.stealer,
		noteQueue:   make(chan note.Event, eventQueueSize),
		opQueue:     make(chan operator.Event, eventQueueSize),
		currentGain: s.master,
	}
	e.masterBits.Store(math.Float64bits(s.master))
	return e, nil
}

// defaultOperators builds the startup patch: a triangle carrier and,
// when present, a sawtooth first modulator. Remaining operators stay
// sine at unity ratio.
func defaultOperators(count int) []*operator.Operator {
	ops := make([]*operator.Operator, count)
	for i := range ops {
		ops[i] = operator.New()
	}
	if count > 0 {
		ops[0].SetWaveform(waveform.Triangle)
	}
	if count > 1 {
		ops[1].SetWaveform(waveform.Sawtooth)
	}
	return ops
}

// Config returns the engine's shared processing settings.
func (e *Engine) Config() core.EngineConfig {
	return e.cfg
}

// Operators returns the shared operator bank. Mutating operators while
// Process runs on another goroutine is not safe; use SendOperatorEvent
// instead.
func (e *Engine) Operators() []*operator.Operator {
	return e.ops
}

// MasterVolume returns the current master volume.
func (e *Engine) MasterVolume() float64 {
	return math.Float64frombits(e.masterBits.Load())
}

// SetMasterVolume sets the master volume, clamped to [0, 1]. It is safe
// to call from any goroutine; the new value takes effect on the next
// processed buffer through the gain crossfade.
func (e *Engine) SetMasterVolume(volume float64) {
	e.masterBits.Store(math.Float64bits(core.Clamp(volume, 0, 1)))
}

// SetBufferSize records the buffer size negotiated by the audio backend.
// Voices grow their scratch buffers on demand, so this only adjusts the
// expected block size. Call it from the processing goroutine.
func (e *Engine) SetBufferSize(n int) {
	if n > 0 {
		e.cfg.BlockSize = n
	}
}

// SendNote queues a note event for the next processed buffer. It never
// blocks; when the queue is full the event is dropped and reported
// through the logger.
func (e *Engine) SendNote(ev note.Event) bool {
	select {
	case e.noteQueue <- ev:
		return true
	default:
		e.logger.Printf("engine: note queue full, dropping %s note %d", ev.Source, ev.Number)
		return false
	}
}

// SendOperatorEvent queues an operator change for the next processed
// buffer. It never blocks; a full queue drops the event.
func (e *Engine) SendOperatorEvent(ev operator.Event) bool {
	select {
	case e.opQueue <- ev:
		return true
	default:
		e.logger.Printf("engine: operator queue full, dropping event")
		return false
	}
}

// ActiveVoices returns the number of voices that still produce sound.
func (e *Engine) ActiveVoices() int {
	n := 0
	for _, v := range e.voices {
		if !v.IsFinished() {
			n++
		}
	}
	return n
}

// Process renders one buffer of mono samples into output. It drains
// pending events, mixes all sounding voices, normalizes the mix level
// and applies the output limiter. Only one goroutine may call Process.
func (e *Engine) Process(output []float64) {
	e.drainEvents()

	core.Zero(output)
	if len(output) == 0 {
		return
	}

	totalEnergy := 0.0
	for _, v := range e.voices {
		if v.IsFinished() {
			continue
		}
		energy, err := v.Process(e.alg, e.ops, output, e.cfg.SampleRate)
		if err != nil {
			e.logger.Printf("engine: voice render: %v", err)
		}
		totalEnergy += energy
	}

	target := e.targetGain(totalEnergy)
	e.applyGain(output, target)
	limit(output)
}

func (e *Engine) drainEvents() {
notes:
	for {
		select {
		case ev := <-e.noteQueue:
			e.handleNote(ev)
		default:
			break notes
		}
	}
	for {
		select {
		case ev := <-e.opQueue:
			e.handleOperatorEvent(ev)
		default:
			return
		}
	}
}

func (e *Engine) handleNote(ev note.Event) {
	if !ev.On {
		for _, v := range e.voices {
			if !v.IsFinished() && v.Matches(ev.Number, ev.Source) {
				v.Release()
			}
		}
		return
	}

	for _, v := range e.voices {
		if v.IsFinished() {
			v.Activate(ev.Number, ev.Source, ev.Frequency)
			return
		}
	}

	idx := e.stealer.Choose(e.voices)
	if idx < 0 || idx >= len(e.voices) {
		idx = 0
	}
	e.logger.Printf("engine: pool full, stealing voice %d for note %d", idx, ev.Number)
	e.voices[idx].Activate(ev.Number, ev.Source, ev.Frequency)
}

func (e *Engine) handleOperatorEvent(ev operator.Event) {
	switch ev := ev.(type) {
	case operator.CycleWaveform:
		for _, op := range e.ops {
			op.CycleWaveform(ev.Direction)
		}
	default:
		e.logger.Printf("engine: unknown operator event %T", ev)
	}
}

// targetGain derives the output gain from the summed per-voice energies
// so that stacked voices do not grow louder without bound. Summing the
// voices' own mean-square energies, rather than measuring the mixed
// buffer, keeps the normalization independent of phase correlation
// between voices.
func (e *Engine) targetGain(energy float64) float64 {
	energyGain := 1.0
	if energy > 0 {
		energyGain = 1 / (1 + math.Sqrt(energy)*2.5)
	}
	return energyGain * e.MasterVolume()
}

// applyGain ramps the output gain from the previous buffer's gain to
// target with a smoothstep crossfade. The fade length scales with the
// size of the gain change so small corrections stay short.
func (e *Engine) applyGain(output []float64, target float64) {
	current := e.currentGain
	ratio := 1.0
	if current > 0 {
		ratio = target / current
	}
	fadeMs := fadeMinMs + math.Min(math.Abs(1-ratio), 1)*fadeSpanMs
	fadeSamples := int(fadeMs * e.cfg.SampleRate / 1000)
	if fadeSamples > len(output) {
		fadeSamples = len(output)
	}

	for i := 0; i < fadeSamples; i++ {
		t := float64(i) / float64(fadeSamples)
		smooth := t * t * (3 - 2*t)
		output[i] *= current + (target-current)*smooth
	}
	if fadeSamples < len(output) {
		vecmath.ScaleBlockInPlace(output[fadeSamples:], target)
	}
	e.currentGain = target
}

// limit applies a soft-knee limiter above limiterThreshold: unity gain
// at the threshold, falling linearly so that a sample at 1.0 comes out
// at 0.9. Output stays within [-1, 1] for input peaks up to 2.
func limit(output []float64) {
	for i, s := range output {
		if a := math.Abs(s); a > limiterThreshold {
			output[i] = s * (1 - (a - limiterThreshold))
		}
	}
}
