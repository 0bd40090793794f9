package voice

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-fm/internal/testutil"
	"github.com/cwbudde/algo-fm/synth/algorithm"
	"github.com/cwbudde/algo-fm/synth/envelope"
	"github.com/cwbudde/algo-fm/synth/note"
	"github.com/cwbudde/algo-fm/synth/operator"
)

const sampleRate = 44100.0

func simpleSetup(t *testing.T) (*algorithm.Algorithm, []*operator.Operator) {
	t.Helper()
	a, err := algorithm.Simple(1)
	if err != nil {
		t.Fatalf("Simple: %v", err)
	}
	return a, []*operator.Operator{operator.New()}
}

func TestNewIsFinished(t *testing.T) {
	if !New().IsFinished() {
		t.Fatal("fresh voice must be finished")
	}
}

func TestActivate(t *testing.T) {
	v := New()
	v.Activate(69, note.SourceKeyboard, note.Frequency(69))

	if v.IsFinished() {
		t.Fatal("activated voice must not be finished")
	}
	if !v.Active() {
		t.Fatal("activated voice must be active")
	}
	if v.Number() != 69 || v.Frequency() != 440 {
		t.Fatalf("bound note = %d/%v, want 69/440", v.Number(), v.Frequency())
	}
	if v.SamplesElapsed() != 0 {
		t.Fatalf("SamplesElapsed = %d, want 0", v.SamplesElapsed())
	}
}

func TestMatches(t *testing.T) {
	v := New()
	v.Activate(60, note.SourceSequencer, note.Frequency(60))

	if !v.Matches(60, note.SourceSequencer) {
		t.Fatal("expected match")
	}
	if v.Matches(60, note.SourceKeyboard) {
		t.Fatal("source mismatch must not match")
	}
	if v.Matches(61, note.SourceSequencer) {
		t.Fatal("number mismatch must not match")
	}
}

func TestReleaseThenDrainToReusable(t *testing.T) {
	alg, ops := simpleSetup(t)
	v := NewWithEnvelope(envelope.Config{Attack: 0.001, Decay: 0.01, Sustain: 0.5, Release: 0.02})
	v.Activate(69, note.SourceKeyboard, 440)

	buf := make([]float64, 512)
	for i := 0; i < 4; i++ {
		if _, err := v.Process(alg, ops, buf, sampleRate); err != nil {
			t.Fatalf("Process: %v", err)
		}
	}

	v.Release()
	if v.Active() {
		t.Fatal("released voice must not be active")
	}
	if v.IsFinished() {
		t.Fatal("releasing voice is still draining")
	}

	// The release step is recomputed from the level at each buffer
	// start, so the tail decays roughly geometrically per buffer and
	// needs a handful of buffers to cross the idle floor.
	for i := 0; i < 16; i++ {
		if _, err := v.Process(alg, ops, buf, sampleRate); err != nil {
			t.Fatalf("Process: %v", err)
		}
	}
	if !v.IsFinished() {
		t.Fatal("voice must be reusable after the release time")
	}
}

func TestReleaseIdempotent(t *testing.T) {
	v := New()
	v.Release()
	if !v.IsFinished() {
		t.Fatal("releasing a fresh voice must keep it finished")
	}

	v.Activate(60, note.SourceKeyboard, note.Frequency(60))
	v.Release()
	v.Release()
	if v.Active() {
		t.Fatal("voice must stay inactive after duplicate release")
	}
}

func TestRetriggerMidRelease(t *testing.T) {
	alg, ops := simpleSetup(t)
	v := New()
	v.Activate(60, note.SourceKeyboard, note.Frequency(60))

	buf := make([]float64, 256)
	if _, err := v.Process(alg, ops, buf, sampleRate); err != nil {
		t.Fatalf("Process: %v", err)
	}
	v.Release()

	v.Activate(62, note.SourceKeyboard, note.Frequency(62))
	if !v.Active() || v.IsFinished() {
		t.Fatal("retriggered voice must be active")
	}
	if v.SamplesElapsed() != 0 {
		t.Fatalf("SamplesElapsed = %d, want reset to 0", v.SamplesElapsed())
	}
}

func TestProcessAdvancesCounter(t *testing.T) {
	alg, ops := simpleSetup(t)
	v := New()
	v.Activate(69, note.SourceKeyboard, 440)

	buf := make([]float64, 128)
	if _, err := v.Process(alg, ops, buf, sampleRate); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if v.SamplesElapsed() != 128 {
		t.Fatalf("SamplesElapsed = %d, want 128", v.SamplesElapsed())
	}
}

func TestProcessFinishedIsNoOp(t *testing.T) {
	alg, ops := simpleSetup(t)
	v := New()

	buf := testutil.DC(0.5, 64)
	if _, err := v.Process(alg, ops, buf, sampleRate); err != nil {
		t.Fatalf("Process: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, buf, testutil.DC(0.5, 64), 0)
	if v.SamplesElapsed() != 0 {
		t.Fatalf("SamplesElapsed = %d, want 0", v.SamplesElapsed())
	}
}

func TestProcessMixesAdditively(t *testing.T) {
	alg, ops := simpleSetup(t)
	v := New()
	v.Activate(69, note.SourceKeyboard, 440)

	base := testutil.DC(0.25, 256)
	if _, err := v.Process(alg, ops, base, sampleRate); err != nil {
		t.Fatalf("Process: %v", err)
	}

	v2 := New()
	v2.Activate(69, note.SourceKeyboard, 440)
	alone := testutil.Zeros(256)
	if _, err := v2.Process(alg, ops, alone, sampleRate); err != nil {
		t.Fatalf("Process: %v", err)
	}

	want := make([]float64, 256)
	for i := range want {
		want[i] = 0.25 + alone[i]
	}
	testutil.RequireSliceNearlyEqual(t, base, want, 1e-12)
}

func TestProcessReportsContributionEnergy(t *testing.T) {
	alg, ops := simpleSetup(t)
	v := New()
	v.Activate(69, note.SourceKeyboard, 440)

	buf := testutil.Zeros(256)
	energy, err := v.Process(alg, ops, buf, sampleRate)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	// With a zeroed base the buffer is exactly this voice's
	// contribution, so the reported energy is its mean square.
	want := 0.0
	for _, s := range buf {
		want += s * s
	}
	want /= float64(len(buf))
	if math.Abs(energy-want) > 1e-12 {
		t.Fatalf("energy = %v, want %v", energy, want)
	}
	if energy == 0 {
		t.Fatal("sounding voice reported zero energy")
	}
}

func TestProcessFinishedReportsZeroEnergy(t *testing.T) {
	alg, ops := simpleSetup(t)
	v := New()

	energy, err := v.Process(alg, ops, testutil.Zeros(64), sampleRate)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if energy != 0 {
		t.Fatalf("energy = %v, want 0 for a free voice", energy)
	}
}

func TestProcessZeroLength(t *testing.T) {
	alg, ops := simpleSetup(t)
	v := New()
	v.Activate(69, note.SourceKeyboard, 440)

	if _, err := v.Process(alg, ops, nil, sampleRate); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if v.SamplesElapsed() != 0 {
		t.Fatalf("SamplesElapsed = %d, want 0 after zero-length buffer", v.SamplesElapsed())
	}
}

func TestProcessMismatchReturnsErrorAndSilence(t *testing.T) {
	alg, err := algorithm.Simple(2)
	if err != nil {
		t.Fatalf("Simple: %v", err)
	}
	ops := []*operator.Operator{operator.New()}

	v := New()
	v.Activate(69, note.SourceKeyboard, 440)

	buf := testutil.Zeros(64)
	if _, err := v.Process(alg, ops, buf, sampleRate); err == nil {
		t.Fatal("expected operator mismatch error")
	}
	testutil.RequireSliceNearlyEqual(t, buf, testutil.Zeros(64), 0)
	if v.SamplesElapsed() != 64 {
		t.Fatalf("SamplesElapsed = %d, want 64 (counter advances past silent buffer)", v.SamplesElapsed())
	}
}
