package note

import (
	"errors"
	"math"
	"testing"
)

func TestFrequencyTable(t *testing.T) {
	if got := Frequency(69); got != 440.0 {
		t.Fatalf("Frequency(69) = %v, want 440", got)
	}
	if got := Frequency(57); math.Abs(got-220.0) > 1e-9 {
		t.Fatalf("Frequency(57) = %v, want 220", got)
	}
	if got := Frequency(81); math.Abs(got-880.0) > 1e-9 {
		t.Fatalf("Frequency(81) = %v, want 880", got)
	}
}

func TestFrequencyFormula(t *testing.T) {
	for n := 0; n <= MaxNumber; n++ {
		want := 440 * math.Pow(2, (float64(n)-69)/12)
		if got := Frequency(n); math.Abs(got-want) > 1e-9 {
			t.Fatalf("Frequency(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestFrequencyOutOfRange(t *testing.T) {
	if got := Frequency(-1); got != 0 {
		t.Fatalf("Frequency(-1) = %v, want 0", got)
	}
	if got := Frequency(128); got != 0 {
		t.Fatalf("Frequency(128) = %v, want 0", got)
	}
}

func TestNewEventValid(t *testing.T) {
	for _, n := range []int{0, 127} {
		ev, err := NewEvent(n, n, true, SourceKeyboard)
		if err != nil {
			t.Fatalf("NewEvent(%d): %v", n, err)
		}
		if ev.Frequency != Frequency(n) {
			t.Fatalf("frequency = %v, want %v", ev.Frequency, Frequency(n))
		}
	}
}

func TestNewEventRejectsNumber(t *testing.T) {
	_, err := NewEvent(128, 100, true, SourceKeyboard)
	if !errors.Is(err, ErrNumberRange) {
		t.Fatalf("err = %v, want ErrNumberRange", err)
	}
}

func TestNewEventRejectsVelocity(t *testing.T) {
	_, err := NewEvent(60, 128, true, SourceSequencer)
	if !errors.Is(err, ErrVelocityRange) {
		t.Fatalf("err = %v, want ErrVelocityRange", err)
	}
}

func TestNewEventRejectsNegative(t *testing.T) {
	if _, err := NewEvent(-1, 0, true, SourceKeyboard); !errors.Is(err, ErrNumberRange) {
		t.Fatalf("err = %v, want ErrNumberRange", err)
	}
	if _, err := NewEvent(60, -1, true, SourceKeyboard); !errors.Is(err, ErrVelocityRange) {
		t.Fatalf("err = %v, want ErrVelocityRange", err)
	}
}
