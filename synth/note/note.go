// Package note defines the note event values exchanged between the control
// context and the synthesis engine, along with the equal-tempered MIDI
// frequency table (A4 = 440 Hz).
package note

import (
	"errors"
	"fmt"
	"math"
)

// MaxNumber is the highest valid MIDI note number and velocity value.
const MaxNumber = 127

var (
	// ErrNumberRange reports a note number outside [0, 127].
	ErrNumberRange = errors.New("note number out of range")
	// ErrVelocityRange reports a velocity outside [0, 127].
	ErrVelocityRange = errors.New("note velocity out of range")
)

// Source identifies where a note event originated.
type Source int

const (
	SourceKeyboard Source = iota
	SourceSequencer
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceKeyboard:
		return "keyboard"
	case SourceSequencer:
		return "sequencer"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// Event is an immutable note-on/note-off event. Construct it with NewEvent
// so the number and velocity are validated and the frequency is derived.
type Event struct {
	Number    int
	Velocity  int
	On        bool
	Frequency float64
	Source    Source
}

// NewEvent validates number and velocity and returns an event whose
// Frequency is looked up from the MIDI frequency table.
func NewEvent(number, velocity int, on bool, source Source) (Event, error) {
	if number < 0 || number > MaxNumber {
		return Event{}, fmt.Errorf("note number %d: %w", number, ErrNumberRange)
	}
	if velocity < 0 || velocity > MaxNumber {
		return Event{}, fmt.Errorf("note velocity %d: %w", velocity, ErrVelocityRange)
	}
	return Event{
		Number:    number,
		Velocity:  velocity,
		On:        on,
		Frequency: frequencies[number],
		Source:    source,
	}, nil
}

// Frequency returns the equal-tempered frequency in Hz for a MIDI note
// number, or 0 for numbers outside [0, 127].
func Frequency(number int) float64 {
	if number < 0 || number > MaxNumber {
		return 0
	}
	return frequencies[number]
}

// frequencies holds freq(n) = 440 * 2^((n-69)/12) for n in [0, 127].
// Computed once at package initialization; immutable afterwards.
var frequencies = buildFrequencies()

func buildFrequencies() [MaxNumber + 1]float64 {
	var table [MaxNumber + 1]float64
	for n := range table {
		table[n] = 440 * math.Pow(2, (float64(n)-69)/12)
	}
	return table
}
