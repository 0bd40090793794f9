// Package input turns terminal keystrokes into synthesizer events.
// Terminals report key presses but not releases, so each mapped key
// triggers a note that is released automatically after a hold time.
package input

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/cwbudde/algo-fm/synth/note"
	"github.com/cwbudde/algo-fm/synth/operator"
)

// DefaultNoteHold is how long a triggered note sounds before its
// automatic release.
const DefaultNoteHold = 300 * time.Millisecond

// Sink receives the events produced by the keyboard.
type Sink interface {
	SendNote(ev note.Event) bool
	SendOperatorEvent(ev operator.Event) bool
}

// keyNotes maps the home and upper letter rows onto two piano octaves
// around A4 (MIDI 69).
var keyNotes = map[byte]int{
	'a': 69, 'w': 70, 's': 71, 'd': 72, 'r': 73, 'f': 74, 't': 75,
	'g': 76, 'h': 77, 'u': 78, 'j': 79, 'i': 80, 'k': 81, 'o': 82,
	'l': 83, ';': 84, '[': 85,
}

// KeyNote returns the MIDI note number bound to key, if any.
func KeyNote(key byte) (int, bool) {
	n, ok := keyNotes[key]
	return n, ok
}

// Option configures a Keyboard.
type Option func(*Keyboard)

// WithNoteHold sets the automatic release delay for triggered notes.
func WithNoteHold(d time.Duration) Option {
	return func(k *Keyboard) {
		if d > 0 {
			k.hold = d
		}
	}
}

// WithLogger sets the logger for dropped events.
func WithLogger(logger *log.Logger) Option {
	return func(k *Keyboard) {
		if logger != nil {
			k.logger = logger
		}
	}
}

// Keyboard reads raw terminal input and forwards note and operator
// events to a Sink.
type Keyboard struct {
	sink   Sink
	hold   time.Duration
	logger *log.Logger
}

// NewKeyboard binds a keyboard to sink.
func NewKeyboard(sink Sink, opts ...Option) *Keyboard {
	k := &Keyboard{
		sink:   sink,
		hold:   DefaultNoteHold,
		logger: log.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(k)
		}
	}
	return k
}

// Run switches the controlling terminal into raw mode and dispatches
// keystrokes until 'q', Ctrl-C or end of input. It restores the
// terminal state before returning.
func (k *Keyboard) Run() error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read key: %w", err)
		}
		if n == 0 {
			continue
		}
		if !k.HandleKey(buf[0]) {
			return nil
		}
	}
}

// HandleKey dispatches a single keystroke. It returns false when the
// key asks to quit.
func (k *Keyboard) HandleKey(key byte) bool {
	switch key {
	case 'q', 0x03: // Ctrl-C
		return false
	case ',':
		k.sink.SendOperatorEvent(operator.CycleWaveform{Direction: operator.CycleBackward})
		return true
	case '.':
		k.sink.SendOperatorEvent(operator.CycleWaveform{Direction: operator.CycleForward})
		return true
	}

	number, ok := KeyNote(key)
	if !ok {
		return true
	}
	k.trigger(number)
	return true
}

// trigger sends a note-on and schedules the matching note-off after
// the hold time.
func (k *Keyboard) trigger(number int) {
	on, err := note.NewEvent(number, 100, true, note.SourceKeyboard)
	if err != nil {
		k.logger.Printf("input: note %d: %v", number, err)
		return
	}
	k.sink.SendNote(on)

	time.AfterFunc(k.hold, func() {
		off, err := note.NewEvent(number, 0, false, note.SourceKeyboard)
		if err != nil {
			return
		}
		k.sink.SendNote(off)
	})
}
