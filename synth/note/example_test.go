package note_test

import (
	"fmt"

	"github.com/cwbudde/algo-fm/synth/note"
)

func ExampleFrequency() {
	fmt.Printf("%.0f %.0f %.0f\n", note.Frequency(57), note.Frequency(69), note.Frequency(81))

	// Output:
	// 220 440 880
}

func ExampleNewEvent() {
	ev, err := note.NewEvent(69, 100, true, note.SourceKeyboard)
	if err != nil {
		panic(err)
	}
	fmt.Printf("note %d at %.0f Hz from %s\n", ev.Number, ev.Frequency, ev.Source)

	// Output:
	// note 69 at 440 Hz from keyboard
}
