package engine_test

import (
	"fmt"

	"github.com/cwbudde/algo-fm/synth/engine"
	"github.com/cwbudde/algo-fm/synth/note"
)

func Example() {
	eng, err := engine.New(nil)
	if err != nil {
		panic(err)
	}

	ev, err := note.NewEvent(69, 100, true, note.SourceKeyboard)
	if err != nil {
		panic(err)
	}
	eng.SendNote(ev)

	out := make([]float64, 1024)
	eng.Process(out)

	fmt.Println("voices sounding:", eng.ActiveVoices())

	// Output:
	// voices sounding: 1
}
