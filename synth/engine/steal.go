package engine

import "github.com/cwbudde/algo-fm/synth/voice"

// Stealer picks the voice to reuse when a note arrives and the pool has
// no free slot. Choose returns an index into voices.
type Stealer interface {
	Choose(voices []*voice.Voice) int
}

// StealFirst always reuses the first pool slot. It is the default
// strategy: cheap and deterministic.
type StealFirst struct{}

// Choose returns 0.
func (StealFirst) Choose([]*voice.Voice) int { return 0 }

// StealOldest reuses the voice that has been sounding the longest.
type StealOldest struct{}

// Choose returns the index of the voice with the largest elapsed sample
// count, so the note most likely past its attack gets cut.
func (StealOldest) Choose(voices []*voice.Voice) int {
	best := 0
	var bestAge uint64
	for i, v := range voices {
		if age := v.SamplesElapsed(); age >= bestAge {
			best = i
			bestAge = age
		}
	}
	return best
}
