// Command fmsynth runs the polyphonic FM synthesizer as a terminal
// instrument.
//
// Usage:
//
//	fmsynth [flags]
//
// The letter rows a..[ play two octaves around A4, ',' and '.' cycle
// the operator waveforms and 'q' quits.
//
// Examples:
//
//	fmsynth
//	fmsynth -algorithm stack2 -volume 0.5
//	fmsynth -voices 32 -operators 4 -samplerate 48000
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cwbudde/algo-fm/audio"
	"github.com/cwbudde/algo-fm/input"
	"github.com/cwbudde/algo-fm/synth/algorithm"
	"github.com/cwbudde/algo-fm/synth/core"
	"github.com/cwbudde/algo-fm/synth/engine"
)

func main() {
	sampleRate := flag.Int("samplerate", 44100, "output sample rate in Hz")
	voices := flag.Int("voices", 128, "polyphonic voice pool size")
	operators := flag.Int("operators", 12, "number of FM operators")
	volume := flag.Float64("volume", engine.DefaultMasterVolume, "master volume in [0, 1]")
	algName := flag.String("algorithm", "feedback1", "modulation routing: simple, stack2 or feedback1")
	hold := flag.Duration("hold", input.DefaultNoteHold, "note hold time before automatic release")
	buffer := flag.Duration("buffer", audio.DefaultBufferDuration, "requested device buffer length")
	oldest := flag.Bool("steal-oldest", false, "steal the longest-sounding voice when the pool is full")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags]\n\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "Play FM synthesis from the terminal keyboard.")
		fmt.Fprintln(flag.CommandLine.Output())
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(*sampleRate, *voices, *operators, *volume, *algName, *hold, *buffer, *oldest); err != nil {
		fmt.Fprintln(os.Stderr, "fmsynth:", err)
		os.Exit(1)
	}
}

func run(sampleRate, voices, operators int, volume float64, algName string,
	hold, buffer time.Duration, stealOldest bool) error {
	alg, err := buildAlgorithm(algName, operators)
	if err != nil {
		return err
	}

	logger := log.New(os.Stderr, "fmsynth: ", log.LstdFlags)
	engineOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithMasterVolume(volume),
		engine.WithAlgorithm(alg),
	}
	if stealOldest {
		engineOpts = append(engineOpts, engine.WithStealer(engine.StealOldest{}))
	}

	eng, err := engine.New([]core.Option{
		core.WithSampleRate(float64(sampleRate)),
		core.WithMaxVoices(voices),
		core.WithOperatorCount(operators),
	}, engineOpts...)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	player, err := audio.NewPlayer(eng, sampleRate, audio.WithBufferDuration(buffer))
	if err != nil {
		return err
	}
	defer player.Close()
	player.Start()

	fmt.Println("fmsynth ready: a..[ play notes, ',' and '.' cycle waveforms, 'q' quits")
	keyboard := input.NewKeyboard(eng,
		input.WithNoteHold(hold),
		input.WithLogger(logger))
	return keyboard.Run()
}

func buildAlgorithm(name string, operators int) (*algorithm.Algorithm, error) {
	switch name {
	case "simple":
		return algorithm.Simple(operators)
	case "stack2":
		return algorithm.Stack2(operators)
	case "feedback1":
		return algorithm.Feedback1(operators)
	default:
		return nil, fmt.Errorf("unknown algorithm %q (want simple, stack2 or feedback1)", name)
	}
}
