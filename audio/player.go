package audio

import (
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
)

// DefaultBufferDuration is the playback buffer length requested from
// the device. Shorter buffers cut latency at the cost of underruns.
const DefaultBufferDuration = 23 * time.Millisecond // ~1024 samples at 44.1 kHz

// PlayerOption configures a Player.
type PlayerOption func(*playerConfig)

type playerConfig struct {
	bufferDuration time.Duration
}

// WithBufferDuration sets the requested device buffer length.
func WithBufferDuration(d time.Duration) PlayerOption {
	return func(cfg *playerConfig) {
		if d > 0 {
			cfg.bufferDuration = d
		}
	}
}

// Player owns the audio device and pulls mono float32 samples from a
// Processor for playback.
type Player struct {
	ctx    *oto.Context
	player *oto.Player
}

// NewPlayer opens the audio device at the given sample rate and binds
// it to proc. It blocks until the device is ready.
func NewPlayer(proc Processor, sampleRate int, opts ...PlayerOption) (*Player, error) {
	cfg := playerConfig{bufferDuration: DefaultBufferDuration}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   cfg.bufferDuration,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	return &Player{
		ctx:    ctx,
		player: ctx.NewPlayer(NewReader(proc)),
	}, nil
}

// Start begins pulling samples from the processor.
func (p *Player) Start() {
	p.player.Play()
}

// Close stops playback and releases the device player.
func (p *Player) Close() error {
	return p.player.Close()
}
