package core

// EngineConfig defines the shared synthesizer processing settings.
// It is immutable after engine construction and defines pool sizing.
type EngineConfig struct {
	SampleRate    float64
	BlockSize     int
	MaxVoices     int
	OperatorCount int
}

// Option mutates an EngineConfig.
type Option func(*EngineConfig)

// DefaultEngineConfig returns the default synthesizer configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		SampleRate:    44100,
		BlockSize:     1024,
		MaxVoices:     128,
		OperatorCount: 12,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *EngineConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the expected processing block size.
// The engine still accepts buffers of any length; the block size only
// controls scratch preallocation.
func WithBlockSize(blockSize int) Option {
	return func(cfg *EngineConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithMaxVoices sets the polyphonic voice pool size.
func WithMaxVoices(maxVoices int) Option {
	return func(cfg *EngineConfig) {
		if maxVoices > 0 {
			cfg.MaxVoices = maxVoices
		}
	}
}

// WithOperatorCount sets the number of FM operators shared by all voices.
func WithOperatorCount(count int) Option {
	return func(cfg *EngineConfig) {
		if count > 0 {
			cfg.OperatorCount = count
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) EngineConfig {
	cfg := DefaultEngineConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
