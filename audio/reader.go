// Package audio streams rendered synthesizer buffers to the system
// audio device. The conversion from float64 sample buffers to the
// little-endian float32 byte stream the device consumes lives in
// Reader, which is testable without audio hardware.
package audio

import (
	"encoding/binary"
	"math"

	"github.com/cwbudde/algo-fm/synth/core"
)

// Processor renders mono float64 sample buffers on demand. It is told
// the device buffer size once the backend has negotiated it.
type Processor interface {
	Process(output []float64)
	SetBufferSize(n int)
}

const bytesPerSample = 4 // float32 little-endian

// Reader adapts a Processor to the io.Reader the playback device pulls
// from. Read is called from the device's own goroutine; the Processor
// must tolerate that.
type Reader struct {
	proc     Processor
	scratch  []float64
	reported bool
}

// NewReader wraps proc in a byte-stream adapter.
func NewReader(proc Processor) *Reader {
	return &Reader{proc: proc}
}

// Read renders len(p)/4 samples and encodes them as float32 LE. The
// first call reports the device's pull size to the Processor. A request
// shorter than one sample reads zero bytes.
func (r *Reader) Read(p []byte) (int, error) {
	samples := len(p) / bytesPerSample
	if samples == 0 {
		return 0, nil
	}

	if !r.reported {
		r.proc.SetBufferSize(samples)
		r.reported = true
	}

	r.scratch = core.EnsureLen(r.scratch, samples)
	r.proc.Process(r.scratch)

	for i, s := range r.scratch {
		bits := math.Float32bits(float32(s))
		binary.LittleEndian.PutUint32(p[i*bytesPerSample:], bits)
	}
	return samples * bytesPerSample, nil
}
