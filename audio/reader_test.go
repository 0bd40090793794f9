package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

// rampProcessor writes an increasing ramp so each rendered sample is
// identifiable in the encoded stream.
type rampProcessor struct {
	next        float64
	bufferSizes []int
}

func (p *rampProcessor) Process(output []float64) {
	for i := range output {
		output[i] = p.next
		p.next += 0.125
	}
}

func (p *rampProcessor) SetBufferSize(n int) {
	p.bufferSizes = append(p.bufferSizes, n)
}

func TestReadEncodesFloat32LE(t *testing.T) {
	proc := &rampProcessor{}
	r := NewReader(proc)

	p := make([]byte, 4*bytesPerSample)
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != len(p) {
		t.Fatalf("n = %d, want %d", n, len(p))
	}

	want := []float32{0, 0.125, 0.25, 0.375}
	for i, w := range want {
		bits := binary.LittleEndian.Uint32(p[i*bytesPerSample:])
		if got := math.Float32frombits(bits); got != w {
			t.Fatalf("sample %d = %v, want %v", i, got, w)
		}
	}
}

func TestReadReportsBufferSizeOnce(t *testing.T) {
	proc := &rampProcessor{}
	r := NewReader(proc)

	p := make([]byte, 8*bytesPerSample)
	for i := 0; i < 3; i++ {
		if _, err := r.Read(p); err != nil {
			t.Fatalf("Read %d: %v", i, err)
		}
	}

	if len(proc.bufferSizes) != 1 || proc.bufferSizes[0] != 8 {
		t.Fatalf("buffer size reports = %v, want one report of 8", proc.bufferSizes)
	}
}

func TestReadShortRequest(t *testing.T) {
	proc := &rampProcessor{}
	r := NewReader(proc)

	n, err := r.Read(make([]byte, 3))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 0 {
		t.Fatalf("n = %d, want 0", n)
	}
	if len(proc.bufferSizes) != 0 {
		t.Fatal("short read must not report a buffer size")
	}
}

func TestReadTruncatesToWholeSamples(t *testing.T) {
	proc := &rampProcessor{}
	r := NewReader(proc)

	n, err := r.Read(make([]byte, 4*bytesPerSample+2))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 4*bytesPerSample {
		t.Fatalf("n = %d, want %d", n, 4*bytesPerSample)
	}
}
