package core

import "testing"

func TestEnsureLenReuse(t *testing.T) {
	buf := make([]float64, 4, 8)

	out := EnsureLen(buf, 6)
	if len(out) != 6 {
		t.Fatalf("len = %d, want 6", len(out))
	}
	if &out[0] != &buf[0] {
		t.Fatal("expected capacity reuse")
	}
}

func TestEnsureLenGrow(t *testing.T) {
	buf := make([]float64, 2)

	out := EnsureLen(buf, 16)
	if len(out) != 16 {
		t.Fatalf("len = %d, want 16", len(out))
	}
}

func TestEnsureLenNonPositive(t *testing.T) {
	out := EnsureLen(make([]float64, 4), 0)
	if len(out) != 0 {
		t.Fatalf("len = %d, want 0", len(out))
	}
	out = EnsureLen(nil, -1)
	if len(out) != 0 {
		t.Fatalf("len = %d, want 0", len(out))
	}
}

func TestZero(t *testing.T) {
	buf := []float64{1, -2, 3}
	Zero(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("index %d: got %v, want 0", i, v)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(1.5, 0, 1); got != 1 {
		t.Fatalf("Clamp(1.5) = %v, want 1", got)
	}
	if got := Clamp(-0.5, 0, 1); got != 0 {
		t.Fatalf("Clamp(-0.5) = %v, want 0", got)
	}
	if got := Clamp(0.25, 0, 1); got != 0.25 {
		t.Fatalf("Clamp(0.25) = %v, want 0.25", got)
	}
}
