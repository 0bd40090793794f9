package testutil

import (
	"math"
	"testing"
)

func TestMaxAbs(t *testing.T) {
	if got := MaxAbs([]float64{0.1, -0.7, 0.3}); math.Abs(got-0.7) > 1e-15 {
		t.Fatalf("MaxAbs = %v, want 0.7", got)
	}
	if got := MaxAbs(nil); got != 0 {
		t.Fatalf("MaxAbs(nil) = %v, want 0", got)
	}
}

func TestRequireSliceNearlyEqual(t *testing.T) {
	RequireSliceNearlyEqual(t, []float64{1, 2, 3}, []float64{1, 2 + 1e-13, 3}, 1e-12)
}

func TestRequireFinite(t *testing.T) {
	RequireFinite(t, []float64{0, -1.5, 1e300})
}

func TestRequireInRange(t *testing.T) {
	RequireInRange(t, []float64{-1, 0, 1}, -1, 1)
}
