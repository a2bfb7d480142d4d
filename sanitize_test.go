package exrplanes

import (
	"math"
	"testing"
)

func TestSanitize(t *testing.T) {
	for _, tc := range []struct {
		in   float64
		want float32
	}{
		{3.5, 3.5},
		{0, 0},
		{-1.25, -1.25},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{math.Inf(-1), 0},
		{1e300, 0},
		{-1e300, 0},
		{math.MaxFloat32, math.MaxFloat32},
		{1e-50, 0},
		{0.1, float32(0.1)},
	} {
		if got := Sanitize(tc.in); got != tc.want {
			t.Errorf("Sanitize(%v): got %v want %v", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	values := []float64{
		0, 1, -1, 0.1, 1.0 / 3, 123456.789, -9.87e-12, 6.5e38, -6.5e38, 3.4028235e38,
		math.SmallestNonzeroFloat64, math.MaxFloat64, math.NaN(), math.Inf(1), math.Inf(-1),
	}
	for _, x := range values {
		once := Sanitize(x)
		twice := Sanitize(float64(once))
		if once != twice {
			t.Errorf("Sanitize not idempotent for %v: %v then %v", x, once, twice)
		}
	}
}
