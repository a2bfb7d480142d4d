package exrplanes

import "math"

// Sanitize narrows x to float32. NaN, infinities and finite values that
// overflow float32 become 0.
func Sanitize(x float64) float32 {
	f := float32(x)
	if math.IsNaN(x) || math.IsInf(float64(f), 0) {
		return 0
	}
	return f
}
