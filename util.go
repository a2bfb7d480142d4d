package exrplanes

import "math"

func srgbInvOetf(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

func srgbOetf(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v <= 0.0031308 {
		return 12.92 * v
	}
	return 1.055*math.Pow(v, 1.0/2.4) - 0.055
}

func encode16(v float64) uint16 {
	switch {
	case !(v > 0):
		return 0
	case v >= 1:
		return math.MaxUint16
	default:
		return uint16(v*math.MaxUint16 + 0.5)
	}
}

func decode16(v uint16) float64 {
	return float64(v) / math.MaxUint16
}
