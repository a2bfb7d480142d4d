package exrplanes

import "fmt"

// ToColumnMajor returns a new buffer with dst[x*h+y] = src[y*w+x].
// It panics if len(src) != w*h.
func ToColumnMajor[T any](src []T, w, h int) []T {
	return rowToColumn(src, w, h, func(v T) T { return v })
}

// ToRowMajor returns a new buffer with dst[y*w+x] = src[x*h+y].
// It panics if len(src) != w*h.
func ToRowMajor[T any](src []T, w, h int) []T {
	return columnToRow(src, w, h, func(v T) T { return v })
}

func rowToColumn[S, D any](src []S, w, h int, conv func(S) D) []D {
	mustLen(len(src), w, h)
	dst := make([]D, len(src))
	for y := 0; y < h; y++ {
		row := src[y*w : (y+1)*w]
		for x, v := range row {
			dst[x*h+y] = conv(v)
		}
	}
	return dst
}

func columnToRow[S, D any](src []S, w, h int, conv func(S) D) []D {
	mustLen(len(src), w, h)
	dst := make([]D, len(src))
	for x := 0; x < w; x++ {
		col := src[x*h : (x+1)*h]
		for y, v := range col {
			dst[y*w+x] = conv(v)
		}
	}
	return dst
}

func mustLen(n, w, h int) {
	if w < 0 || h < 0 || n != w*h {
		panic(fmt.Sprintf("exrplanes: buffer of %d samples is not %dx%d", n, w, h))
	}
}

// widen converts a row-major float32 plane into a column-major float64 one.
func widen(rowMajor []float32, w, h int) []float64 {
	return rowToColumn(rowMajor, w, h, func(v float32) float64 { return float64(v) })
}

// narrow converts a column-major float64 plane into a row-major float32 one,
// sanitizing every sample.
func narrow(colMajor []float64, w, h int) []float32 {
	return columnToRow(colMajor, w, h, Sanitize)
}
