package exrplanes

import (
	"fmt"
	"math"
)

// geometry is the resolved pixel address space of a file.
type geometry struct {
	box    Box2i
	width  int
	height int
}

func resolveGeometry(h *Header) (geometry, error) {
	dw := h.DataWindow
	w, ht := dw.Width(), dw.Height()
	if w <= 0 || ht <= 0 {
		return geometry{}, fmt.Errorf("%w: data window [%d,%d]x[%d,%d] is %dx%d",
			ErrInvalidGeometry, dw.Min.X, dw.Max.X, dw.Min.Y, dw.Max.Y, w, ht)
	}
	if w > math.MaxInt/ht {
		return geometry{}, fmt.Errorf("%w: %dx%d pixels overflow", ErrInvalidGeometry, w, ht)
	}
	return geometry{box: dw, width: int(w), height: int(ht)}, nil
}

func (g geometry) pixels() int {
	return g.width * g.height
}
