package exrplanes

import "fmt"

// validateShape checks that every plane is img.Height×img.Width.
func validateShape(img *Image) error {
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrDimensionMismatch)
	}
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("%w: declared size %dx%d", ErrDimensionMismatch, img.Width, img.Height)
	}
	for i, m := range img.planes() {
		if m == nil {
			return fmt.Errorf("%w: channel %s is missing", ErrDimensionMismatch, planeNames[i])
		}
		if m.Rows != img.Height || m.Cols != img.Width {
			return fmt.Errorf("%w: channel %s is %dx%d, want %dx%d",
				ErrDimensionMismatch, planeNames[i], m.Rows, m.Cols, img.Height, img.Width)
		}
		if len(m.Data) != m.Rows*m.Cols {
			return fmt.Errorf("%w: channel %s has %d samples, want %d",
				ErrDimensionMismatch, planeNames[i], len(m.Data), m.Rows*m.Cols)
		}
	}
	return nil
}
