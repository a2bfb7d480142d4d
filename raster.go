package exrplanes

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/png" // PNG decoder.
	"io"

	_ "golang.org/x/image/tiff" // TIFF decoder.
)

// DecodeRaster decodes a PNG or TIFF image into linear planes, see FromImage.
func DecodeRaster(r io.Reader) (*Image, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode raster: %w", err)
	}
	return FromImage(src)
}

// FromImage converts an sRGB-encoded image into linear planes. Color samples
// go through the inverse sRGB OETF, alpha is kept straight.
func FromImage(src image.Image) (*Image, error) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, errors.New("invalid raster dimensions")
	}
	img := NewImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA64Model.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
			img.R.Set(y, x, srgbInvOetf(decode16(c.R)))
			img.G.Set(y, x, srgbInvOetf(decode16(c.G)))
			img.B.Set(y, x, srgbInvOetf(decode16(c.B)))
			img.A.Set(y, x, decode16(c.A))
		}
	}
	return img, nil
}
