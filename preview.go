package exrplanes

import (
	"image"
	"image/color"

	"github.com/nfnt/resize"
)

// Preview renders img as a 16-bit sRGB image with straight alpha. Samples are
// treated as linear light, clamped to [0,1]. The result is downscaled with
// Lanczos3 to fit maxWidth×maxHeight while keeping the aspect ratio; zero
// limits keep the full size.
func Preview(img *Image, maxWidth, maxHeight uint) (image.Image, error) {
	if err := validateShape(img); err != nil {
		return nil, err
	}
	w, h := img.Width, img.Height
	out := image.NewNRGBA64(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.SetNRGBA64(x, y, color.NRGBA64{
				R: encode16(srgbOetf(img.R.At(y, x))),
				G: encode16(srgbOetf(img.G.At(y, x))),
				B: encode16(srgbOetf(img.B.At(y, x))),
				A: encode16(img.A.At(y, x)),
			})
		}
	}
	if maxWidth == 0 && maxHeight == 0 {
		return out, nil
	}
	if maxWidth == 0 {
		maxWidth = uint(w)
	}
	if maxHeight == 0 {
		maxHeight = uint(h)
	}
	if uint(w) <= maxWidth && uint(h) <= maxHeight {
		return out, nil
	}
	return resize.Thumbnail(maxWidth, maxHeight, out, resize.Lanczos3), nil
}
