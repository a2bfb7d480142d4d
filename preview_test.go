package exrplanes

import (
	"errors"
	"image/color"
	"math"
	"testing"
)

func TestPreviewFullSize(t *testing.T) {
	img := NewImage(3, 2)
	img.R.Set(0, 0, 1)
	img.G.Set(1, 2, 0.5)
	img.B.Set(1, 0, math.NaN())
	img.A.Set(0, 1, 0)

	p, err := Preview(img, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if b := p.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Fatalf("bounds %v", b)
	}

	px := func(x, y int) color.NRGBA64 {
		return color.NRGBA64Model.Convert(p.At(x, y)).(color.NRGBA64)
	}
	if c := px(0, 0); c.R != math.MaxUint16 || c.G != 0 || c.A != math.MaxUint16 {
		t.Fatalf("(0,0) = %+v", c)
	}
	if c := px(2, 1); c.G != encode16(srgbOetf(0.5)) {
		t.Fatalf("(2,1) = %+v", c)
	}
	if c := px(0, 1); c.B != 0 {
		t.Fatalf("NaN must render as 0, got %+v", c)
	}
	if c := px(1, 0); c.A != 0 {
		t.Fatalf("(1,0) alpha = %d", c.A)
	}
}

func TestPreviewDownscale(t *testing.T) {
	img := NewImage(40, 20)
	planes := img.planes()
	for _, m := range planes[:3] {
		m.Fill(0.25)
	}

	p, err := Preview(img, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	if b := p.Bounds(); b.Dx() != 10 || b.Dy() != 5 {
		t.Fatalf("bounds %v", b)
	}

	p, err = Preview(img, 100, 0)
	if err != nil {
		t.Fatal(err)
	}
	if b := p.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Fatalf("image that fits must keep its size, got %v", b)
	}
}

func TestPreviewRejectsBadShape(t *testing.T) {
	img := NewImage(2, 2)
	img.R = NewMatrix(2, 1)
	if _, err := Preview(img, 0, 0); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestSRGBOetf(t *testing.T) {
	for _, tc := range []struct{ in, want float64 }{
		{-1, 0},
		{0, 0},
		{0.001, 0.01292},
		{1, 1},
	} {
		if got := srgbOetf(tc.in); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("srgbOetf(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
