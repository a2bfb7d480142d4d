package exrplanes

import "github.com/vearutop/exrplanes/internal/exrcodec"

// readPlan holds the row-major buffers a read fills and the frame buffer
// binding them.
type readPlan struct {
	planes   [4][]float32
	fb       *FrameBuffer
	hasAlpha bool
}

// planRead always requests R, G and B. A is requested only when channels has
// it; its buffer starts fully opaque either way.
func planRead(channels *ChannelList, g geometry) readPlan {
	p := readPlan{fb: exrcodec.NewFrameBuffer()}
	for i := range p.planes {
		p.planes[i] = make([]float32, g.pixels())
	}
	for i := range p.planes[3] {
		p.planes[3][i] = 1
	}

	for i, name := range planeNames[:3] {
		p.fb.Insert(name, exrcodec.NewSlice(p.planes[i], g.box))
	}
	if _, ok := channels.Find(ChannelA); ok {
		p.fb.Insert(ChannelA, exrcodec.NewSlice(p.planes[3], g.box))
		p.hasAlpha = true
	}
	return p
}

// bindWrite adds R, G, B and A float channels to h and returns a frame buffer
// over the row-major planes. Strides are fixed from width.
func bindWrite(h *Header, planes [4][]float32, width int) *FrameBuffer {
	fb := exrcodec.NewFrameBuffer()
	for i, name := range planeNames {
		h.Channels.Insert(Channel{Name: name, Type: exrcodec.PixelFloat})
		fb.Insert(name, &Slice{
			Data:    planes[i],
			Origin:  h.DataWindow.Min,
			XStride: 1,
			YStride: width,
		})
	}
	return fb
}
