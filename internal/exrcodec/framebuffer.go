package exrcodec

import (
	"fmt"
	"sort"
)

// Slice binds a channel to a float32 buffer. Strides are in samples, and the
// sample for file coordinate (x,y) lives at
// (x-Origin.X)*XStride + (y-Origin.Y)*YStride.
type Slice struct {
	Data    []float32
	Origin  V2i
	XStride int
	YStride int
}

// NewSlice returns a tightly packed row-major slice covering box.
func NewSlice(data []float32, box Box2i) *Slice {
	return &Slice{
		Data:    data,
		Origin:  box.Min,
		XStride: 1,
		YStride: int(box.Width()),
	}
}

// Index returns the buffer offset of file coordinate (x,y).
func (s *Slice) Index(x, y int) int {
	return (x-int(s.Origin.X))*s.XStride + (y-int(s.Origin.Y))*s.YStride
}

// covers checks that every sample of box maps inside Data.
func (s *Slice) covers(box Box2i) error {
	if box.IsEmpty() {
		return nil
	}
	corners := [4][2]int{
		{int(box.Min.X), int(box.Min.Y)},
		{int(box.Max.X), int(box.Min.Y)},
		{int(box.Min.X), int(box.Max.Y)},
		{int(box.Max.X), int(box.Max.Y)},
	}
	for _, c := range corners {
		i := s.Index(c[0], c[1])
		if i < 0 || i >= len(s.Data) {
			return fmt.Errorf("sample (%d,%d) maps to offset %d outside buffer of %d", c[0], c[1], i, len(s.Data))
		}
	}
	return nil
}

// FrameBuffer is a set of named channel slices.
type FrameBuffer struct {
	slices map[string]*Slice
}

// NewFrameBuffer returns an empty frame buffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{slices: make(map[string]*Slice)}
}

// Insert binds name to s, replacing any previous binding.
func (fb *FrameBuffer) Insert(name string, s *Slice) {
	if fb.slices == nil {
		fb.slices = make(map[string]*Slice)
	}
	fb.slices[name] = s
}

// Get returns the slice bound to name or nil.
func (fb *FrameBuffer) Get(name string) *Slice {
	return fb.slices[name]
}

// Names returns bound channel names in sorted order.
func (fb *FrameBuffer) Names() []string {
	names := make([]string, 0, len(fb.slices))
	for name := range fb.slices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// check verifies every slice maps box inside its buffer. When strict is set,
// every bound name must also exist in channels.
func (fb *FrameBuffer) check(channels *ChannelList, box Box2i, strict bool) error {
	for _, name := range fb.Names() {
		if strict {
			if _, ok := channels.Find(name); !ok {
				return fmt.Errorf("%w: %s", ErrMissingChannel, name)
			}
		}
		if err := fb.slices[name].covers(box); err != nil {
			return fmt.Errorf("channel %s: %w", name, err)
		}
	}
	return nil
}
