// Package exrcodec implements reading and writing of single-part scanline
// OpenEXR files.
//
// Only flat images are supported: tiled, deep and multi-part files are
// rejected. Chunks may be uncompressed, ZIPS (one scanline per chunk) or ZIP
// (16 scanlines per chunk). Channels may be HALF, FLOAT or UINT and are
// exchanged with callers as float32 samples through a FrameBuffer.
package exrcodec

import (
	"fmt"
	"sort"
)

// Magic is the first four bytes of every OpenEXR file (little-endian).
const Magic = 20000630

const (
	fileVersion = 2

	flagTiled     = 0x00000200
	flagLongNames = 0x00000400
	flagDeep      = 0x00000800
	flagMultiPart = 0x00001000
)

// PixelType is the on-disk sample type of a channel.
type PixelType int32

const (
	PixelUint  PixelType = 0
	PixelHalf  PixelType = 1
	PixelFloat PixelType = 2
)

// Size returns the number of bytes a sample takes on disk, or 0 if unknown.
func (t PixelType) Size() int {
	switch t {
	case PixelHalf:
		return 2
	case PixelFloat, PixelUint:
		return 4
	default:
		return 0
	}
}

func (t PixelType) String() string {
	switch t {
	case PixelUint:
		return "UINT"
	case PixelHalf:
		return "HALF"
	case PixelFloat:
		return "FLOAT"
	default:
		return fmt.Sprintf("PixelType(%d)", int32(t))
	}
}

// Compression identifies the chunk compression method.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionRLE  Compression = 1
	CompressionZIPS Compression = 2
	CompressionZIP  Compression = 3
)

// ScanlinesPerChunk returns how many scanlines each chunk holds.
func (c Compression) ScanlinesPerChunk() int {
	if c == CompressionZIP {
		return 16
	}
	return 1
}

// Supported reports whether this package can read and write c.
func (c Compression) Supported() bool {
	return c == CompressionNone || c == CompressionZIPS || c == CompressionZIP
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "NONE"
	case CompressionRLE:
		return "RLE"
	case CompressionZIPS:
		return "ZIPS"
	case CompressionZIP:
		return "ZIP"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// LineOrder is the order in which chunks are stored in the file.
type LineOrder uint8

const (
	LineOrderIncreasingY LineOrder = 0
	LineOrderDecreasingY LineOrder = 1
	LineOrderRandomY     LineOrder = 2
)

// V2i is a 2D integer vector.
type V2i struct {
	X, Y int32
}

// V2f is a 2D float vector.
type V2f struct {
	X, Y float32
}

// Box2i is an integer box with inclusive corners.
type Box2i struct {
	Min, Max V2i
}

// NewBox returns the box [0,width-1]×[0,height-1].
func NewBox(width, height int) Box2i {
	return Box2i{Max: V2i{X: int32(width - 1), Y: int32(height - 1)}}
}

// Width returns Max.X-Min.X+1 as int64 so corrupt boxes cannot overflow.
func (b Box2i) Width() int64 {
	return int64(b.Max.X) - int64(b.Min.X) + 1
}

// Height returns Max.Y-Min.Y+1 as int64 so corrupt boxes cannot overflow.
func (b Box2i) Height() int64 {
	return int64(b.Max.Y) - int64(b.Min.Y) + 1
}

// IsEmpty reports whether the box has no area.
func (b Box2i) IsEmpty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y
}

// Channel describes one channel of the image.
type Channel struct {
	Name      string
	Type      PixelType
	PLinear   bool
	XSampling int32
	YSampling int32
}

// ChannelList is a set of channels kept sorted by name, which is also the
// order their samples appear in on disk.
type ChannelList struct {
	channels []Channel
}

// Insert adds ch, replacing any channel with the same name.
func (cl *ChannelList) Insert(ch Channel) {
	if ch.XSampling == 0 {
		ch.XSampling = 1
	}
	if ch.YSampling == 0 {
		ch.YSampling = 1
	}
	i := sort.Search(len(cl.channels), func(i int) bool { return cl.channels[i].Name >= ch.Name })
	if i < len(cl.channels) && cl.channels[i].Name == ch.Name {
		cl.channels[i] = ch
		return
	}
	cl.channels = append(cl.channels, Channel{})
	copy(cl.channels[i+1:], cl.channels[i:])
	cl.channels[i] = ch
}

// Find returns the channel with the given name.
func (cl *ChannelList) Find(name string) (Channel, bool) {
	i := sort.Search(len(cl.channels), func(i int) bool { return cl.channels[i].Name >= name })
	if i < len(cl.channels) && cl.channels[i].Name == name {
		return cl.channels[i], true
	}
	return Channel{}, false
}

// Len returns the number of channels.
func (cl *ChannelList) Len() int { return len(cl.channels) }

// At returns the i-th channel in name order.
func (cl *ChannelList) At(i int) Channel { return cl.channels[i] }

// Names returns channel names in name order.
func (cl *ChannelList) Names() []string {
	names := make([]string, len(cl.channels))
	for i, ch := range cl.channels {
		names[i] = ch.Name
	}
	return names
}

// Header holds the attributes of a scanline image this package understands.
// Other attributes are skipped on read and never written.
type Header struct {
	DataWindow         Box2i
	DisplayWindow      Box2i
	Channels           ChannelList
	Compression        Compression
	LineOrder          LineOrder
	PixelAspectRatio   float32
	ScreenWindowCenter V2f
	ScreenWindowWidth  float32
}

// NewHeader returns a header for a width×height image with zero-based data
// and display windows, no channels and ZIP compression.
func NewHeader(width, height int) *Header {
	box := NewBox(width, height)
	return &Header{
		DataWindow:        box,
		DisplayWindow:     box,
		Compression:       CompressionZIP,
		LineOrder:         LineOrderIncreasingY,
		PixelAspectRatio:  1,
		ScreenWindowWidth: 1,
	}
}

// ChunkCount returns the number of entries in the offset table.
func (h *Header) ChunkCount() int {
	lines := int(h.DataWindow.Height())
	if lines <= 0 {
		return 0
	}
	per := h.Compression.ScanlinesPerChunk()
	return (lines + per - 1) / per
}

// BytesPerLine returns the size of one uncompressed scanline.
func (h *Header) BytesPerLine() int {
	width := int(h.DataWindow.Width())
	total := 0
	for _, ch := range h.Channels.channels {
		total += width * ch.Type.Size()
	}
	return total
}

// validateWindow rejects empty and oversized data windows. Readers only
// reject oversized ones so callers can report degenerate geometry themselves.
func (h *Header) validateWindow(allowEmpty bool) error {
	if h.DataWindow.Width() > maxDimension || h.DataWindow.Height() > maxDimension {
		return fmt.Errorf("%w: data window %v is too large", ErrInvalidHeader, h.DataWindow)
	}
	if !allowEmpty && h.DataWindow.IsEmpty() {
		return fmt.Errorf("%w: empty data window %v", ErrInvalidHeader, h.DataWindow)
	}
	return nil
}

func (h *Header) validate() error {
	if h.Channels.Len() == 0 {
		return fmt.Errorf("%w: no channels", ErrInvalidHeader)
	}
	for _, ch := range h.Channels.channels {
		if ch.Type.Size() == 0 {
			return fmt.Errorf("%w: channel %q has unknown pixel type %d", ErrUnsupported, ch.Name, ch.Type)
		}
		if ch.XSampling != 1 || ch.YSampling != 1 {
			return fmt.Errorf("%w: channel %q is subsampled", ErrUnsupported, ch.Name)
		}
	}
	if !h.Compression.Supported() {
		return fmt.Errorf("%w: compression %s", ErrUnsupported, h.Compression)
	}
	if h.LineOrder > LineOrderRandomY {
		return fmt.Errorf("%w: line order %d", ErrInvalidHeader, h.LineOrder)
	}
	return nil
}

// maxDimension bounds the data window to keep corrupt headers from causing
// huge allocations.
const maxDimension = 1 << 20
