package exrcodec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Reader decodes scanlines from a single-part OpenEXR stream.
type Reader struct {
	rs      io.ReadSeeker
	header  *Header
	offsets []uint64
}

// NewReader parses the header and offset table of the stream. The data
// window may be empty; ReadPixels then fails with ErrScanlineOutOfRange.
func NewReader(rs io.ReadSeeker) (*Reader, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	cr := bufio.NewReader(rs)

	magic, err := readU32(cr)
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, ErrNotOpenEXR
	}
	version, err := readU32(cr)
	if err != nil {
		return nil, err
	}
	if version&0xFF != fileVersion {
		return nil, fmt.Errorf("%w: file version %d", ErrUnsupported, version&0xFF)
	}
	if version&flagTiled != 0 {
		return nil, fmt.Errorf("%w: tiled images", ErrUnsupported)
	}
	if version&flagDeep != 0 {
		return nil, fmt.Errorf("%w: deep data", ErrUnsupported)
	}
	if version&flagMultiPart != 0 {
		return nil, fmt.Errorf("%w: multi-part files", ErrUnsupported)
	}
	nameLimit := 31
	if version&flagLongNames != 0 {
		nameLimit = 255
	}

	h, err := readHeader(cr, nameLimit)
	if err != nil {
		return nil, err
	}

	offsets := make([]uint64, h.ChunkCount())
	for i := range offsets {
		v, err := readU64(cr)
		if err != nil {
			return nil, fmt.Errorf("read offset table: %w", err)
		}
		offsets[i] = v
	}
	if err := checkOffsets(rs, h, offsets); err != nil {
		return nil, err
	}

	return &Reader{
		rs:      rs,
		header:  h,
		offsets: offsets,
	}, nil
}

// maxDeflateRatio bounds how much zlib can expand a chunk.
const maxDeflateRatio = 1032

// checkOffsets rejects offset tables pointing past the end of the stream and
// streams too short to hold the chunks the header implies, so corrupt headers
// fail before callers allocate pixel buffers.
func checkOffsets(rs io.ReadSeeker, h *Header, offsets []uint64) error {
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	per := h.Compression.ScanlinesPerChunk()
	lines := int(h.DataWindow.Height())
	var need int64
	for i, off := range offsets {
		if off >= uint64(size) {
			return fmt.Errorf("%w: chunk %d offset %d past end of file (%d bytes)", ErrCorruptChunk, i, off, size)
		}
		n := per
		if rest := lines - i*per; rest < n {
			n = rest
		}
		raw := int64(h.BytesPerLine()) * int64(n)
		if h.Compression != CompressionNone {
			raw /= maxDeflateRatio
		}
		need += 8 + raw
	}
	if need > size {
		return fmt.Errorf("%w: %d bytes cannot hold %d chunks of the data window", ErrCorruptChunk, size, len(offsets))
	}
	return nil
}

// Header returns the parsed header.
func (r *Reader) Header() *Header {
	return r.header
}

func readHeader(cr *bufio.Reader, nameLimit int) (*Header, error) {
	h := &Header{
		PixelAspectRatio:  1,
		ScreenWindowWidth: 1,
	}
	var hasChannels, hasDataWindow, hasCompression bool

	for {
		name, err := readNullString(cr, nameLimit)
		if err != nil {
			return nil, err
		}
		if name == "" {
			break
		}
		typ, err := readNullString(cr, nameLimit)
		if err != nil {
			return nil, err
		}
		size, err := readI32(cr)
		if err != nil {
			return nil, err
		}
		if size < 0 || size > 1<<24 {
			return nil, fmt.Errorf("%w: attribute %s size %d", ErrInvalidHeader, name, size)
		}
		payload := make([]byte, size)
		if _, err := io.ReadFull(cr, payload); err != nil {
			return nil, err
		}

		switch name {
		case "channels":
			if typ != "chlist" {
				return nil, fmt.Errorf("%w: channels attribute type %s", ErrInvalidHeader, typ)
			}
			if err := parseChannels(payload, nameLimit, &h.Channels); err != nil {
				return nil, err
			}
			hasChannels = true
		case "dataWindow", "displayWindow":
			if typ != "box2i" || len(payload) != 16 {
				return nil, fmt.Errorf("%w: %s attribute", ErrInvalidHeader, name)
			}
			box := parseBox(payload)
			if name == "dataWindow" {
				h.DataWindow = box
				hasDataWindow = true
			} else {
				h.DisplayWindow = box
			}
		case "compression":
			if typ != "compression" || len(payload) != 1 {
				return nil, fmt.Errorf("%w: compression attribute", ErrInvalidHeader)
			}
			h.Compression = Compression(payload[0])
			hasCompression = true
		case "lineOrder":
			if typ != "lineOrder" || len(payload) != 1 {
				return nil, fmt.Errorf("%w: lineOrder attribute", ErrInvalidHeader)
			}
			h.LineOrder = LineOrder(payload[0])
		case "pixelAspectRatio":
			if typ == "float" && len(payload) == 4 {
				h.PixelAspectRatio = math.Float32frombits(binary.LittleEndian.Uint32(payload))
			}
		case "screenWindowCenter":
			if typ == "v2f" && len(payload) == 8 {
				h.ScreenWindowCenter.X = math.Float32frombits(binary.LittleEndian.Uint32(payload[0:4]))
				h.ScreenWindowCenter.Y = math.Float32frombits(binary.LittleEndian.Uint32(payload[4:8]))
			}
		case "screenWindowWidth":
			if typ == "float" && len(payload) == 4 {
				h.ScreenWindowWidth = math.Float32frombits(binary.LittleEndian.Uint32(payload))
			}
		case "tiles":
			return nil, fmt.Errorf("%w: tiled images", ErrUnsupported)
		}
	}

	switch {
	case !hasChannels:
		return nil, fmt.Errorf("%w: missing channels", ErrInvalidHeader)
	case !hasDataWindow:
		return nil, fmt.Errorf("%w: missing dataWindow", ErrInvalidHeader)
	case !hasCompression:
		return nil, fmt.Errorf("%w: missing compression", ErrInvalidHeader)
	}
	if err := h.validate(); err != nil {
		return nil, err
	}
	if err := h.validateWindow(true); err != nil {
		return nil, err
	}
	return h, nil
}

func parseBox(p []byte) Box2i {
	return Box2i{
		Min: V2i{X: int32(binary.LittleEndian.Uint32(p[0:4])), Y: int32(binary.LittleEndian.Uint32(p[4:8]))},
		Max: V2i{X: int32(binary.LittleEndian.Uint32(p[8:12])), Y: int32(binary.LittleEndian.Uint32(p[12:16]))},
	}
}

func parseChannels(data []byte, nameLimit int, cl *ChannelList) error {
	r := bytes.NewReader(data)
	for {
		name, err := readNullString(r, nameLimit)
		if err != nil {
			return fmt.Errorf("%w: channel list: %v", ErrInvalidHeader, err)
		}
		if name == "" {
			return nil
		}
		var rec [16]byte
		if _, err := io.ReadFull(r, rec[:]); err != nil {
			return fmt.Errorf("%w: channel %s: %v", ErrInvalidHeader, name, err)
		}
		cl.Insert(Channel{
			Name:      name,
			Type:      PixelType(int32(binary.LittleEndian.Uint32(rec[0:4]))),
			PLinear:   rec[4] != 0,
			XSampling: int32(binary.LittleEndian.Uint32(rec[8:12])),
			YSampling: int32(binary.LittleEndian.Uint32(rec[12:16])),
		})
	}
}

// ReadPixels decodes scanlines y1..y2 (inclusive, file coordinates) into fb.
// Every channel bound in fb must exist in the file; file channels without a
// binding are skipped.
func (r *Reader) ReadPixels(fb *FrameBuffer, y1, y2 int) error {
	if fb == nil {
		return errors.New("nil frame buffer")
	}
	dw := r.header.DataWindow
	minY, maxY := int(dw.Min.Y), int(dw.Max.Y)
	if dw.IsEmpty() || y1 < minY || y2 > maxY || y1 > y2 {
		return fmt.Errorf("%w: %d..%d not in %d..%d", ErrScanlineOutOfRange, y1, y2, minY, maxY)
	}
	rows := Box2i{Min: V2i{X: dw.Min.X, Y: int32(y1)}, Max: V2i{X: dw.Max.X, Y: int32(y2)}}
	if err := fb.check(&r.header.Channels, rows, true); err != nil {
		return err
	}

	per := r.header.Compression.ScanlinesPerChunk()
	first := (y1 - minY) / per
	last := (y2 - minY) / per
	for chunk := first; chunk <= last; chunk++ {
		startY := minY + chunk*per
		lines := per
		if startY+lines-1 > maxY {
			lines = maxY - startY + 1
		}
		data, err := r.readChunk(chunk, startY, lines)
		if err != nil {
			return err
		}
		if err := r.decodeChunk(fb, data, startY, lines, y1, y2); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) readChunk(chunk, startY, lines int) ([]byte, error) {
	off := r.offsets[chunk]
	if off == 0 || off > math.MaxInt64 {
		return nil, fmt.Errorf("%w: chunk %d has no offset", ErrCorruptChunk, chunk)
	}
	if _, err := r.rs.Seek(int64(off), io.SeekStart); err != nil {
		return nil, err
	}
	y, err := readI32(r.rs)
	if err != nil {
		return nil, err
	}
	if int(y) != startY {
		return nil, fmt.Errorf("%w: chunk %d starts at y=%d, want %d", ErrCorruptChunk, chunk, y, startY)
	}
	size, err := readI32(r.rs)
	if err != nil {
		return nil, err
	}
	expected := r.header.BytesPerLine() * lines
	if size < 0 || int64(size) > int64(expected)+1<<16 {
		return nil, fmt.Errorf("%w: chunk %d size %d", ErrCorruptChunk, chunk, size)
	}
	raw := make([]byte, size)
	if _, err := io.ReadFull(r.rs, raw); err != nil {
		return nil, err
	}
	return decompress(r.header.Compression, raw, expected)
}

func (r *Reader) decodeChunk(fb *FrameBuffer, data []byte, startY, lines, y1, y2 int) error {
	dw := r.header.DataWindow
	width := int(dw.Width())
	minX := int(dw.Min.X)
	cl := &r.header.Channels

	offset := 0
	for row := 0; row < lines; row++ {
		y := startY + row
		for i := 0; i < cl.Len(); i++ {
			ch := cl.At(i)
			lineBytes := width * ch.Type.Size()
			if offset+lineBytes > len(data) {
				return fmt.Errorf("%w: block truncated", ErrCorruptChunk)
			}
			line := data[offset : offset+lineBytes]
			offset += lineBytes

			s := fb.Get(ch.Name)
			if s == nil || y < y1 || y > y2 {
				continue
			}
			for x := 0; x < width; x++ {
				s.Data[s.Index(minX+x, y)] = sampleAt(ch.Type, line, x)
			}
		}
	}
	return nil
}

func sampleAt(t PixelType, line []byte, x int) float32 {
	switch t {
	case PixelHalf:
		return halfToFloat32(binary.LittleEndian.Uint16(line[x*2:]))
	case PixelUint:
		return float32(binary.LittleEndian.Uint32(line[x*4:]))
	default:
		return math.Float32frombits(binary.LittleEndian.Uint32(line[x*4:]))
	}
}
