package exrcodec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Writer encodes scanlines into a single-part OpenEXR stream in increasing y
// order. Lines are buffered until a chunk is complete and chunks are written
// as soon as they are full, so a failure can leave a partial file behind.
type Writer struct {
	ws        io.WriteSeeker
	header    *Header
	tablePos  int64
	offsets   []uint64
	nextY     int
	pending   []byte
	pendLines int
	closed    bool
}

// NewWriter writes the magic number, header and a placeholder offset table.
// The header's data window must be non-empty and its line order increasing.
func NewWriter(ws io.WriteSeeker, h *Header) (*Writer, error) {
	if h == nil {
		return nil, errors.New("nil header")
	}
	if err := h.validate(); err != nil {
		return nil, err
	}
	if err := h.validateWindow(false); err != nil {
		return nil, err
	}
	if h.LineOrder != LineOrderIncreasingY {
		return nil, fmt.Errorf("%w: writing line order %d", ErrUnsupported, h.LineOrder)
	}

	start, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}

	var w attrWriter
	w.u32(Magic)
	w.u32(fileVersion | versionFlags(h))
	writeHeader(&w, h)
	tablePos := start + int64(len(w.buf))
	for i := 0; i < h.ChunkCount(); i++ {
		w.u64(0)
	}
	if _, err := ws.Write(w.buf); err != nil {
		return nil, err
	}

	return &Writer{
		ws:       ws,
		header:   h,
		tablePos: tablePos,
		offsets:  make([]uint64, h.ChunkCount()),
		nextY:    int(h.DataWindow.Min.Y),
	}, nil
}

func versionFlags(h *Header) uint32 {
	for i := 0; i < h.Channels.Len(); i++ {
		if len(h.Channels.At(i).Name) > 31 {
			return flagLongNames
		}
	}
	return 0
}

func writeHeader(w *attrWriter, h *Header) {
	w.attr("channels", "chlist", func(p *attrWriter) {
		for i := 0; i < h.Channels.Len(); i++ {
			ch := h.Channels.At(i)
			p.str(ch.Name)
			p.i32(int32(ch.Type))
			if ch.PLinear {
				p.u8(1)
			} else {
				p.u8(0)
			}
			p.u8(0)
			p.u8(0)
			p.u8(0)
			p.i32(ch.XSampling)
			p.i32(ch.YSampling)
		}
		p.u8(0)
	})
	w.attr("compression", "compression", func(p *attrWriter) { p.u8(uint8(h.Compression)) })
	w.attr("dataWindow", "box2i", func(p *attrWriter) { p.box(h.DataWindow) })
	w.attr("displayWindow", "box2i", func(p *attrWriter) { p.box(h.DisplayWindow) })
	w.attr("lineOrder", "lineOrder", func(p *attrWriter) { p.u8(uint8(h.LineOrder)) })
	w.attr("pixelAspectRatio", "float", func(p *attrWriter) { p.f32(h.PixelAspectRatio) })
	w.attr("screenWindowCenter", "v2f", func(p *attrWriter) {
		p.f32(h.ScreenWindowCenter.X)
		p.f32(h.ScreenWindowCenter.Y)
	})
	w.attr("screenWindowWidth", "float", func(p *attrWriter) { p.f32(h.ScreenWindowWidth) })
	w.u8(0)
}

// Header returns the header being written.
func (w *Writer) Header() *Header {
	return w.header
}

// WritePixels appends the next rows scanlines from fb. Header channels with
// no binding in fb are written as zeros.
func (w *Writer) WritePixels(fb *FrameBuffer, rows int) error {
	if w.closed {
		return errors.New("write to closed OpenEXR writer")
	}
	if fb == nil {
		return errors.New("nil frame buffer")
	}
	dw := w.header.DataWindow
	if rows <= 0 || w.nextY+rows-1 > int(dw.Max.Y) {
		return fmt.Errorf("%w: %d rows from y=%d past %d", ErrScanlineOutOfRange, rows, w.nextY, dw.Max.Y)
	}
	box := Box2i{Min: V2i{X: dw.Min.X, Y: int32(w.nextY)}, Max: V2i{X: dw.Max.X, Y: int32(w.nextY + rows - 1)}}
	if err := fb.check(&w.header.Channels, box, false); err != nil {
		return err
	}

	per := w.header.Compression.ScanlinesPerChunk()
	for i := 0; i < rows; i++ {
		w.pending = w.appendLine(w.pending, fb, w.nextY)
		w.pendLines++
		w.nextY++
		if w.pendLines == per || w.nextY > int(dw.Max.Y) {
			if err := w.flushChunk(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Writer) appendLine(dst []byte, fb *FrameBuffer, y int) []byte {
	dw := w.header.DataWindow
	width := int(dw.Width())
	minX := int(dw.Min.X)
	for i := 0; i < w.header.Channels.Len(); i++ {
		ch := w.header.Channels.At(i)
		s := fb.Get(ch.Name)
		for x := 0; x < width; x++ {
			var v float32
			if s != nil {
				v = s.Data[s.Index(minX+x, y)]
			}
			switch ch.Type {
			case PixelHalf:
				dst = binary.LittleEndian.AppendUint16(dst, float32ToHalf(v))
			case PixelUint:
				dst = binary.LittleEndian.AppendUint32(dst, float32ToUint(v))
			default:
				dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
			}
		}
	}
	return dst
}

func float32ToUint(v float32) uint32 {
	switch {
	case !(v > 0):
		return 0
	case v >= math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(v)
	}
}

func (w *Writer) flushChunk() error {
	per := w.header.Compression.ScanlinesPerChunk()
	startY := w.nextY - w.pendLines
	chunk := (startY - int(w.header.DataWindow.Min.Y)) / per

	payload, err := compress(w.header.Compression, w.pending)
	if err != nil {
		return err
	}
	pos, err := w.ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}

	buf := make([]byte, 0, 8+len(payload))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(startY)))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(payload)))
	buf = append(buf, payload...)
	if _, err := w.ws.Write(buf); err != nil {
		return err
	}

	w.offsets[chunk] = uint64(pos)
	w.pending = w.pending[:0]
	w.pendLines = 0
	return nil
}

// Close fills in the offset table. It fails if not every scanline of the data
// window was written; the offsets of chunks that were written are still
// recorded.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	end, err := w.ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	table := make([]byte, 0, 8*len(w.offsets))
	for _, off := range w.offsets {
		table = binary.LittleEndian.AppendUint64(table, off)
	}
	if _, err := w.ws.Seek(w.tablePos, io.SeekStart); err != nil {
		return err
	}
	if _, err := w.ws.Write(table); err != nil {
		return err
	}
	if _, err := w.ws.Seek(end, io.SeekStart); err != nil {
		return err
	}

	if missing := int(w.header.DataWindow.Max.Y) - w.nextY + 1; missing > 0 {
		return fmt.Errorf("image incomplete: %d scanlines not written", missing)
	}
	return nil
}
