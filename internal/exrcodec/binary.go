package exrcodec

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

var (
	// ErrNotOpenEXR is returned when the magic number does not match.
	ErrNotOpenEXR = errors.New("not an OpenEXR file")
	// ErrUnsupported is returned for valid files using features outside the
	// single-part scanline subset.
	ErrUnsupported = errors.New("unsupported OpenEXR feature")
	// ErrInvalidHeader is returned for malformed or inconsistent headers.
	ErrInvalidHeader = errors.New("invalid OpenEXR header")
	// ErrMissingChannel is returned when a frame buffer names a channel the
	// file does not have.
	ErrMissingChannel = errors.New("missing channel")
	// ErrScanlineOutOfRange is returned for scanline ranges outside the data window.
	ErrScanlineOutOfRange = errors.New("scanline out of range")
	// ErrCorruptChunk is returned when chunk data does not match the header.
	ErrCorruptChunk = errors.New("corrupt OpenEXR chunk")
)

func readNullString(r io.ByteReader, limit int) (string, error) {
	var buf []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if b == 0 {
			break
		}
		if len(buf) == limit {
			return "", errors.New("OpenEXR attribute name too long")
		}
		buf = append(buf, b)
	}
	return string(buf), nil
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readU64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func readI32(r io.Reader) (int32, error) {
	v, err := readU32(r)
	return int32(v), err
}

// attrWriter accumulates header bytes.
type attrWriter struct {
	buf []byte
}

func (w *attrWriter) str(s string) {
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}

func (w *attrWriter) u8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *attrWriter) u32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *attrWriter) i32(v int32) {
	w.u32(uint32(v))
}

func (w *attrWriter) u64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

func (w *attrWriter) f32(v float32) {
	w.u32(math.Float32bits(v))
}

func (w *attrWriter) box(b Box2i) {
	w.i32(b.Min.X)
	w.i32(b.Min.Y)
	w.i32(b.Max.X)
	w.i32(b.Max.Y)
}

// attr writes name, type, size and the payload produced by fill.
func (w *attrWriter) attr(name, typ string, fill func(p *attrWriter)) {
	var p attrWriter
	fill(&p)
	w.str(name)
	w.str(typ)
	w.i32(int32(len(p.buf)))
	w.buf = append(w.buf, p.buf...)
}
