package exrplanes

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/vearutop/exrplanes/internal/exrcodec"
)

// Decoder yields a file header and scanline pixel data on demand.
type Decoder interface {
	Header() *Header
	// ReadScanlines fills fb with scanlines minY..maxY (inclusive, file
	// coordinates). Bound channels absent from the file fail with
	// ErrMissingRequiredChannel.
	ReadScanlines(minY, maxY int, fb *FrameBuffer) error
	Close() error
}

// Encoder writes scanlines sequentially for a header fixed at creation.
type Encoder interface {
	WriteScanlines(fb *FrameBuffer, rows int) error
	Close() error
}

// Codec opens decoders and encoders by path.
type Codec interface {
	OpenDecoder(path string) (Decoder, error)
	CreateEncoder(path string, h *Header) (Encoder, error)
}

// FileCodec is the default Codec, reading and writing files on disk.
type FileCodec struct{}

// OpenDecoder opens path and parses its header.
func (FileCodec) OpenDecoder(path string) (Decoder, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	d, err := newStreamDecoder(f, f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return d, nil
}

// CreateEncoder creates or truncates path and writes the header.
func (FileCodec) CreateEncoder(path string, h *Header) (Encoder, error) {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	e, err := newStreamEncoder(f, f, h)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return e, nil
}

// NewDecoder returns a Decoder over rs. Closing it does not close rs.
func NewDecoder(rs io.ReadSeeker) (Decoder, error) {
	return newStreamDecoder(rs, nil)
}

// NewEncoder returns an Encoder writing to ws. Closing it finalizes the
// offset table but does not close ws.
func NewEncoder(ws io.WriteSeeker, h *Header) (Encoder, error) {
	return newStreamEncoder(ws, nil, h)
}

type streamDecoder struct {
	r      *exrcodec.Reader
	closer io.Closer
}

func newStreamDecoder(rs io.ReadSeeker, closer io.Closer) (*streamDecoder, error) {
	r, err := exrcodec.NewReader(rs)
	if err != nil {
		return nil, err
	}
	return &streamDecoder{r: r, closer: closer}, nil
}

func (d *streamDecoder) Header() *Header {
	return d.r.Header()
}

func (d *streamDecoder) ReadScanlines(minY, maxY int, fb *FrameBuffer) error {
	return d.r.ReadPixels(fb, minY, maxY)
}

func (d *streamDecoder) Close() error {
	if d.closer == nil {
		return nil
	}
	c := d.closer
	d.closer = nil
	return c.Close()
}

type streamEncoder struct {
	w      *exrcodec.Writer
	closer io.Closer
}

func newStreamEncoder(ws io.WriteSeeker, closer io.Closer, h *Header) (*streamEncoder, error) {
	w, err := exrcodec.NewWriter(ws, h)
	if err != nil {
		return nil, err
	}
	return &streamEncoder{w: w, closer: closer}, nil
}

func (e *streamEncoder) WriteScanlines(fb *FrameBuffer, rows int) error {
	return e.w.WritePixels(fb, rows)
}

func (e *streamEncoder) Close() error {
	err := e.w.Close()
	if e.closer != nil {
		err = errors.Join(err, e.closer.Close())
		e.closer = nil
	}
	return err
}
