package exrplanes

import (
	"io"
	"log/slog"

	"github.com/vearutop/exrplanes/internal/exrcodec"
)

// WriteOptions controls writing.
type WriteOptions struct {
	// Codec creates files by path, FileCodec{} by default.
	Codec Codec
	// Toggle is consulted once per write to select compression, EnvToggle by
	// default.
	Toggle ToggleFunc
	// Logger receives a debug trace of the pipeline.
	Logger *slog.Logger
}

func writeOptions(opts []func(o *WriteOptions)) WriteOptions {
	opt := WriteOptions{
		Codec:  FileCodec{},
		Toggle: EnvToggle,
	}
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}
	if opt.Logger == nil {
		opt.Logger = discardLogger()
	}
	if opt.Toggle == nil {
		opt.Toggle = func() string { return "" }
	}
	return opt
}

// Write encodes img as an RGBA float OpenEXR file at path. Planes must all be
// img.Height×img.Width, otherwise ErrDimensionMismatch is returned and no file
// is touched. Non-finite samples are written as 0. Codec failures are
// *EncodeError; a partial file may remain after a late failure.
func Write(path string, img *Image, opts ...func(o *WriteOptions)) error {
	opt := writeOptions(opts)
	opt.Logger.Debug("write", "path", path)
	return encode(img, opt, path, func(h *Header) (Encoder, error) {
		return opt.Codec.CreateEncoder(path, h)
	})
}

// Encode is Write for an already open stream.
func Encode(ws io.WriteSeeker, img *Image, opts ...func(o *WriteOptions)) error {
	opt := writeOptions(opts)
	return encode(img, opt, "", func(h *Header) (Encoder, error) {
		return NewEncoder(ws, h)
	})
}

func encode(img *Image, opt WriteOptions, path string, open func(h *Header) (Encoder, error)) (err error) {
	logger := opt.Logger
	if err := validateShape(img); err != nil {
		return err
	}
	w, h := img.Width, img.Height
	logger.Debug("shape checked", "width", w, "height", h)

	var planes [4][]float32
	for i, m := range img.planes() {
		planes[i] = narrow(m.Data, w, h)
	}
	logger.Debug("planes converted", "r", planes[0][0], "g", planes[1][0], "b", planes[2][0], "a", planes[3][0])

	header := exrcodec.NewHeader(w, h)
	fb := bindWrite(header, planes, w)
	logger.Debug("frame buffer bound", "x_stride", 4, "y_stride", 4*w)

	header.Compression = SelectCompression(opt.Toggle())
	logger.Debug("compression selected", "mode", header.Compression.String())

	enc, err := open(header)
	if err != nil {
		return &EncodeError{Path: path, Err: err}
	}
	defer func() {
		if cerr := enc.Close(); cerr != nil && err == nil {
			err = &EncodeError{Path: path, Err: cerr}
		}
	}()

	for y := 0; y < h; y++ {
		if err := enc.WriteScanlines(fb, 1); err != nil {
			logger.Debug("write failed", "row", y, "error", err)
			return &EncodeError{Path: path, Err: err}
		}
		logger.Debug("scanline written", "row", y+1, "of", h)
	}
	logger.Debug("write done")
	return nil
}
