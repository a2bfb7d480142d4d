package exrplanes

import (
	"fmt"
	"io"
	"log/slog"
)

// ReadOptions controls reading.
type ReadOptions struct {
	// Codec opens files by path, FileCodec{} by default.
	Codec Codec
	// Logger receives a debug trace of the pipeline.
	Logger *slog.Logger
	// MaxPixels rejects data windows with more pixels with ErrImageTooLarge
	// before any plane is allocated. Zero means no limit.
	MaxPixels int
}

func readOptions(opts []func(o *ReadOptions)) ReadOptions {
	opt := ReadOptions{Codec: FileCodec{}}
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}
	if opt.Logger == nil {
		opt.Logger = discardLogger()
	}
	return opt
}

// Read decodes the OpenEXR file at path into four column-major planes.
// A is all ones when the file has no A channel. Failures are *DecodeError.
func Read(path string, opts ...func(o *ReadOptions)) (*Image, error) {
	opt := readOptions(opts)
	opt.Logger.Debug("read", "path", path)

	dec, err := opt.Codec.OpenDecoder(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer dec.Close()

	img, err := decode(dec, opt)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return img, nil
}

// Decode is Read for an in-memory or already open stream.
func Decode(rs io.ReadSeeker, opts ...func(o *ReadOptions)) (*Image, error) {
	opt := readOptions(opts)

	dec, err := NewDecoder(rs)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	defer dec.Close()

	img, err := decode(dec, opt)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return img, nil
}

func decode(dec Decoder, opt ReadOptions) (*Image, error) {
	logger := opt.Logger
	h := dec.Header()
	g, err := resolveGeometry(h)
	if err != nil {
		return nil, err
	}
	if opt.MaxPixels > 0 && g.pixels() > opt.MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, g.width, g.height, opt.MaxPixels)
	}
	logger.Debug("header", "width", g.width, "height", g.height,
		"min_x", g.box.Min.X, "min_y", g.box.Min.Y,
		"channels", h.Channels.Names(), "compression", h.Compression.String())

	plan := planRead(&h.Channels, g)
	logger.Debug("channels planned", "alpha", plan.hasAlpha)

	if err := dec.ReadScanlines(int(g.box.Min.Y), int(g.box.Max.Y), plan.fb); err != nil {
		return nil, err
	}

	img := &Image{Width: g.width, Height: g.height}
	planes := [4]**Matrix{&img.R, &img.G, &img.B, &img.A}
	for i, p := range plan.planes {
		*planes[i] = &Matrix{Rows: g.height, Cols: g.width, Data: widen(p, g.width, g.height)}
	}
	logger.Debug("read done")
	return img, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
