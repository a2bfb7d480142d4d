package exrplanes

import (
	"errors"

	"github.com/vearutop/exrplanes/internal/exrcodec"
)

var (
	// ErrInvalidGeometry is returned when a file's data window is empty.
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrMissingRequiredChannel is returned when R, G or B is absent.
	ErrMissingRequiredChannel = exrcodec.ErrMissingChannel
	// ErrDimensionMismatch is returned when planes disagree with the declared
	// width and height.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrImageTooLarge is returned when a data window exceeds
	// ReadOptions.MaxPixels.
	ErrImageTooLarge = errors.New("image too large")
)

// DecodeError reports a failed read.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return "OpenEXR read error: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError reports a failed write. A partially written file may remain at
// Path.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return "OpenEXR write error: " + e.Err.Error()
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
