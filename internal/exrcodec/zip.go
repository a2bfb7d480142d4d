package exrcodec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// zipLevel is the deflate level used for ZIP and ZIPS chunks.
const zipLevel = zlib.DefaultCompression

func decompress(c Compression, data []byte, expected int) ([]byte, error) {
	switch c {
	case CompressionNone:
		if len(data) != expected {
			return nil, fmt.Errorf("%w: block size %d, want %d", ErrCorruptChunk, len(data), expected)
		}
		return data, nil
	case CompressionZIPS, CompressionZIP:
		// Writers store a chunk raw when compression does not shrink it.
		if len(data) == expected {
			return data, nil
		}
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptChunk, err)
		}
		defer zr.Close()
		uncompressed, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptChunk, err)
		}
		if len(uncompressed) != expected {
			return nil, fmt.Errorf("%w: decompressed size %d, want %d", ErrCorruptChunk, len(uncompressed), expected)
		}
		undoPredictor(uncompressed)
		return deinterleave(uncompressed), nil
	default:
		return nil, fmt.Errorf("%w: compression %s", ErrUnsupported, c)
	}
}

// compress returns the chunk payload for raw. ZIP payloads that do not get
// smaller are stored raw, which readers detect by size.
func compress(c Compression, raw []byte) ([]byte, error) {
	switch c {
	case CompressionNone:
		return raw, nil
	case CompressionZIPS, CompressionZIP:
		tmp := interleave(raw)
		applyPredictor(tmp)

		var buf bytes.Buffer
		zw, err := zlib.NewWriterLevel(&buf, zipLevel)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(tmp); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		if buf.Len() >= len(raw) {
			return raw, nil
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: compression %s", ErrUnsupported, c)
	}
}

func applyPredictor(data []byte) {
	if len(data) == 0 {
		return
	}
	prev := data[0]
	for i := 1; i < len(data); i++ {
		cur := data[i]
		data[i] = byte(int(cur) - int(prev) + 128)
		prev = cur
	}
}

func undoPredictor(data []byte) {
	for i := 1; i < len(data); i++ {
		data[i] = byte(int(data[i]) + int(data[i-1]) - 128)
	}
}

// interleave moves even bytes to the first half and odd bytes to the second.
func interleave(data []byte) []byte {
	out := make([]byte, len(data))
	half := (len(data) + 1) / 2
	for i, b := range data {
		if i%2 == 0 {
			out[i/2] = b
		} else {
			out[half+i/2] = b
		}
	}
	return out
}

func deinterleave(data []byte) []byte {
	out := make([]byte, len(data))
	half := (len(data) + 1) / 2
	for i := range out {
		if i%2 == 0 {
			out[i] = data[i/2]
		} else {
			out[i] = data[half+i/2]
		}
	}
	return out
}
