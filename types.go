package exrplanes

import "github.com/vearutop/exrplanes/internal/exrcodec"

// Codec-level types shared with Decoder and Encoder implementations.
type (
	Header      = exrcodec.Header
	Box2i       = exrcodec.Box2i
	V2i         = exrcodec.V2i
	Channel     = exrcodec.Channel
	ChannelList = exrcodec.ChannelList
	FrameBuffer = exrcodec.FrameBuffer
	Slice       = exrcodec.Slice
	PixelType   = exrcodec.PixelType
	Compression = exrcodec.Compression
)

const (
	CompressionNone = exrcodec.CompressionNone
	CompressionZIPS = exrcodec.CompressionZIPS
	CompressionZIP  = exrcodec.CompressionZIP
)

// Channel names of the four planes.
const (
	ChannelR = "R"
	ChannelG = "G"
	ChannelB = "B"
	ChannelA = "A"
)

// Matrix is a dense column-major plane: the sample for column x and row y is
// Data[x*Rows+y]. Rows is the image height and Cols the width.
type Matrix struct {
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	Data []float64 `json:"data"`
}

// NewMatrix returns a zero-filled rows×cols matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// At returns the sample at row y, column x.
func (m *Matrix) At(y, x int) float64 {
	return m.Data[x*m.Rows+y]
}

// Set stores v at row y, column x.
func (m *Matrix) Set(y, x int, v float64) {
	m.Data[x*m.Rows+y] = v
}

// Fill sets every sample to v.
func (m *Matrix) Fill(v float64) *Matrix {
	for i := range m.Data {
		m.Data[i] = v
	}
	return m
}

// Image is a set of four equally shaped planes. Width and Height are the
// declared dimensions; on write every plane must be Height×Width.
type Image struct {
	R      *Matrix `json:"r"`
	G      *Matrix `json:"g"`
	B      *Matrix `json:"b"`
	A      *Matrix `json:"a"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
}

// NewImage returns a black, fully opaque width×height image.
func NewImage(width, height int) *Image {
	return &Image{
		R:      NewMatrix(height, width),
		G:      NewMatrix(height, width),
		B:      NewMatrix(height, width),
		A:      NewMatrix(height, width).Fill(1),
		Width:  width,
		Height: height,
	}
}

func (img *Image) planes() [4]*Matrix {
	return [4]*Matrix{img.R, img.G, img.B, img.A}
}

var planeNames = [4]string{ChannelR, ChannelG, ChannelB, ChannelA}
