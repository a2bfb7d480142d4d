// Package exrplanes reads and writes OpenEXR scanline images as four
// column-major float64 planes (red, green, blue, alpha).
//
// The package sits between callers that store images as column-major
// matrices of doubles and the scanline layout of OpenEXR, where rows are
// contiguous and samples are float32. Reading always requests R, G and B and
// reads A only when the file has it, defaulting to fully opaque. Writing
// always produces R, G, B and A float channels, replaces non-finite samples
// with zero, and selects ZIP or ZIPS compression from an environment toggle.
package exrplanes
