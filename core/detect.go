package core

import "bytes"

// Format identifies the container of an image.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// pngSignature is the fixed 8-byte PNG file signature.
var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// DetectFormat sniffs the container format from magic bytes. Anything
// that does not carry the PNG signature is treated as JPEG: the pipeline
// only ever routes between the two codec paths, and a mismatch is not an
// error.
func DetectFormat(data []byte) Format {
	if IsPNG(data) {
		return FormatPNG
	}
	return FormatJPEG
}

// IsPNG reports whether data starts with the PNG signature.
func IsPNG(data []byte) bool {
	return len(data) >= 8 && bytes.Equal(data[:8], pngSignature)
}

// IsJPEG reports whether data starts with the JPEG SOI marker.
func IsJPEG(data []byte) bool {
	return len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF
}

// PNGSignature returns a copy of the 8-byte PNG signature.
func PNGSignature() []byte {
	out := make([]byte, 8)
	copy(out, pngSignature)
	return out
}
