// Package frame holds the pixel-level value types shared by the PRNU
// pipeline: decoded sensor frames, normalized grayscale maps, and the
// luminance preprocessor that converts one into the other.
package frame

import "fmt"

// MaxBitDepth is the largest per-sample bit depth accepted from a decoder.
const MaxBitDepth = 16

// Shape is the width/height of a pixel map.
type Shape struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// N returns the number of pixels covered by the shape.
func (s Shape) N() int {
	return s.Width * s.Height
}

// RawFrame is a decoded, demosaiced pixel grid handed in by a decoding
// collaborator. Samples are interleaved by channel, row-major. The frame is
// owned by the caller and never mutated by the pipeline.
type RawFrame struct {
	ID       string
	Pixels   []uint16
	Width    int
	Height   int
	BitDepth int
	Channels int
}

// Shape returns the frame dimensions.
func (f *RawFrame) Shape() Shape {
	return Shape{Width: f.Width, Height: f.Height}
}

// Map is a single-channel float64 raster, row-major. Grayscale values
// produced by Preprocess lie in [0,1]; denoised maps share that range;
// residual maps are signed and approximately zero-mean.
type Map struct {
	Pix    []float64
	Width  int
	Height int
}

// NewMap allocates a zeroed map of the given dimensions.
func NewMap(width, height int) *Map {
	return &Map{
		Pix:    make([]float64, width*height),
		Width:  width,
		Height: height,
	}
}

// Shape returns the map dimensions.
func (m *Map) Shape() Shape {
	return Shape{Width: m.Width, Height: m.Height}
}

// At returns the value at (x, y). No bounds checking beyond the slice's own.
func (m *Map) At(x, y int) float64 {
	return m.Pix[y*m.Width+x]
}

// Set writes the value at (x, y).
func (m *Map) Set(x, y int, v float64) {
	m.Pix[y*m.Width+x] = v
}

// Clone returns a deep copy of the map.
func (m *Map) Clone() *Map {
	out := NewMap(m.Width, m.Height)
	copy(out.Pix, m.Pix)
	return out
}

// InvalidFrameError reports a RawFrame that fails the input contract:
// unsupported bit depth, bad dimensions, or a pixel buffer that does not
// match the declared geometry.
type InvalidFrameError struct {
	FrameID string
	Reason  string
}

func (e *InvalidFrameError) Error() string {
	if e.FrameID == "" {
		return fmt.Sprintf("invalid frame: %s", e.Reason)
	}
	return fmt.Sprintf("invalid frame %q: %s", e.FrameID, e.Reason)
}
