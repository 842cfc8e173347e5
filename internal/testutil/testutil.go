// Package testutil provides shared test fixtures: deterministic synthetic
// noise maps and frames for exercising the PRNU pipeline without real
// sensor captures.
package testutil

import (
	"math/rand"
	"testing"

	"github.com/aperture-data/sensor.report/internal/frame"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// NewRand returns a deterministic source for synthetic data. Fixed seeds
// keep statistical assertions reproducible run to run.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// GaussianMap builds a map of independent N(0, sigma) samples.
func GaussianMap(rng *rand.Rand, width, height int, sigma float64) *frame.Map {
	m := frame.NewMap(width, height)
	for i := range m.Pix {
		m.Pix[i] = rng.NormFloat64() * sigma
	}
	return m
}

// AddMaps returns the pixelwise sum of two equal-shaped maps.
func AddMaps(a, b *frame.Map) *frame.Map {
	out := frame.NewMap(a.Width, a.Height)
	for i := range a.Pix {
		out.Pix[i] = a.Pix[i] + b.Pix[i]
	}
	return out
}

// GradientFrame builds a raw frame with a smooth horizontal ramp, useful as
// benign "scene" content.
func GradientFrame(id string, width, height, bitDepth int) *frame.RawFrame {
	maxVal := (uint32(1) << uint(bitDepth)) - 1
	pixels := make([]uint16, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixels[y*width+x] = uint16(uint32(x) * maxVal / uint32(width))
		}
	}
	return &frame.RawFrame{
		ID:       id,
		Pixels:   pixels,
		Width:    width,
		Height:   height,
		BitDepth: bitDepth,
		Channels: 1,
	}
}

// NoisyFrame builds a raw frame of mid-scale values perturbed by uniform
// noise of the given amplitude (in raw counts).
func NoisyFrame(rng *rand.Rand, id string, width, height, bitDepth int, amplitude int) *frame.RawFrame {
	mid := int((uint32(1) << uint(bitDepth)) / 2)
	pixels := make([]uint16, width*height)
	for i := range pixels {
		v := mid + rng.Intn(2*amplitude+1) - amplitude
		if v < 0 {
			v = 0
		}
		pixels[i] = uint16(v)
	}
	return &frame.RawFrame{
		ID:       id,
		Pixels:   pixels,
		Width:    width,
		Height:   height,
		BitDepth: bitDepth,
		Channels: 1,
	}
}
