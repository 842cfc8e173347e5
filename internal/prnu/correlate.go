package prnu

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/aperture-data/sensor.report/internal/frame"
)

// NormalizedCrossCorrelation computes the zero-mean normalized correlation
// coefficient between two maps of identical shape:
//
//	score = Σ((A−mean(A))·(B−mean(B))) / sqrt(Σ(A−mean(A))² · Σ(B−mean(B))²)
//
// The result lies in [-1, 1], is symmetric in its arguments, and scores a
// map against itself as 1. The sums run in row-major order in a single
// pass, so the score is reproducible bit for bit.
func NormalizedCrossCorrelation(a, b *frame.Map) (float64, error) {
	if a.Shape() != b.Shape() {
		return 0, &DimensionMismatchError{
			Context: "correlation",
			Want:    a.Shape(),
			Got:     b.Shape(),
		}
	}

	meanA := stat.Mean(a.Pix, nil)
	meanB := stat.Mean(b.Pix, nil)

	var num, varA, varB float64
	for i := range a.Pix {
		da := a.Pix[i] - meanA
		db := b.Pix[i] - meanB
		num += da * db
		varA += da * da
		varB += db * db
	}

	if varA == 0 {
		return 0, &DegenerateSignalError{Context: "first correlation input"}
	}
	if varB == 0 {
		return 0, &DegenerateSignalError{Context: "second correlation input"}
	}

	score := num / sqrtProduct(varA, varB)
	// Floating-point roundoff can overshoot the mathematical range by an
	// ulp or two; an undefined score is still reported as an error above.
	if score > 1 {
		score = 1
	} else if score < -1 {
		score = -1
	}
	return score, nil
}

func sqrtProduct(a, b float64) float64 {
	// sqrt(a)*sqrt(b) rather than sqrt(a*b) to keep very large maps away
	// from overflow.
	return math.Sqrt(a) * math.Sqrt(b)
}

// CenterCrop returns the centered region of the given shape. The requested
// shape must not exceed the map in either dimension.
func CenterCrop(m *frame.Map, shape frame.Shape) *frame.Map {
	if m.Shape() == shape {
		return m
	}
	x0 := (m.Width - shape.Width) / 2
	y0 := (m.Height - shape.Height) / 2
	out := frame.NewMap(shape.Width, shape.Height)
	for y := 0; y < shape.Height; y++ {
		src := (y0+y)*m.Width + x0
		copy(out.Pix[y*shape.Width:(y+1)*shape.Width], m.Pix[src:src+shape.Width])
	}
	return out
}

// commonShape is the centered overlap of two shapes.
func commonShape(a, b frame.Shape) frame.Shape {
	s := a
	if b.Width < s.Width {
		s.Width = b.Width
	}
	if b.Height < s.Height {
		s.Height = b.Height
	}
	return s
}
