package prnu

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/aperture-data/sensor.report/internal/frame"
)

// Fingerprint is a sensor-pattern-noise estimate built by averaging one or
// more per-frame residuals. FrameCount records how many frames contributed;
// expected signal-to-noise grows with it.
type Fingerprint struct {
	Map        *frame.Map
	FrameCount int
}

// Shape returns the fingerprint dimensions.
func (fp *Fingerprint) Shape() frame.Shape {
	return fp.Map.Shape()
}

// AggregateFingerprint averages residual maps into a fingerprint. Each
// residual is first normalized by its own standard deviation so frames of
// different noise energy contribute comparably, and the averaged map is
// renormalized the same way. Summation runs in slice order, so the result
// is bit-for-bit reproducible; in exact arithmetic it is order-independent.
func AggregateFingerprint(residuals []*frame.Map) (*Fingerprint, error) {
	if len(residuals) == 0 {
		return nil, &InsufficientReferenceFramesError{Got: 0, Need: 1}
	}

	shape := residuals[0].Shape()
	acc := frame.NewMap(shape.Width, shape.Height)
	for idx, r := range residuals {
		if r.Shape() != shape {
			return nil, &DimensionMismatchError{
				Context: fmt.Sprintf("residual %d in aggregation", idx),
				Want:    shape,
				Got:     r.Shape(),
			}
		}
		sd := stat.StdDev(r.Pix, nil)
		if sd == 0 || math.IsNaN(sd) {
			return nil, &DegenerateSignalError{Context: fmt.Sprintf("residual %d in aggregation", idx)}
		}
		inv := 1.0 / sd
		for i, v := range r.Pix {
			acc.Pix[i] += v * inv
		}
	}

	n := float64(len(residuals))
	for i := range acc.Pix {
		acc.Pix[i] /= n
	}

	sd := stat.StdDev(acc.Pix, nil)
	if sd == 0 || math.IsNaN(sd) {
		return nil, &DegenerateSignalError{Context: "aggregated fingerprint"}
	}
	inv := 1.0 / sd
	for i := range acc.Pix {
		acc.Pix[i] *= inv
	}

	return &Fingerprint{Map: acc, FrameCount: len(residuals)}, nil
}
