package prnu

import (
	"fmt"
	"math"

	"github.com/aperture-data/sensor.report/internal/frame"
)

// FilterFamily selects the low-pass estimator used to separate scene
// content from sensor noise.
type FilterFamily string

const (
	// FilterGaussian is a separable Gaussian blur, the estimator used by
	// the classic PRNU workflow.
	FilterGaussian FilterFamily = "gaussian"
	// FilterWavelet is a multi-level Haar decomposition with soft
	// shrinkage of the detail coefficients.
	FilterWavelet FilterFamily = "wavelet"
)

// DenoiseConfig selects a filter family and its parameters. The zero value
// is not valid; Validate reports what is missing.
type DenoiseConfig struct {
	Filter FilterFamily `json:"filter"`

	// Gaussian parameters. Sigma <= 0 derives the standard deviation from
	// the kernel size the way OpenCV does for GaussianBlur(..., 0).
	KernelSize int     `json:"kernel_size,omitempty"`
	Sigma      float64 `json:"sigma,omitempty"`

	// Wavelet parameters.
	Levels    int     `json:"levels,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
}

// Validate checks the configuration against the shape it will be applied to.
func (c DenoiseConfig) Validate(shape frame.Shape) error {
	minDim := shape.Width
	if shape.Height < minDim {
		minDim = shape.Height
	}
	switch c.Filter {
	case FilterGaussian:
		if c.KernelSize <= 0 {
			return &InvalidConfigurationError{Reason: fmt.Sprintf("gaussian kernel size must be positive, got %d", c.KernelSize)}
		}
		if c.KernelSize%2 == 0 {
			return &InvalidConfigurationError{Reason: fmt.Sprintf("gaussian kernel size must be odd, got %d", c.KernelSize)}
		}
		if (c.KernelSize-1)/2 > minDim-1 {
			return &InvalidConfigurationError{Reason: fmt.Sprintf("gaussian kernel size %d too large for %s image", c.KernelSize, shape)}
		}
	case FilterWavelet:
		if c.Levels <= 0 {
			return &InvalidConfigurationError{Reason: fmt.Sprintf("wavelet level count must be positive, got %d", c.Levels)}
		}
		if minDim>>uint(c.Levels) < 1 {
			return &InvalidConfigurationError{Reason: fmt.Sprintf("wavelet level count %d exceeds %s image", c.Levels, shape)}
		}
		if c.Threshold < 0 {
			return &InvalidConfigurationError{Reason: fmt.Sprintf("wavelet shrinkage threshold must be non-negative, got %g", c.Threshold)}
		}
	default:
		return &InvalidConfigurationError{Reason: fmt.Sprintf("unknown filter family %q", c.Filter)}
	}
	return nil
}

// Denoise applies the configured low-pass filter and returns the estimated
// scene content at the same shape as the input. Deterministic for a fixed
// input and configuration; the input map is not modified.
func Denoise(img *frame.Map, cfg DenoiseConfig) (*frame.Map, error) {
	if err := cfg.Validate(img.Shape()); err != nil {
		return nil, err
	}
	switch cfg.Filter {
	case FilterGaussian:
		return gaussianBlur(img, cfg.KernelSize, cfg.Sigma), nil
	case FilterWavelet:
		return waveletDenoise(img, cfg.Levels, cfg.Threshold), nil
	}
	// Validate rejects anything else.
	return nil, &InvalidConfigurationError{Reason: fmt.Sprintf("unknown filter family %q", cfg.Filter)}
}

// gaussianKernel builds a normalized 1D Gaussian kernel. A non-positive
// sigma falls back to OpenCV's size-derived rule so results line up with
// GaussianBlur(src, (k,k), 0).
func gaussianKernel(size int, sigma float64) []float64 {
	if sigma <= 0 {
		sigma = 0.3*(float64(size-1)*0.5-1) + 0.8
	}
	kernel := make([]float64, size)
	radius := (size - 1) / 2
	sum := 0.0
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// reflect mirrors an out-of-range coordinate back into [0, n) without
// repeating the edge sample (BORDER_REFLECT_101).
func reflect(i, n int) int {
	if i < 0 {
		i = -i
	}
	if i >= n {
		i = 2*n - 2 - i
	}
	return i
}

// gaussianBlur runs the separable kernel across rows then columns.
func gaussianBlur(img *frame.Map, size int, sigma float64) *frame.Map {
	kernel := gaussianKernel(size, sigma)
	radius := (size - 1) / 2
	w, h := img.Width, img.Height

	tmp := frame.NewMap(w, h)
	for y := 0; y < h; y++ {
		row := img.Pix[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			acc := 0.0
			for k := -radius; k <= radius; k++ {
				acc += kernel[k+radius] * row[reflect(x+k, w)]
			}
			tmp.Pix[y*w+x] = acc
		}
	}

	out := frame.NewMap(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			acc := 0.0
			for k := -radius; k <= radius; k++ {
				acc += kernel[k+radius] * tmp.Pix[reflect(y+k, h)*w+x]
			}
			out.Pix[y*w+x] = acc
		}
	}
	return out
}

// waveletBand holds the detail quadrants of one decomposition level along
// with the pre-padding dimensions needed to undo edge replication.
type waveletBand struct {
	lh, hl, hh   *frame.Map
	origW, origH int
}

// waveletDenoise decomposes the image level by level, soft-thresholds the
// detail coefficients, and reconstructs. Odd dimensions are edge-replicated
// to even before each level and cropped back on the way up.
func waveletDenoise(img *frame.Map, levels int, threshold float64) *frame.Map {
	approx := img.Clone()
	bands := make([]waveletBand, 0, levels)

	for level := 0; level < levels; level++ {
		padded := padToEven(approx)
		ll, lh, hl, hh := haarForward(padded)
		shrink(lh, threshold)
		shrink(hl, threshold)
		shrink(hh, threshold)
		bands = append(bands, waveletBand{lh: lh, hl: hl, hh: hh, origW: approx.Width, origH: approx.Height})
		approx = ll
	}

	for level := levels - 1; level >= 0; level-- {
		b := bands[level]
		rec := haarInverse(approx, b.lh, b.hl, b.hh)
		approx = crop(rec, b.origW, b.origH)
	}
	return approx
}

// shrink applies soft thresholding in place.
func shrink(m *frame.Map, threshold float64) {
	if threshold == 0 {
		return
	}
	for i, v := range m.Pix {
		mag := math.Abs(v) - threshold
		if mag <= 0 {
			m.Pix[i] = 0
		} else if v < 0 {
			m.Pix[i] = -mag
		} else {
			m.Pix[i] = mag
		}
	}
}

// padToEven replicates the last row/column as needed so both dimensions are
// even. Returns the input unchanged when already even.
func padToEven(m *frame.Map) *frame.Map {
	w, h := m.Width, m.Height
	pw, ph := w+(w&1), h+(h&1)
	if pw == w && ph == h {
		return m
	}
	out := frame.NewMap(pw, ph)
	for y := 0; y < ph; y++ {
		sy := y
		if sy >= h {
			sy = h - 1
		}
		for x := 0; x < pw; x++ {
			sx := x
			if sx >= w {
				sx = w - 1
			}
			out.Set(x, y, m.At(sx, sy))
		}
	}
	return out
}

func crop(m *frame.Map, w, h int) *frame.Map {
	if m.Width == w && m.Height == h {
		return m
	}
	out := frame.NewMap(w, h)
	for y := 0; y < h; y++ {
		copy(out.Pix[y*w:(y+1)*w], m.Pix[y*m.Width:y*m.Width+w])
	}
	return out
}

// haarForward performs one level of the 2D Haar transform. Input dimensions
// must be even. Uses the orthonormal pair (a+b)/sqrt2, (a-b)/sqrt2, the
// same normalization as the classic pyramid construction.
func haarForward(m *frame.Map) (ll, lh, hl, hh *frame.Map) {
	w, h := m.Width, m.Height
	hw, hh2 := w/2, h/2

	// Row pass: approx in the left half, detail in the right.
	rows := frame.NewMap(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < hw; x++ {
			a := m.At(2*x, y)
			b := m.At(2*x+1, y)
			rows.Set(x, y, (a+b)/math.Sqrt2)
			rows.Set(hw+x, y, (a-b)/math.Sqrt2)
		}
	}

	ll = frame.NewMap(hw, hh2)
	lh = frame.NewMap(hw, hh2)
	hl = frame.NewMap(hw, hh2)
	hh = frame.NewMap(hw, hh2)
	for y := 0; y < hh2; y++ {
		for x := 0; x < hw; x++ {
			aL := rows.At(x, 2*y)
			bL := rows.At(x, 2*y+1)
			aH := rows.At(hw+x, 2*y)
			bH := rows.At(hw+x, 2*y+1)
			ll.Set(x, y, (aL+bL)/math.Sqrt2)
			lh.Set(x, y, (aL-bL)/math.Sqrt2)
			hl.Set(x, y, (aH+bH)/math.Sqrt2)
			hh.Set(x, y, (aH-bH)/math.Sqrt2)
		}
	}
	return ll, lh, hl, hh
}

// haarInverse reconstructs one level from its four quadrants.
func haarInverse(ll, lh, hl, hh *frame.Map) *frame.Map {
	hw, hh2 := ll.Width, ll.Height
	w, h := hw*2, hh2*2

	rows := frame.NewMap(w, h)
	for y := 0; y < hh2; y++ {
		for x := 0; x < hw; x++ {
			rows.Set(x, 2*y, (ll.At(x, y)+lh.At(x, y))/math.Sqrt2)
			rows.Set(x, 2*y+1, (ll.At(x, y)-lh.At(x, y))/math.Sqrt2)
			rows.Set(hw+x, 2*y, (hl.At(x, y)+hh.At(x, y))/math.Sqrt2)
			rows.Set(hw+x, 2*y+1, (hl.At(x, y)-hh.At(x, y))/math.Sqrt2)
		}
	}

	out := frame.NewMap(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < hw; x++ {
			lo := rows.At(x, y)
			hi := rows.At(hw+x, y)
			out.Set(2*x, y, (lo+hi)/math.Sqrt2)
			out.Set(2*x+1, y, (lo-hi)/math.Sqrt2)
		}
	}
	return out
}
