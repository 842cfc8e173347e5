package prnu

import "github.com/aperture-data/sensor.report/internal/frame"

// ExtractResidual computes the noise residual: grayscale minus denoised,
// pixelwise, no clipping. Both inputs stay untouched. Pipeline ordering
// should make the shape check unreachable.
func ExtractResidual(gray, denoised *frame.Map) (*frame.Map, error) {
	if gray.Shape() != denoised.Shape() {
		return nil, &InternalShapeError{
			Context: "residual extraction",
			Want:    gray.Shape(),
			Got:     denoised.Shape(),
		}
	}
	out := frame.NewMap(gray.Width, gray.Height)
	for i := range gray.Pix {
		out.Pix[i] = gray.Pix[i] - denoised.Pix[i]
	}
	return out, nil
}
