package frame

import "fmt"

// Rec.601 luminance weights, the same weighting OpenCV applies for
// RGB-to-gray conversion. Applied to the first three channels of a
// multi-channel frame; a fourth channel (alpha) is ignored.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Preprocess converts a decoded frame into a normalized grayscale map.
// Samples are scaled to [0,1] by the declared bit depth and multi-channel
// frames are reduced to luminance. The input frame is not modified.
func Preprocess(f *RawFrame) (*Map, error) {
	if err := validate(f); err != nil {
		return nil, err
	}

	scale := 1.0 / float64((uint32(1)<<uint(f.BitDepth))-1)
	out := NewMap(f.Width, f.Height)

	switch f.Channels {
	case 1:
		for i, s := range f.Pixels {
			out.Pix[i] = float64(s) * scale
		}
	default:
		c := f.Channels
		for i := 0; i < len(out.Pix); i++ {
			base := i * c
			r := float64(f.Pixels[base])
			g := float64(f.Pixels[base+1])
			b := float64(f.Pixels[base+2])
			out.Pix[i] = (lumaR*r + lumaG*g + lumaB*b) * scale
		}
	}

	return out, nil
}

func validate(f *RawFrame) error {
	if f == nil {
		return &InvalidFrameError{Reason: "nil frame"}
	}
	if f.BitDepth <= 0 || f.BitDepth > MaxBitDepth {
		return &InvalidFrameError{
			FrameID: f.ID,
			Reason:  fmt.Sprintf("bit depth %d outside supported range 1..%d", f.BitDepth, MaxBitDepth),
		}
	}
	if f.Width <= 0 || f.Height <= 0 {
		return &InvalidFrameError{
			FrameID: f.ID,
			Reason:  fmt.Sprintf("non-positive dimensions %dx%d", f.Width, f.Height),
		}
	}
	switch f.Channels {
	case 1, 3, 4:
	default:
		return &InvalidFrameError{
			FrameID: f.ID,
			Reason:  fmt.Sprintf("unsupported channel count %d", f.Channels),
		}
	}
	if want := f.Width * f.Height * f.Channels; len(f.Pixels) != want {
		return &InvalidFrameError{
			FrameID: f.ID,
			Reason:  fmt.Sprintf("pixel buffer has %d samples, geometry requires %d", len(f.Pixels), want),
		}
	}
	return nil
}
