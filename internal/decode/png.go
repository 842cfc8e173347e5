package decode

import (
	"fmt"
	"image"
	"image/png"
	"io"
)

// PNGDecoder reads PNG frames. Gray and Gray16 images decode as a single
// channel at their native depth; color images decode as three 8-bit (or
// 16-bit for NRGBA64/RGBA64) channels with alpha dropped.
type PNGDecoder struct{}

func (PNGDecoder) Decode(r io.Reader) ([]uint16, int, int, int, int, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, 0, 0, 0, 0, fmt.Errorf("decode png: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	switch im := img.(type) {
	case *image.Gray:
		pixels := make([]uint16, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				pixels[y*w+x] = uint16(im.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			}
		}
		return pixels, w, h, 8, 1, nil
	case *image.Gray16:
		pixels := make([]uint16, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				pixels[y*w+x] = im.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y
			}
		}
		return pixels, w, h, 16, 1, nil
	case *image.NRGBA64, *image.RGBA64:
		pixels := make([]uint16, w*h*3)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r16, g16, b16, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				base := (y*w + x) * 3
				pixels[base] = uint16(r16)
				pixels[base+1] = uint16(g16)
				pixels[base+2] = uint16(b16)
			}
		}
		return pixels, w, h, 16, 3, nil
	default:
		// 8-bit color (RGBA, NRGBA, paletted). RGBA() returns
		// 16-bit-scaled values; shift back down to the native depth.
		pixels := make([]uint16, w*h*3)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r16, g16, b16, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				base := (y*w + x) * 3
				pixels[base] = uint16(r16 >> 8)
				pixels[base+1] = uint16(g16 >> 8)
				pixels[base+2] = uint16(b16 >> 8)
			}
		}
		return pixels, w, h, 8, 3, nil
	}
}
