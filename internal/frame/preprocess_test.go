package frame

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocessNormalizesByBitDepth(t *testing.T) {
	t.Parallel()

	t.Run("full scale maps to one", func(t *testing.T) {
		t.Parallel()
		for _, depth := range []int{8, 12, 14, 16} {
			maxVal := uint16((uint32(1) << uint(depth)) - 1)
			f := &RawFrame{
				ID:       "full",
				Pixels:   []uint16{0, maxVal, maxVal / 2, maxVal},
				Width:    2,
				Height:   2,
				BitDepth: depth,
				Channels: 1,
			}
			gray, err := Preprocess(f)
			require.NoError(t, err)
			assert.Equal(t, 0.0, gray.Pix[0])
			assert.Equal(t, 1.0, gray.Pix[1])
			assert.InDelta(t, 0.5, gray.Pix[2], 0.01)
		}
	})

	t.Run("values stay in unit range", func(t *testing.T) {
		t.Parallel()
		f := &RawFrame{
			Pixels:   []uint16{0, 100, 4095, 2048},
			Width:    2,
			Height:   2,
			BitDepth: 12,
			Channels: 1,
		}
		gray, err := Preprocess(f)
		require.NoError(t, err)
		for _, v := range gray.Pix {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	})
}

func TestPreprocessLuminance(t *testing.T) {
	t.Parallel()

	t.Run("gray pixel equals its value", func(t *testing.T) {
		t.Parallel()
		// r = g = b means luminance equals the common value.
		f := &RawFrame{
			Pixels:   []uint16{200, 200, 200},
			Width:    1,
			Height:   1,
			BitDepth: 8,
			Channels: 3,
		}
		gray, err := Preprocess(f)
		require.NoError(t, err)
		assert.InDelta(t, 200.0/255.0, gray.Pix[0], 1e-9)
	})

	t.Run("weights follow Rec.601", func(t *testing.T) {
		t.Parallel()
		f := &RawFrame{
			Pixels:   []uint16{255, 0, 0},
			Width:    1,
			Height:   1,
			BitDepth: 8,
			Channels: 3,
		}
		gray, err := Preprocess(f)
		require.NoError(t, err)
		assert.InDelta(t, 0.299, gray.Pix[0], 1e-9)
	})

	t.Run("alpha channel ignored", func(t *testing.T) {
		t.Parallel()
		f := &RawFrame{
			Pixels:   []uint16{100, 100, 100, 7},
			Width:    1,
			Height:   1,
			BitDepth: 8,
			Channels: 4,
		}
		gray, err := Preprocess(f)
		require.NoError(t, err)
		assert.InDelta(t, 100.0/255.0, gray.Pix[0], 1e-9)
	})
}

func TestPreprocessRejectsBadFrames(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		frame *RawFrame
	}{
		{"nil frame", nil},
		{"zero bit depth", &RawFrame{Pixels: []uint16{0}, Width: 1, Height: 1, BitDepth: 0, Channels: 1}},
		{"bit depth too large", &RawFrame{Pixels: []uint16{0}, Width: 1, Height: 1, BitDepth: 17, Channels: 1}},
		{"zero width", &RawFrame{Pixels: []uint16{}, Width: 0, Height: 1, BitDepth: 8, Channels: 1}},
		{"two channels", &RawFrame{Pixels: []uint16{0, 0}, Width: 1, Height: 1, BitDepth: 8, Channels: 2}},
		{"short pixel buffer", &RawFrame{Pixels: []uint16{0, 0}, Width: 2, Height: 2, BitDepth: 8, Channels: 1}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Preprocess(tc.frame)
			require.Error(t, err)
			var invalid *InvalidFrameError
			assert.True(t, errors.As(err, &invalid), "want InvalidFrameError, got %T", err)
		})
	}
}

func TestMapAccessors(t *testing.T) {
	t.Parallel()

	m := NewMap(3, 2)
	m.Set(2, 1, 0.25)
	assert.Equal(t, 0.25, m.At(2, 1))
	assert.Equal(t, Shape{Width: 3, Height: 2}, m.Shape())
	assert.Equal(t, 6, m.Shape().N())
	assert.Equal(t, "3x2", m.Shape().String())

	clone := m.Clone()
	clone.Set(0, 0, 9)
	assert.Equal(t, 0.0, m.At(0, 0), "clone must not alias the original")
}
