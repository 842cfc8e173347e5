package decode

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return bytes.NewReader(buf.Bytes())
}

func TestPNGDecodeGray16(t *testing.T) {
	t.Parallel()

	img := image.NewGray16(image.Rect(0, 0, 2, 2))
	img.SetGray16(0, 0, color.Gray16{Y: 0})
	img.SetGray16(1, 0, color.Gray16{Y: 4096})
	img.SetGray16(0, 1, color.Gray16{Y: 30000})
	img.SetGray16(1, 1, color.Gray16{Y: 65535})

	pixels, w, h, depth, channels, err := PNGDecoder{}.Decode(encodePNG(t, img))
	require.NoError(t, err)
	assert.Equal(t, 2, w)
	assert.Equal(t, 2, h)
	assert.Equal(t, 16, depth)
	assert.Equal(t, 1, channels)
	assert.Equal(t, []uint16{0, 4096, 30000, 65535}, pixels)
}

func TestPNGDecodeGray8(t *testing.T) {
	t.Parallel()

	img := image.NewGray(image.Rect(0, 0, 3, 1))
	img.SetGray(0, 0, color.Gray{Y: 7})
	img.SetGray(1, 0, color.Gray{Y: 128})
	img.SetGray(2, 0, color.Gray{Y: 255})

	pixels, w, h, depth, channels, err := PNGDecoder{}.Decode(encodePNG(t, img))
	require.NoError(t, err)
	assert.Equal(t, 3, w)
	assert.Equal(t, 1, h)
	assert.Equal(t, 8, depth)
	assert.Equal(t, 1, channels)
	assert.Equal(t, []uint16{7, 128, 255}, pixels)
}

func TestPNGDecodeColor(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	pixels, w, h, depth, channels, err := PNGDecoder{}.Decode(encodePNG(t, img))
	require.NoError(t, err)
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
	assert.Equal(t, 8, depth)
	assert.Equal(t, 3, channels)
	assert.Equal(t, []uint16{10, 20, 30}, pixels)
}

func TestPNGDecodeRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, _, _, _, _, err := PNGDecoder{}.Decode(bytes.NewReader([]byte("not a png")))
	assert.Error(t, err)
}

func TestDecodeFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	t.Run("pgm round trip", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(dir, "flat_0001.pgm")
		data := append([]byte("P5\n2 2\n4095\n"), 0x0F, 0xFF, 0x00, 0x00, 0x08, 0x00, 0x0C, 0x00)
		require.NoError(t, os.WriteFile(path, data, 0o644))

		f, err := DecodeFile(path)
		require.NoError(t, err)
		assert.Equal(t, path, f.ID)
		assert.Equal(t, 2, f.Width)
		assert.Equal(t, 2, f.Height)
		assert.Equal(t, 12, f.BitDepth)
		assert.Equal(t, 1, f.Channels)
		assert.Equal(t, []uint16{4095, 0, 2048, 3072}, f.Pixels)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := DecodeFile(filepath.Join(dir, "nope.pgm"))
		assert.Error(t, err)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		t.Parallel()
		_, err := DecodeFile(filepath.Join(dir, "frame.raw"))
		assert.Error(t, err)
	})
}
