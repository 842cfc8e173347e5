// Package decode supplies RawFrame inputs from already-demosaiced image
// containers. The PRNU core performs no container parsing itself; anything
// that can produce a frame.RawFrame satisfies its input contract, and this
// package provides the two formats the CLI accepts: binary PGM (P5) and
// PNG, both up to 16 bits per sample.
package decode

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aperture-data/sensor.report/internal/frame"
)

// Decoder turns a container stream into a decoded pixel grid.
type Decoder interface {
	Decode(r io.Reader) (pixels []uint16, width, height, bitDepth, channels int, err error)
}

// ForPath selects a decoder by file extension.
func ForPath(path string) (Decoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pgm":
		return PGMDecoder{}, nil
	case ".png":
		return PNGDecoder{}, nil
	default:
		return nil, fmt.Errorf("no decoder for %q (supported: .pgm, .png)", path)
	}
}

// DecodeFile reads a frame from disk, using the file path as the frame ID.
func DecodeFile(path string) (*frame.RawFrame, error) {
	dec, err := ForPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame file: %w", err)
	}
	defer f.Close()

	pixels, w, h, depth, channels, err := dec.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &frame.RawFrame{
		ID:       path,
		Pixels:   pixels,
		Width:    w,
		Height:   h,
		BitDepth: depth,
		Channels: channels,
	}, nil
}
