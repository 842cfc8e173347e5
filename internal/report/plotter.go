// Package report renders residual maps and comparison results for human
// inspection. The numeric core only hands over read-only value objects;
// everything file-shaped lives here.
package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/aperture-data/sensor.report/internal/frame"
)

// mapGrid adapts a frame.Map to the plotter grid interface. Rows are
// flipped so the image renders top-down like the source frame.
type mapGrid struct {
	m *frame.Map
}

func (g mapGrid) Dims() (c, r int)   { return g.m.Width, g.m.Height }
func (g mapGrid) X(c int) float64    { return float64(c) }
func (g mapGrid) Y(r int) float64    { return float64(r) }
func (g mapGrid) Z(c, r int) float64 { return g.m.At(c, g.m.Height-1-r) }

// grayPalette is a linear grayscale palette, matching how residuals are
// conventionally inspected.
type grayPalette struct {
	n int
}

func (p grayPalette) Colors() []color.Color {
	colors := make([]color.Color, p.n)
	for i := range colors {
		v := uint8(255 * i / (p.n - 1))
		colors[i] = color.Gray{Y: v}
	}
	return colors
}

var _ palette.Palette = grayPalette{}

// RenderMapPNG writes a grayscale heatmap of the map to the given path.
func RenderMapPNG(m *frame.Map, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	hm := plotter.NewHeatMap(mapGrid{m: m}, grayPalette{n: 256})
	p.Add(hm)

	if err := p.Save(8*vg.Inch, 8*vg.Inch*vg.Length(m.Height)/vg.Length(m.Width), path); err != nil {
		return fmt.Errorf("save map plot: %w", err)
	}
	return nil
}

// RenderComparisonMaps writes side A and side B maps as PNG files in
// outputDir and returns the two paths. Mirrors the side-by-side residual
// figures of the reference workflow.
func RenderComparisonMaps(a, b *frame.Map, labelA, labelB, outputDir string) (pathA, pathB string, err error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create output dir: %w", err)
	}

	pathA = filepath.Join(outputDir, fmt.Sprintf("residual_%s.png", sanitize(labelA)))
	pathB = filepath.Join(outputDir, fmt.Sprintf("residual_%s.png", sanitize(labelB)))

	if err := RenderMapPNG(a, labelA+" residual", pathA); err != nil {
		return "", "", err
	}
	if err := RenderMapPNG(b, labelB+" residual", pathB); err != nil {
		return "", "", err
	}
	return pathA, pathB, nil
}

// sanitize keeps file names shell-friendly.
func sanitize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
