package prnu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aperture-data/sensor.report/internal/frame"
	"github.com/aperture-data/sensor.report/internal/testutil"
)

func TestExtractResidual(t *testing.T) {
	t.Parallel()

	rng := testutil.NewRand(60)
	gray := testutil.GaussianMap(rng, 16, 16, 1.0)
	denoised, err := Denoise(gray, DenoiseConfig{Filter: FilterGaussian, KernelSize: 5})
	require.NoError(t, err)

	res, err := ExtractResidual(gray, denoised)
	require.NoError(t, err)
	require.Equal(t, gray.Shape(), res.Shape())
	for i := range res.Pix {
		assert.Equal(t, gray.Pix[i]-denoised.Pix[i], res.Pix[i])
	}
}

func TestExtractResidualNoClipping(t *testing.T) {
	t.Parallel()

	// A residual can be negative; it must never be clamped to zero.
	gray := frame.NewMap(2, 1)
	denoised := frame.NewMap(2, 1)
	gray.Pix[0], denoised.Pix[0] = 0.2, 0.5
	gray.Pix[1], denoised.Pix[1] = 0.5, 0.2

	res, err := ExtractResidual(gray, denoised)
	require.NoError(t, err)
	assert.InDelta(t, -0.3, res.Pix[0], 1e-12)
	assert.InDelta(t, 0.3, res.Pix[1], 1e-12)
}

func TestExtractResidualShapeGuard(t *testing.T) {
	t.Parallel()

	_, err := ExtractResidual(frame.NewMap(8, 8), frame.NewMap(8, 6))
	var shapeErr *InternalShapeError
	assert.True(t, errors.As(err, &shapeErr))
}
