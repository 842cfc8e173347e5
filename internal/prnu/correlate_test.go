package prnu

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aperture-data/sensor.report/internal/frame"
	"github.com/aperture-data/sensor.report/internal/testutil"
)

func TestNormalizedCrossCorrelationSelf(t *testing.T) {
	t.Parallel()

	rng := testutil.NewRand(1)
	m := testutil.GaussianMap(rng, 64, 64, 1.0)

	score, err := NormalizedCrossCorrelation(m, m)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-6)
}

func TestNormalizedCrossCorrelationSymmetry(t *testing.T) {
	t.Parallel()

	rng := testutil.NewRand(2)
	a := testutil.GaussianMap(rng, 48, 32, 1.0)
	b := testutil.GaussianMap(rng, 48, 32, 1.0)

	ab, err := NormalizedCrossCorrelation(a, b)
	require.NoError(t, err)
	ba, err := NormalizedCrossCorrelation(b, a)
	require.NoError(t, err)
	assert.InDelta(t, ab, ba, 1e-12)
}

func TestNormalizedCrossCorrelationAffineInvariance(t *testing.T) {
	t.Parallel()

	rng := testutil.NewRand(3)
	a := testutil.GaussianMap(rng, 64, 64, 1.0)
	b := testutil.GaussianMap(rng, 64, 64, 1.0)

	base, err := NormalizedCrossCorrelation(a, b)
	require.NoError(t, err)

	// Positive scale and offset on one input must not change the score.
	scaled := frame.NewMap(b.Width, b.Height)
	for i, v := range b.Pix {
		scaled.Pix[i] = 2.5*v + 0.7
	}
	got, err := NormalizedCrossCorrelation(a, scaled)
	require.NoError(t, err)
	assert.InDelta(t, base, got, 1e-9)
}

func TestNormalizedCrossCorrelationRange(t *testing.T) {
	t.Parallel()

	t.Run("negated input scores minus one", func(t *testing.T) {
		t.Parallel()
		rng := testutil.NewRand(4)
		a := testutil.GaussianMap(rng, 32, 32, 1.0)
		neg := frame.NewMap(a.Width, a.Height)
		for i, v := range a.Pix {
			neg.Pix[i] = -v
		}
		score, err := NormalizedCrossCorrelation(a, neg)
		require.NoError(t, err)
		assert.InDelta(t, -1.0, score, 1e-6)
	})

	t.Run("independent maps score near zero", func(t *testing.T) {
		t.Parallel()
		rng := testutil.NewRand(5)
		for trial := 0; trial < 20; trial++ {
			a := testutil.GaussianMap(rng, 64, 64, 1.0)
			b := testutil.GaussianMap(rng, 64, 64, 1.0)
			score, err := NormalizedCrossCorrelation(a, b)
			require.NoError(t, err)
			// 64x64 = 4096 samples; 5/sqrt(n) is a generous bound for
			// independent noise.
			assert.Less(t, math.Abs(score), 5.0/math.Sqrt(4096))
		}
	})
}

func TestNormalizedCrossCorrelationErrors(t *testing.T) {
	t.Parallel()

	t.Run("shape mismatch", func(t *testing.T) {
		t.Parallel()
		a := frame.NewMap(8, 8)
		b := frame.NewMap(8, 6)
		_, err := NormalizedCrossCorrelation(a, b)
		var mismatch *DimensionMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.Equal(t, frame.Shape{Width: 8, Height: 8}, mismatch.Want)
		assert.Equal(t, frame.Shape{Width: 8, Height: 6}, mismatch.Got)
	})

	t.Run("flat input", func(t *testing.T) {
		t.Parallel()
		rng := testutil.NewRand(6)
		flat := frame.NewMap(16, 16)
		for i := range flat.Pix {
			flat.Pix[i] = 0.5
		}
		noisy := testutil.GaussianMap(rng, 16, 16, 1.0)

		var degenerate *DegenerateSignalError
		_, err := NormalizedCrossCorrelation(flat, noisy)
		assert.True(t, errors.As(err, &degenerate))
		_, err = NormalizedCrossCorrelation(noisy, flat)
		assert.True(t, errors.As(err, &degenerate))
	})
}

func TestCenterCrop(t *testing.T) {
	t.Parallel()

	m := frame.NewMap(6, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			m.Set(x, y, float64(y*10+x))
		}
	}

	got := CenterCrop(m, frame.Shape{Width: 4, Height: 2})
	require.Equal(t, frame.Shape{Width: 4, Height: 2}, got.Shape())
	assert.Equal(t, 11.0, got.At(0, 0))
	assert.Equal(t, 14.0, got.At(3, 0))
	assert.Equal(t, 24.0, got.At(3, 1))

	same := CenterCrop(m, m.Shape())
	assert.Same(t, m, same)
}
