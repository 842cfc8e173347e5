package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAnalysisConfig(t *testing.T) {
	t.Parallel()

	t.Run("full config", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "analysis.json", `{
			"filter": "wavelet",
			"wavelet_levels": 3,
			"wavelet_threshold": 0.05,
			"match_min": 0.3,
			"no_match_max": 0.05,
			"crop_on_mismatch": true,
			"min_reference_frames": 10,
			"workers": 4
		}`)
		cfg, err := LoadAnalysisConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "wavelet", cfg.GetFilter())
		assert.Equal(t, 3, cfg.GetWaveletLevels())
		assert.Equal(t, 0.05, cfg.GetWaveletThreshold())
		assert.True(t, cfg.GetCropOnMismatch())
		assert.Equal(t, 10, cfg.GetMinReferenceFrames())
		assert.Equal(t, 4, cfg.GetWorkers())

		noMatchMax, matchMin, ok := cfg.Thresholds()
		require.True(t, ok)
		assert.Equal(t, 0.05, noMatchMax)
		assert.Equal(t, 0.3, matchMin)
	})

	t.Run("empty config falls back to defaults", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "empty.json", `{}`)
		cfg, err := LoadAnalysisConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "gaussian", cfg.GetFilter())
		assert.Equal(t, 5, cfg.GetKernelSize())
		assert.Equal(t, 0.0, cfg.GetSigma())
		assert.Equal(t, 4, cfg.GetWaveletLevels())
		assert.False(t, cfg.GetCropOnMismatch())
		assert.Equal(t, 1, cfg.GetMinReferenceFrames())
		assert.Equal(t, 0, cfg.GetWorkers())

		// No threshold defaults, ever.
		_, _, ok := cfg.Thresholds()
		assert.False(t, ok)
	})

	t.Run("one threshold is not enough", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "half.json", `{"match_min": 0.3}`)
		cfg, err := LoadAnalysisConfig(path)
		require.NoError(t, err)
		_, _, ok := cfg.Thresholds()
		assert.False(t, ok)
	})

	t.Run("rejects non-json extension", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "analysis.yaml", `{}`)
		_, err := LoadAnalysisConfig(path)
		assert.Error(t, err)
	})

	t.Run("rejects missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadAnalysisConfig(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "bad.json", `{"filter": `)
		_, err := LoadAnalysisConfig(path)
		assert.Error(t, err)
	})
}

func TestAnalysisConfigValidate(t *testing.T) {
	t.Parallel()

	str := func(s string) *string { return &s }
	num := func(n int) *int { return &n }
	fl := func(f float64) *float64 { return &f }

	cases := []struct {
		name string
		cfg  AnalysisConfig
		ok   bool
	}{
		{"empty", AnalysisConfig{}, true},
		{"gaussian", AnalysisConfig{Filter: str("gaussian"), KernelSize: num(7)}, true},
		{"unknown filter", AnalysisConfig{Filter: str("median")}, false},
		{"even kernel", AnalysisConfig{KernelSize: num(4)}, false},
		{"negative kernel", AnalysisConfig{KernelSize: num(-3)}, false},
		{"zero levels", AnalysisConfig{WaveletLevels: num(0)}, false},
		{"negative threshold", AnalysisConfig{WaveletThreshold: fl(-0.1)}, false},
		{"crossed decision bounds", AnalysisConfig{MatchMin: fl(0.05), NoMatchMax: fl(0.3)}, false},
		{"equal decision bounds", AnalysisConfig{MatchMin: fl(0.1), NoMatchMax: fl(0.1)}, true},
		{"negative min frames", AnalysisConfig{MinReferenceFrames: num(-1)}, false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
