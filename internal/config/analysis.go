// Package config loads analysis configuration from JSON files. Fields are
// pointers so partial configs are safe: anything omitted falls back to the
// documented default through the Get* accessors. Decision thresholds are
// the exception — they have no defaults and must be given explicitly,
// either here or on the command line.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// AnalysisConfig is the root configuration for PRNU analysis.
type AnalysisConfig struct {
	// Denoiser params
	Filter           *string  `json:"filter,omitempty"` // "gaussian" or "wavelet"
	KernelSize       *int     `json:"kernel_size,omitempty"`
	Sigma            *float64 `json:"sigma,omitempty"`
	WaveletLevels    *int     `json:"wavelet_levels,omitempty"`
	WaveletThreshold *float64 `json:"wavelet_threshold,omitempty"`

	// Decision thresholds. No defaults: cutoffs depend on frame count,
	// denoiser, and sensor model, so leaving them unset is an error at the
	// point of use, not a silently applied constant.
	MatchMin   *float64 `json:"match_min,omitempty"`
	NoMatchMax *float64 `json:"no_match_max,omitempty"`

	// Comparison params
	CropOnMismatch     *bool `json:"crop_on_mismatch,omitempty"`
	MinReferenceFrames *int  `json:"min_reference_frames,omitempty"`
	Workers            *int  `json:"workers,omitempty"`
}

// LoadAnalysisConfig loads an AnalysisConfig from a JSON file. Fields
// omitted from the file retain their defaults, so partial configs are safe.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &AnalysisConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks field-level constraints. Cross-field checks (threshold
// ordering, kernel vs image size) happen in the pipeline, which knows the
// image geometry.
func (c *AnalysisConfig) Validate() error {
	if c.Filter != nil {
		if *c.Filter != "gaussian" && *c.Filter != "wavelet" {
			return fmt.Errorf("filter must be \"gaussian\" or \"wavelet\", got %q", *c.Filter)
		}
	}
	if c.KernelSize != nil && (*c.KernelSize <= 0 || *c.KernelSize%2 == 0) {
		return fmt.Errorf("kernel_size must be a positive odd number, got %d", *c.KernelSize)
	}
	if c.WaveletLevels != nil && *c.WaveletLevels <= 0 {
		return fmt.Errorf("wavelet_levels must be positive, got %d", *c.WaveletLevels)
	}
	if c.WaveletThreshold != nil && *c.WaveletThreshold < 0 {
		return fmt.Errorf("wavelet_threshold must be non-negative, got %f", *c.WaveletThreshold)
	}
	if c.MatchMin != nil && c.NoMatchMax != nil && *c.MatchMin < *c.NoMatchMax {
		return fmt.Errorf("match_min (%f) must not be below no_match_max (%f)", *c.MatchMin, *c.NoMatchMax)
	}
	if c.MinReferenceFrames != nil && *c.MinReferenceFrames < 0 {
		return fmt.Errorf("min_reference_frames must be non-negative, got %d", *c.MinReferenceFrames)
	}
	return nil
}

// GetFilter returns the filter family or the default.
func (c *AnalysisConfig) GetFilter() string {
	if c.Filter == nil {
		return "gaussian"
	}
	return *c.Filter
}

// GetKernelSize returns the Gaussian kernel size or the default. The 5x5
// default matches the reference workflow this tool reproduces.
func (c *AnalysisConfig) GetKernelSize() int {
	if c.KernelSize == nil {
		return 5
	}
	return *c.KernelSize
}

// GetSigma returns the Gaussian sigma. Zero derives sigma from kernel size.
func (c *AnalysisConfig) GetSigma() float64 {
	if c.Sigma == nil {
		return 0
	}
	return *c.Sigma
}

// GetWaveletLevels returns the decomposition depth or the default.
func (c *AnalysisConfig) GetWaveletLevels() int {
	if c.WaveletLevels == nil {
		return 4
	}
	return *c.WaveletLevels
}

// GetWaveletThreshold returns the shrinkage threshold or the default.
func (c *AnalysisConfig) GetWaveletThreshold() float64 {
	if c.WaveletThreshold == nil {
		return 0.02
	}
	return *c.WaveletThreshold
}

// GetCropOnMismatch returns the crop opt-in; off unless explicitly enabled.
func (c *AnalysisConfig) GetCropOnMismatch() bool {
	if c.CropOnMismatch == nil {
		return false
	}
	return *c.CropOnMismatch
}

// GetMinReferenceFrames returns the reference-set minimum or the default.
func (c *AnalysisConfig) GetMinReferenceFrames() int {
	if c.MinReferenceFrames == nil {
		return 1
	}
	return *c.MinReferenceFrames
}

// GetWorkers returns the worker bound; zero lets the pipeline pick.
func (c *AnalysisConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}

// Thresholds returns the configured threshold pair. ok is false unless both
// bounds are present.
func (c *AnalysisConfig) Thresholds() (noMatchMax, matchMin float64, ok bool) {
	if c.MatchMin == nil || c.NoMatchMax == nil {
		return 0, 0, false
	}
	return *c.NoMatchMax, *c.MatchMin, true
}
