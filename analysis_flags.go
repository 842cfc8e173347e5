package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/aperture-data/sensor.report/internal/config"
	"github.com/aperture-data/sensor.report/internal/decode"
	"github.com/aperture-data/sensor.report/internal/frame"
	"github.com/aperture-data/sensor.report/internal/prnu"
)

// analysisFlags are the pipeline flags shared by the fingerprint and
// compare commands. Flag defaults are sentinels meaning "not set on the
// command line"; explicit flags override the config file, which overrides
// the built-in defaults.
type analysisFlags struct {
	configPath string
	filter     string
	kernelSize int
	sigma      float64
	levels     int
	threshold  float64
	minRef     int
	workers    int
}

func (af *analysisFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&af.configPath, "config", "", "Path to an analysis config JSON file")
	fs.StringVar(&af.filter, "filter", "", "Denoise filter family: gaussian or wavelet")
	fs.IntVar(&af.kernelSize, "kernel", 0, "Gaussian kernel size (odd)")
	fs.Float64Var(&af.sigma, "sigma", -1, "Gaussian sigma (0 derives it from the kernel size)")
	fs.IntVar(&af.levels, "levels", 0, "Wavelet decomposition levels")
	fs.Float64Var(&af.threshold, "threshold", -1, "Wavelet shrinkage threshold")
	fs.IntVar(&af.minRef, "min-ref", -1, "Minimum number of reference frames per side")
	fs.IntVar(&af.workers, "workers", 0, "Worker goroutines for per-frame extraction (0: all CPUs)")
}

// resolve layers command-line flags over the optional config file.
func (af *analysisFlags) resolve() (prnu.DenoiseConfig, int, int, *config.AnalysisConfig, error) {
	cfg := &config.AnalysisConfig{}
	if af.configPath != "" {
		loaded, err := config.LoadAnalysisConfig(af.configPath)
		if err != nil {
			return prnu.DenoiseConfig{}, 0, 0, nil, err
		}
		cfg = loaded
	}

	filter := cfg.GetFilter()
	if af.filter != "" {
		filter = af.filter
	}
	dn := prnu.DenoiseConfig{Filter: prnu.FilterFamily(filter)}

	dn.KernelSize = cfg.GetKernelSize()
	if af.kernelSize > 0 {
		dn.KernelSize = af.kernelSize
	}
	dn.Sigma = cfg.GetSigma()
	if af.sigma >= 0 {
		dn.Sigma = af.sigma
	}
	dn.Levels = cfg.GetWaveletLevels()
	if af.levels > 0 {
		dn.Levels = af.levels
	}
	dn.Threshold = cfg.GetWaveletThreshold()
	if af.threshold >= 0 {
		dn.Threshold = af.threshold
	}

	minRef := cfg.GetMinReferenceFrames()
	if af.minRef >= 0 {
		minRef = af.minRef
	}
	workers := cfg.GetWorkers()
	if af.workers > 0 {
		workers = af.workers
	}

	return dn, minRef, workers, cfg, nil
}

// loadFrames decodes a list of image files into raw frames.
func loadFrames(paths []string) ([]*frame.RawFrame, error) {
	frames := make([]*frame.RawFrame, 0, len(paths))
	for _, path := range paths {
		f, err := decode.DecodeFile(path)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}

// splitFileList parses a comma-separated file list flag.
func splitFileList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// resolveThresholds picks thresholds from flags, then the config file. Both
// bounds are required: there is no default decision policy.
func resolveThresholds(matchMin, noMatchMax float64, cfg *config.AnalysisConfig) (prnu.DecisionThresholds, error) {
	if matchMin > 1 || noMatchMax > 1 {
		if nm, mm, ok := cfg.Thresholds(); ok {
			return prnu.NewDecisionThresholds(nm, mm)
		}
		return prnu.DecisionThresholds{}, fmt.Errorf("decision thresholds are required: pass -match-min and -nomatch-max (or set them in the config file); cutoffs depend on frame count, denoiser, and sensor model")
	}
	return prnu.NewDecisionThresholds(noMatchMax, matchMin)
}
