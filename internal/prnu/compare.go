package prnu

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aperture-data/sensor.report/internal/frame"
)

// Side is one input to a comparison: either a set of frames to aggregate or
// a prebuilt fingerprint, never both. Label is carried into results and
// error messages.
type Side struct {
	Label       string
	Frames      []*frame.RawFrame
	Fingerprint *Fingerprint
}

// CompareConfig bundles everything a comparison needs. Thresholds must come
// from NewDecisionThresholds; there is no implicit default policy.
type CompareConfig struct {
	Denoise    DenoiseConfig
	Thresholds DecisionThresholds

	// CropOnMismatch opts in to center-cropping both fingerprints to their
	// common region when shapes differ. Without it a shape mismatch is an
	// error, never a silent adjustment.
	CropOnMismatch bool

	// MinReferenceFrames is the smallest acceptable frame set for a side
	// built from frames. Zero means any non-empty set.
	MinReferenceFrames int

	// Workers bounds the per-frame parallelism. Zero or negative uses
	// GOMAXPROCS. The result does not depend on the worker count.
	Workers int
}

// CorrelationResult is the immutable outcome of one comparison.
type CorrelationResult struct {
	ComparisonID string      `json:"comparison_id"`
	Score        float64     `json:"score"`
	Verdict      Verdict     `json:"verdict"`
	ShapeA       frame.Shape `json:"shape_a"`
	ShapeB       frame.Shape `json:"shape_b"`
	FramesA      int         `json:"frames_a"`
	FramesB      int         `json:"frames_b"`
	Cropped      bool        `json:"cropped"`
	ComputedAt   time.Time   `json:"computed_at"`
}

// ExtractFrameResidual runs one frame through preprocessing, denoising, and
// residual extraction.
func ExtractFrameResidual(f *frame.RawFrame, cfg DenoiseConfig) (*frame.Map, error) {
	gray, err := frame.Preprocess(f)
	if err != nil {
		return nil, err
	}
	denoised, err := Denoise(gray, cfg)
	if err != nil {
		return nil, err
	}
	return ExtractResidual(gray, denoised)
}

// Compare scores two sides against each other and applies the decision
// policy. Per-frame work runs on a bounded worker pool; aggregation and
// correlation use fixed reduction orders, so the score is independent of
// the degree of parallelism. Cancelling the context abandons the
// comparison at frame granularity: no partial result is returned.
func Compare(ctx context.Context, a, b Side, cfg CompareConfig) (*CorrelationResult, error) {
	if err := cfg.Thresholds.validate(); err != nil {
		return nil, err
	}

	fpA, err := fingerprintForSide(ctx, a, cfg)
	if err != nil {
		return nil, fmt.Errorf("side %s: %w", sideLabel(a, "A"), err)
	}
	fpB, err := fingerprintForSide(ctx, b, cfg)
	if err != nil {
		return nil, fmt.Errorf("side %s: %w", sideLabel(b, "B"), err)
	}

	shapeA, shapeB := fpA.Shape(), fpB.Shape()
	mapA, mapB := fpA.Map, fpB.Map
	cropped := false
	if shapeA != shapeB {
		if !cfg.CropOnMismatch {
			return nil, &DimensionMismatchError{Context: "comparison", Want: shapeA, Got: shapeB}
		}
		common := commonShape(shapeA, shapeB)
		mapA = CenterCrop(mapA, common)
		mapB = CenterCrop(mapB, common)
		cropped = true
	}

	score, err := NormalizedCrossCorrelation(mapA, mapB)
	if err != nil {
		return nil, err
	}

	return &CorrelationResult{
		ComparisonID: uuid.New().String(),
		Score:        score,
		Verdict:      cfg.Thresholds.Decide(score),
		ShapeA:       shapeA,
		ShapeB:       shapeB,
		FramesA:      fpA.FrameCount,
		FramesB:      fpB.FrameCount,
		Cropped:      cropped,
		ComputedAt:   time.Now().UTC(),
	}, nil
}

func sideLabel(s Side, fallback string) string {
	if s.Label != "" {
		return s.Label
	}
	return fallback
}

// BuildFingerprint extracts residuals from the given frames in parallel
// and aggregates them into a fingerprint. Only the denoiser, worker, and
// reference-minimum fields of cfg are consulted.
func BuildFingerprint(ctx context.Context, frames []*frame.RawFrame, cfg CompareConfig) (*Fingerprint, error) {
	return fingerprintForSide(ctx, Side{Frames: frames}, cfg)
}

// fingerprintForSide resolves a Side to a fingerprint, extracting and
// aggregating residuals when the side was given as frames.
func fingerprintForSide(ctx context.Context, s Side, cfg CompareConfig) (*Fingerprint, error) {
	if s.Fingerprint != nil {
		if len(s.Frames) > 0 {
			return nil, &InvalidConfigurationError{Reason: "side has both frames and a fingerprint"}
		}
		return s.Fingerprint, nil
	}
	if len(s.Frames) == 0 {
		return nil, &InsufficientReferenceFramesError{Got: 0, Need: max(1, cfg.MinReferenceFrames)}
	}
	if len(s.Frames) < cfg.MinReferenceFrames {
		return nil, &InsufficientReferenceFramesError{Got: len(s.Frames), Need: cfg.MinReferenceFrames}
	}

	residuals, err := extractResiduals(ctx, s.Frames, cfg)
	if err != nil {
		return nil, err
	}
	return AggregateFingerprint(residuals)
}

// extractResiduals fans frames out to workers and collects residuals back
// into frame order. Each frame is independent; nothing mutable is shared.
func extractResiduals(ctx context.Context, frames []*frame.RawFrame, cfg CompareConfig) ([]*frame.Map, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(frames) {
		workers = len(frames)
	}

	residuals := make([]*frame.Map, len(frames))
	errs := make([]error, len(frames))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					errs[idx] = err
					continue
				}
				residuals[idx], errs[idx] = ExtractFrameResidual(frames[idx], cfg.Denoise)
			}
		}()
	}
	for idx := range frames {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	// Report the first failure in frame order so errors are stable across
	// runs regardless of which worker hit them.
	for idx, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("frame %s: %w", frameID(frames[idx], idx), err)
		}
	}
	return residuals, nil
}

func frameID(f *frame.RawFrame, idx int) string {
	if f != nil && f.ID != "" {
		return f.ID
	}
	return fmt.Sprintf("#%d", idx)
}
