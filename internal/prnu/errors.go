package prnu

import (
	"fmt"

	"github.com/aperture-data/sensor.report/internal/frame"
)

// The pipeline reports failures through a small set of typed errors so
// callers can distinguish bad inputs from bad configuration from internal
// bugs. Errors are always returned, never swallowed: a correlation that
// cannot be computed is an error, not a zero score.

// InvalidConfigurationError reports denoiser or threshold parameters that
// cannot produce a well-defined result.
type InvalidConfigurationError struct {
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return "invalid configuration: " + e.Reason
}

// DimensionMismatchError reports maps of incompatible shapes reaching an
// operation that requires identical geometry.
type DimensionMismatchError struct {
	Context string
	Want    frame.Shape
	Got     frame.Shape
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: shape %s does not match %s", e.Context, e.Got, e.Want)
}

// InsufficientReferenceFramesError reports an aggregation input with fewer
// reference frames than required.
type InsufficientReferenceFramesError struct {
	Got  int
	Need int
}

func (e *InsufficientReferenceFramesError) Error() string {
	return fmt.Sprintf("insufficient reference frames: have %d, need at least %d", e.Got, e.Need)
}

// DegenerateSignalError reports a zero-variance map: a flat signal carries
// no sensor noise and its normalized correlation is undefined.
type DegenerateSignalError struct {
	Context string
}

func (e *DegenerateSignalError) Error() string {
	return "degenerate signal (zero variance): " + e.Context
}

// InternalShapeError reports a shape invariant violated inside the
// pipeline. Stage ordering should make this unreachable; seeing one means a
// bug, not bad user input.
type InternalShapeError struct {
	Context string
	Want    frame.Shape
	Got     frame.Shape
}

func (e *InternalShapeError) Error() string {
	return fmt.Sprintf("internal shape invariant violated in %s: got %s, want %s", e.Context, e.Got, e.Want)
}
