package prnu

import "fmt"

// Verdict is the categorical outcome of a comparison.
type Verdict string

const (
	VerdictMatch        Verdict = "match"
	VerdictNoMatch      Verdict = "no_match"
	VerdictInconclusive Verdict = "inconclusive"
)

// DecisionThresholds maps a correlation score onto a verdict. There is no
// default cutoff anywhere in this package: appropriate values depend on
// frame count, denoiser choice, and sensor model, so callers must construct
// thresholds explicitly. The zero value is unusable by design.
type DecisionThresholds struct {
	noMatchMax float64
	matchMin   float64
	valid      bool
}

// NewDecisionThresholds builds a validated threshold pair. Scores at or
// below noMatchMax are a NoMatch, scores at or above matchMin are a Match,
// and everything between is Inconclusive. Construction fails unless
// noMatchMax <= matchMin.
func NewDecisionThresholds(noMatchMax, matchMin float64) (DecisionThresholds, error) {
	if matchMin < noMatchMax {
		return DecisionThresholds{}, &InvalidConfigurationError{
			Reason: fmt.Sprintf("thresholds out of order: match lower bound %g below no-match upper bound %g", matchMin, noMatchMax),
		}
	}
	return DecisionThresholds{noMatchMax: noMatchMax, matchMin: matchMin, valid: true}, nil
}

// NoMatchMax returns the no-match upper bound.
func (t DecisionThresholds) NoMatchMax() float64 { return t.noMatchMax }

// MatchMin returns the match lower bound.
func (t DecisionThresholds) MatchMin() float64 { return t.matchMin }

// Decide maps a score to a verdict.
func (t DecisionThresholds) Decide(score float64) Verdict {
	switch {
	case score >= t.matchMin:
		return VerdictMatch
	case score <= t.noMatchMax:
		return VerdictNoMatch
	default:
		return VerdictInconclusive
	}
}

func (t DecisionThresholds) validate() error {
	if !t.valid {
		return &InvalidConfigurationError{Reason: "decision thresholds not set; use NewDecisionThresholds"}
	}
	return nil
}
