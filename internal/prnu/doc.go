// Package prnu implements sensor-pattern-noise fingerprinting: noise
// residual extraction, fingerprint aggregation across reference frames,
// normalized cross-correlation scoring, and a caller-configured decision
// policy.
//
// The pipeline is pure CPU-bound computation with no I/O and no process-wide
// state. All intermediate values are created fresh per comparison, and every
// reduction runs in a fixed order so results are reproducible regardless of
// how many workers are used.
package prnu
