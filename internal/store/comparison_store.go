package store

import (
	"database/sql"
	"fmt"

	"github.com/aperture-data/sensor.report/internal/prnu"
)

// ComparisonRecord is one audit-log row: the full correlation result plus
// the thresholds that were in force when the verdict was made.
type ComparisonRecord struct {
	Result     *prnu.CorrelationResult `json:"result"`
	LabelA     string                  `json:"label_a,omitempty"`
	LabelB     string                  `json:"label_b,omitempty"`
	MatchMin   float64                 `json:"match_min"`
	NoMatchMax float64                 `json:"no_match_max"`
}

// ComparisonStore provides persistence for comparison results.
type ComparisonStore struct {
	db *sql.DB
}

// NewComparisonStore creates a ComparisonStore backed by the given database.
func NewComparisonStore(db *sql.DB) *ComparisonStore {
	return &ComparisonStore{db: db}
}

// Insert records a completed comparison.
func (s *ComparisonStore) Insert(rec *ComparisonRecord) error {
	r := rec.Result
	_, err := s.db.Exec(`
		INSERT INTO comparisons (
			comparison_id, label_a, label_b, score, verdict,
			width_a, height_a, width_b, height_b,
			frames_a, frames_b, cropped,
			match_min, no_match_max, created_at_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ComparisonID,
		nullString(rec.LabelA),
		nullString(rec.LabelB),
		r.Score,
		string(r.Verdict),
		r.ShapeA.Width, r.ShapeA.Height,
		r.ShapeB.Width, r.ShapeB.Height,
		r.FramesA, r.FramesB,
		boolToInt(r.Cropped),
		rec.MatchMin,
		rec.NoMatchMax,
		r.ComputedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert comparison: %w", err)
	}
	return nil
}

// ListRecent returns up to limit comparisons, newest first.
func (s *ComparisonStore) ListRecent(limit int) ([]ComparisonRecord, error) {
	rows, err := s.db.Query(`
		SELECT comparison_id, label_a, label_b, score, verdict,
		       width_a, height_a, width_b, height_b,
		       frames_a, frames_b, cropped,
		       match_min, no_match_max, created_at_ns
		FROM comparisons
		ORDER BY created_at_ns DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list comparisons: %w", err)
	}
	defer rows.Close()

	var recs []ComparisonRecord
	for rows.Next() {
		var rec ComparisonRecord
		var result prnu.CorrelationResult
		var labelA, labelB sql.NullString
		var verdict string
		var cropped int
		var createdAtNs int64

		err := rows.Scan(
			&result.ComparisonID,
			&labelA,
			&labelB,
			&result.Score,
			&verdict,
			&result.ShapeA.Width, &result.ShapeA.Height,
			&result.ShapeB.Width, &result.ShapeB.Height,
			&result.FramesA, &result.FramesB,
			&cropped,
			&rec.MatchMin,
			&rec.NoMatchMax,
			&createdAtNs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan comparison: %w", err)
		}

		result.Verdict = prnu.Verdict(verdict)
		result.Cropped = cropped != 0
		result.ComputedAt = nsToTime(createdAtNs)
		if labelA.Valid {
			rec.LabelA = labelA.String
		}
		if labelB.Valid {
			rec.LabelB = labelB.String
		}
		rec.Result = &result
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
