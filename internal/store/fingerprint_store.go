// Package store persists fingerprints and comparison results in sqlite.
// Fingerprint caching across invocations is deliberately outside the
// numeric core; these stores belong to the CLI caller layer.
package store

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/aperture-data/sensor.report/internal/frame"
	"github.com/aperture-data/sensor.report/internal/prnu"
)

// ReferenceFile records one reference image that contributed to a
// fingerprint, with its SHA256 for chain-of-custody verification.
type ReferenceFile struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
}

// FingerprintRecord is a persisted fingerprint plus its provenance.
type FingerprintRecord struct {
	FingerprintID string             `json:"fingerprint_id"`
	Label         string             `json:"label"`
	Fingerprint   *prnu.Fingerprint  `json:"-"`
	Denoise       prnu.DenoiseConfig `json:"denoise"`
	References    []ReferenceFile    `json:"references,omitempty"`
	CreatedAtNs   int64              `json:"created_at_ns"`
}

// FingerprintStore provides persistence for sensor fingerprints.
type FingerprintStore struct {
	db *sql.DB
}

// NewFingerprintStore creates a FingerprintStore backed by the given database.
func NewFingerprintStore(db *sql.DB) *FingerprintStore {
	return &FingerprintStore{db: db}
}

// Insert stores a fingerprint and its reference file manifest. If
// rec.FingerprintID is empty, a new UUID is generated.
func (s *FingerprintStore) Insert(rec *FingerprintRecord) error {
	if rec.FingerprintID == "" {
		rec.FingerprintID = uuid.New().String()
	}
	if rec.CreatedAtNs == 0 {
		rec.CreatedAtNs = time.Now().UnixNano()
	}

	denoiseJSON, err := json.Marshal(rec.Denoise)
	if err != nil {
		return fmt.Errorf("marshal denoise config: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin insert fingerprint: %w", err)
	}
	defer tx.Rollback()

	shape := rec.Fingerprint.Shape()
	_, err = tx.Exec(`
		INSERT INTO fingerprints (
			fingerprint_id, label, width, height, frame_count,
			denoise_json, map_blob, created_at_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.FingerprintID,
		rec.Label,
		shape.Width,
		shape.Height,
		rec.Fingerprint.FrameCount,
		string(denoiseJSON),
		encodeMap(rec.Fingerprint.Map),
		rec.CreatedAtNs,
	)
	if err != nil {
		return fmt.Errorf("insert fingerprint: %w", err)
	}

	for ord, ref := range rec.References {
		_, err = tx.Exec(`
			INSERT INTO reference_files (fingerprint_id, ord, path, sha256)
			VALUES (?, ?, ?, ?)
		`, rec.FingerprintID, ord, ref.Path, ref.SHA256)
		if err != nil {
			return fmt.Errorf("insert reference file %s: %w", ref.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit fingerprint: %w", err)
	}
	return nil
}

// GetByLabel retrieves a fingerprint and its reference manifest by label.
func (s *FingerprintStore) GetByLabel(label string) (*FingerprintRecord, error) {
	var rec FingerprintRecord
	var width, height, frameCount int
	var denoiseJSON sql.NullString
	var blob []byte

	err := s.db.QueryRow(`
		SELECT fingerprint_id, label, width, height, frame_count,
		       denoise_json, map_blob, created_at_ns
		FROM fingerprints
		WHERE label = ?
	`, label).Scan(
		&rec.FingerprintID,
		&rec.Label,
		&width,
		&height,
		&frameCount,
		&denoiseJSON,
		&blob,
		&rec.CreatedAtNs,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("fingerprint not found: %s", label)
	}
	if err != nil {
		return nil, fmt.Errorf("get fingerprint: %w", err)
	}

	m, err := decodeMap(blob, width, height)
	if err != nil {
		return nil, fmt.Errorf("decode fingerprint %s: %w", label, err)
	}
	rec.Fingerprint = &prnu.Fingerprint{Map: m, FrameCount: frameCount}

	if denoiseJSON.Valid && denoiseJSON.String != "" {
		if err := json.Unmarshal([]byte(denoiseJSON.String), &rec.Denoise); err != nil {
			return nil, fmt.Errorf("decode denoise config for %s: %w", label, err)
		}
	}

	rec.References, err = s.referencesFor(rec.FingerprintID)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListLabels returns all stored fingerprint labels, newest first.
func (s *FingerprintStore) ListLabels() ([]string, error) {
	rows, err := s.db.Query(`SELECT label FROM fingerprints ORDER BY created_at_ns DESC`)
	if err != nil {
		return nil, fmt.Errorf("list fingerprints: %w", err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("scan fingerprint label: %w", err)
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

func (s *FingerprintStore) referencesFor(fingerprintID string) ([]ReferenceFile, error) {
	rows, err := s.db.Query(`
		SELECT path, sha256 FROM reference_files
		WHERE fingerprint_id = ?
		ORDER BY ord
	`, fingerprintID)
	if err != nil {
		return nil, fmt.Errorf("list reference files: %w", err)
	}
	defer rows.Close()

	var refs []ReferenceFile
	for rows.Next() {
		var ref ReferenceFile
		if err := rows.Scan(&ref.Path, &ref.SHA256); err != nil {
			return nil, fmt.Errorf("scan reference file: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// encodeMap serializes map samples as little-endian float64, row-major.
func encodeMap(m *frame.Map) []byte {
	buf := make([]byte, 8*len(m.Pix))
	for i, v := range m.Pix {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return buf
}

func decodeMap(blob []byte, width, height int) (*frame.Map, error) {
	if len(blob) != 8*width*height {
		return nil, fmt.Errorf("map blob is %d bytes, geometry %dx%d requires %d", len(blob), width, height, 8*width*height)
	}
	m := frame.NewMap(width, height)
	for i := range m.Pix {
		m.Pix[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[8*i:]))
	}
	return m, nil
}
