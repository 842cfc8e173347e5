// Package db opens and migrates the fingerprint database. The database is
// caller-side state: the numeric pipeline itself never touches it, it only
// exists so the CLI can cache fingerprints and keep an audit trail of
// comparisons.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the sqlite handle used by the stores.
type DB struct {
	*sql.DB
}

// NewDB opens (creating if needed) the sqlite database at path. Use
// ":memory:" for an ephemeral database in tests.
func NewDB(path string) (*DB, error) {
	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	// modernc sqlite allows one writer; serialize access through a single
	// connection rather than surfacing SQLITE_BUSY to the stores.
	handle.SetMaxOpenConns(1)

	if _, err := handle.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		handle.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &DB{handle}, nil
}
