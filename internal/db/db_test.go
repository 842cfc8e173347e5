package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMigrationsDir = "../../migrations"

func TestMigrateLifecycle(t *testing.T) {
	database, err := NewDB(":memory:")
	require.NoError(t, err)
	defer database.Close()

	version, dirty, err := database.MigrateVersion(testMigrationsDir)
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
	assert.False(t, dirty)

	require.NoError(t, database.MigrateUp(testMigrationsDir))

	version, dirty, err = database.MigrateVersion(testMigrationsDir)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	// Up again is a no-op, not an error.
	require.NoError(t, database.MigrateUp(testMigrationsDir))

	for _, table := range []string{"fingerprints", "reference_files", "comparisons"} {
		var name string
		err := database.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		require.NoError(t, err, "table %s missing", table)
	}

	require.NoError(t, database.MigrateDown(testMigrationsDir))
	var count int
	err = database.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'fingerprints'`,
	).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestNewDBCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fingerprints.db")
	database, err := NewDB(path)
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, database.Ping())

	var fk int
	require.NoError(t, database.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}
