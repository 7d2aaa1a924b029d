package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "acquire.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewDB_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	path := filepath.Join(dir, "acquire.db")

	db, err := NewDB(path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
	require.Equal(t, os.FileMode(0o700), info.Mode().Perm())
	require.Equal(t, path, db.Path())
}

func TestNewDB_Pragmas(t *testing.T) {
	db := newTestDB(t)

	var mode string
	require.NoError(t, db.conn.QueryRow("PRAGMA journal_mode").Scan(&mode))
	require.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, db.conn.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	require.Equal(t, 1, fk)

	var timeout int
	require.NoError(t, db.conn.QueryRow("PRAGMA busy_timeout").Scan(&timeout))
	require.Equal(t, 5000, timeout)
}

func TestNewDB_RunsMigrations(t *testing.T) {
	db := newTestDB(t)

	var name string
	err := db.conn.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='active_artifacts'",
	).Scan(&name)
	require.NoError(t, err)
	require.Equal(t, "active_artifacts", name)
}

func TestNewDB_ReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acquire.db")

	db, err := NewDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestNewDB_BacksUpExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acquire.db")

	db, err := NewDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = os.Stat(path + ".bak")
	require.True(t, os.IsNotExist(err), "first open has nothing to back up")

	db, err = NewDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	info, err := os.Stat(path + ".bak")
	require.NoError(t, err)
	require.Positive(t, info.Size())
}
