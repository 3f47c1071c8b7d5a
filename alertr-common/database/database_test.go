package database

import (
	"path/filepath"
	"testing"

	"github.com/sqall01/alertR/alertr-common/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLite(t *testing.T) {
	cfg := &config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "alertr.db")}
	db, err := Open(cfg)
	require.NoError(t, err)
	defer Close(db)

	_, err = db.Exec(`CREATE TABLE internals (id INTEGER PRIMARY KEY, type TEXT, value REAL)`)
	require.NoError(t, err)
	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)

	_, err = Open(&config.DatabaseConfig{Driver: "sqlite"})
	assert.Error(t, err)

	assert.NoError(t, Close(nil))
}
