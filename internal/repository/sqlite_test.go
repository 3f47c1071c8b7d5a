package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/sqall01/alertR/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

func openSQLite(t *testing.T, legacy bool) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, EnsureSchema(context.Background(), db, legacy))
	return db
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	db := openSQLite(t, true)
	assert.NoError(t, EnsureSchema(context.Background(), db, true))
}

func TestSQLite_EventsWithDetailsAndData(t *testing.T) {
	db := openSQLite(t, false)
	ctx := context.Background()

	stmts := []string{
		`INSERT INTO events (id, timeOccurred, type) VALUES (1, 100, 'newNode'), (2, 200, 'stateChange'), (3, 300, 'sensorAlert')`,
		`INSERT INTO eventsNewNode (eventId, hostname, nodeType, instance) VALUES (1, 'pi', 'sensor', 'sensorClientRaspberryPi')`,
		`INSERT INTO eventsStateChange (eventId, hostname, description, state, dataType) VALUES (2, 'pi', 'Temperature', 1, 2)`,
		`INSERT INTO eventsDataFloat (eventId, value, unit) VALUES (2, 21.5, 'C')`,
		`INSERT INTO eventsSensorAlert (eventId, description, state, dataType) VALUES (3, 'Door', 1, 0)`,
	}
	for _, s := range stmts {
		_, err := db.ExecContext(ctx, s)
		require.NoError(t, err)
	}

	repo := NewAlertSystemRepository(db, Options{Driver: "sqlite"}, zap.NewNop())

	events, err := repo.Events(ctx, &Range{Start: 1, Number: 1})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(2), events[0].ID)

	details, err := repo.EventDetails(ctx, models.EventStateChange, []int64{2})
	require.NoError(t, err)
	sc, ok := details[2].(*models.StateChangeEvent)
	require.True(t, ok)
	assert.Equal(t, models.DataTypeFloat, sc.DataType)

	data, err := repo.EventData(ctx, 2, sc.DataType)
	require.NoError(t, err)
	v, ok := data.Float()
	assert.True(t, ok)
	assert.Equal(t, 21.5, v)

	all, err := repo.Events(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(3), all[0].ID)
	assert.Equal(t, int64(1), all[2].ID)
}

func TestSQLite_LegacyNodes(t *testing.T) {
	db := openSQLite(t, true)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO nodes (id, hostname, nodeType, instance, connected, version, rev, username, persistent, newestVersion, newestRev)
		VALUES (1, 'pi', 'sensor', 'sensorClientRaspberryPi', 1, 0.8, 1, 'pi', 1, 0.9, 0)`)
	require.NoError(t, err)

	nodes, err := NewAlertSystemRepository(db, Options{Driver: "sqlite", Legacy: true}, zap.NewNop()).Nodes(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, 0.9, nodes[0].NewestVersion)
}

func TestSQLite_EventDetailsForLargeUnpaginatedPage(t *testing.T) {
	db := openSQLite(t, false)
	ctx := context.Background()

	const total = 40000
	stmts := []string{
		`WITH RECURSIVE seq(n) AS (SELECT 1 UNION ALL SELECT n + 1 FROM seq WHERE n < 40000)
		INSERT INTO events (id, timeOccurred, type) SELECT n, n, 'newNode' FROM seq`,
		`INSERT INTO eventsNewNode (eventId, hostname, nodeType, instance)
		SELECT id, 'host-' || id, 'sensor', 'sensorClientRaspberryPi' FROM events`,
	}
	for _, s := range stmts {
		_, err := db.ExecContext(ctx, s)
		require.NoError(t, err)
	}

	repo := NewAlertSystemRepository(db, Options{Driver: "sqlite"}, zap.NewNop())
	events, err := repo.Events(ctx, nil)
	require.NoError(t, err)
	require.Len(t, events, total)

	ids := make([]int64, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	details, err := repo.EventDetails(ctx, models.EventNewNode, ids)
	require.NoError(t, err)
	require.Len(t, details, total)

	d, ok := details[total].(*models.NewNodeEvent)
	require.True(t, ok)
	assert.Equal(t, "host-40000", d.Hostname)
}
