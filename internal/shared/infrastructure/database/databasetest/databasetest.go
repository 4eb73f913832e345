// Package databasetest opens migrated databases for repository tests.
package databasetest

import (
	"context"
	"os"
	"testing"

	"github.com/felixgeelhaar/shopcore/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/shopcore/internal/shared/infrastructure/database/postgres"
	"github.com/felixgeelhaar/shopcore/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/shopcore/internal/shared/infrastructure/migrations"
	"github.com/stretchr/testify/require"
)

// NewSQLite returns a migrated in-memory SQLite connection closed at test end.
func NewSQLite(t *testing.T) database.Connection {
	t.Helper()
	ctx := context.Background()

	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: sqlite.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, migrations.Run(ctx, conn))
	return conn
}

// NewPostgres returns a migrated, emptied PostgreSQL connection from
// TEST_DATABASE_URL. The test is skipped when the variable is unset.
func NewPostgres(t *testing.T) database.Connection {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	conn, err := postgres.NewConnection(ctx, database.Config{Driver: database.DriverPostgres, URL: url})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, migrations.Run(ctx, conn))
	_, err = conn.Exec(ctx, `TRUNCATE order_items, orders, users, outbox RESTART IDENTITY`)
	require.NoError(t, err)
	return conn
}
