// Package dbtest opens migrated databases for tests.
package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"dukapos/m/internal/database"
	"dukapos/m/internal/migrations"
)

const memoryDSN = ":memory:?_pragma=foreign_keys(1)&_time_format=sqlite"

// New returns a fresh SQLite database with the schema applied. It is closed
// when the test ends.
func New(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := database.Connect(context.Background(), "sqlite", memoryDSN, 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Run(db, "sqlite", memoryDSN))
	return db
}

// PostgresDSN starts a throwaway PostgreSQL container and returns its DSN.
// The test is skipped in -short mode or when no Docker provider is reachable.
func PostgresDSN(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("pos_test"),
		tcpostgres.WithUsername("pos"),
		tcpostgres.WithPassword("pos"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

// NewPostgres returns a migrated PostgreSQL database in its own container.
func NewPostgres(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := PostgresDSN(t)
	db, err := database.Connect(context.Background(), "postgres", dsn, 8)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Run(db, "postgres", dsn))
	return db
}
