package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_SQLiteInMemory(t *testing.T) {
	db, err := Connect(context.Background(), "sqlite", ":memory:", 10)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, "sqlite", db.DriverName())
	assert.Equal(t, 1, db.Stats().MaxOpenConnections)

	var one int
	require.NoError(t, db.Get(&one, "SELECT 1"))
	assert.Equal(t, 1, one)
}

func TestConnect_UnknownDialect(t *testing.T) {
	_, err := Connect(context.Background(), "mongo", "mongodb://localhost", 10)
	assert.ErrorContains(t, err, "unsupported database dialect")
}
