package postgres

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	require.NoError(t, err)
	require.Equal(t, []string{
		"migrations/00001_create_users.sql",
		"migrations/00002_create_prayer_requests.sql",
	}, files)

	for _, name := range files {
		data, err := fs.ReadFile(migrationsFS, name)
		require.NoError(t, err)
		assert.Contains(t, string(data), "-- +goose Up", name)
		assert.Contains(t, string(data), "-- +goose Down", name)
	}

	prayer, err := fs.ReadFile(migrationsFS, "migrations/00002_create_prayer_requests.sql")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(prayer), "UNIQUE (ticket)"), "ticket uniqueness backs the allocator")
	assert.Contains(t, string(prayer), "CHECK (ticket > 0)")
}

func TestMigrate_UnknownCommand(t *testing.T) {
	err := Migrate(context.Background(), nil, "reset", nil)

	assert.ErrorIs(t, err, ErrUnknownMigrationCommand)
	assert.Contains(t, err.Error(), "reset")
}
