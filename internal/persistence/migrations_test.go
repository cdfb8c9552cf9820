package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMigrationsAreEmbedded(t *testing.T) {
	names, err := migrationNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_principals.sql", names[0])

	content, err := migrationFiles.ReadFile("migrations/001_principals.sql")
	require.NoError(t, err)
	for _, table := range []string{"admins", "trainers", "members"} {
		assert.Contains(t, string(content), "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, string(content), "members_trainer_id_idx")
}

func TestUsernamesAreUniqueIgnoringCase(t *testing.T) {
	names, err := migrationNames()
	require.NoError(t, err)
	require.Contains(t, names, "002_username_lower.sql")

	content, err := migrationFiles.ReadFile("migrations/002_username_lower.sql")
	require.NoError(t, err)
	for _, table := range []string{"admins", "trainers", "members"} {
		assert.Contains(t, string(content), "ON "+table+" (lower(username))")
	}
}

func TestRunMigrationsWithoutPool(t *testing.T) {
	require.NoError(t, RunMigrations(context.Background(), nil, zap.NewNop()))
}
