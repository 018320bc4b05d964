package db

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	got, err := migrateURL("postgres://u:p@localhost:5432/apps?sslmode=disable", SchemaApplications)
	require.NoError(t, err)
	assert.Equal(t, "pgx5://u:p@localhost:5432/apps?sslmode=disable&x-migrations-table=schema_migrations_applications", got)

	_, err = migrateURL("mysql://localhost/db", SchemaLoans)
	assert.Error(t, err)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	for _, schema := range []Schema{SchemaApplications, SchemaLoans} {
		ups, err := fs.Glob(migrationsFS, "migrations/"+string(schema)+"/*.up.sql")
		require.NoError(t, err)
		downs, err := fs.Glob(migrationsFS, "migrations/"+string(schema)+"/*.down.sql")
		require.NoError(t, err)
		assert.NotEmpty(t, ups, schema)
		assert.Len(t, downs, len(ups), schema)
	}
}
