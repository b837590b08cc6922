package pg

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	pgmigrations "github.com/dropDatabas3/scopegate/migrations/postgres"
)

func TestMigrationFiles_SortedSQLOnly(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_indexes.sql": {Data: []byte("-- b")},
		"0001_init.sql":    {Data: []byte("-- a")},
		"notes.md":         {Data: []byte("doc")},
	}

	files, err := migrationFiles(fsys)
	require.NoError(t, err)
	require.Equal(t, []string{"0001_init.sql", "0002_indexes.sql"}, files)
}

func TestMigrationFiles_EmbeddedSchema(t *testing.T) {
	files, err := migrationFiles(pgmigrations.FS)
	require.NoError(t, err)
	require.Contains(t, files, "0001_init.sql")
}
