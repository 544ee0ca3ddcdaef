package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenCreatesParentDirectory(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "deeper", "graph.db")
	gdb, err := Open(dsn, Options{})
	require.NoError(t, err)
	require.NotNil(t, gdb)

	_, err = os.Stat(dsn)
	require.NoError(t, err)
}

func TestOpenMigratesSchema(t *testing.T) {
	gdb, err := Open(filepath.Join(t.TempDir(), "graph.db"), Options{})
	require.NoError(t, err)

	for _, table := range []string{"files", "nodes", "edges", "refs"} {
		require.True(t, gdb.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestDialectorForLocalPath(t *testing.T) {
	dialector, cleanup, err := dialectorFor(filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	require.NotNil(t, dialector)
	require.Nil(t, cleanup)
	require.Equal(t, "sqlite", dialector.Name())
}
