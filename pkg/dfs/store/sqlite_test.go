package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/dfs/pkg/dfs"
)

func TestSQLiteStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "specs.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)

	s := dfs.Default()
	s.System["timezone"] = "Europe/Paris"
	_, err = store.Save("support", dfs.Default())
	require.NoError(t, err)
	saved, err := store.Save("support", s)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, info, err := reopened.Load("support")
	require.NoError(t, err)
	assert.True(t, s.Equal(loaded))
	assert.Equal(t, saved.ID, info.ID)
	assert.Equal(t, 2, info.Revision)
	assert.Equal(t, saved.Size, info.Size)
	assert.True(t, saved.Saved.Equal(info.Saved))

	next, err := reopened.Save("support", s)
	require.NoError(t, err)
	assert.Equal(t, 3, next.Revision)
}

func TestSQLiteStore_InvalidPath(t *testing.T) {
	_, err := NewSQLiteStore("/nonexistent/path/specs.db")
	assert.Error(t, err)
}

func TestSQLiteStore_CloseTwice(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
