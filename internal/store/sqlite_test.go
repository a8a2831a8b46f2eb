package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatify/chatify-cli/internal/database"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, err := NewSQLiteStore(db)
	require.NoError(t, err)
	return s
}

func TestSQLiteStore(t *testing.T) {
	s := newTestStore(t)

	t.Run("get missing key", func(t *testing.T) {
		_, ok, err := s.Get(KeyToken)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, s.Set(KeyToken, "t1"))
		value, ok, err := s.Get(KeyToken)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "t1", value)
	})

	t.Run("set overwrites", func(t *testing.T) {
		require.NoError(t, s.Set(KeyToken, "t2"))
		value, _, err := s.Get(KeyToken)
		require.NoError(t, err)
		assert.Equal(t, "t2", value)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(KeyToken))
		_, ok, err := s.Get(KeyToken)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("clear wipes all keys", func(t *testing.T) {
		require.NoError(t, s.Set(KeyToken, "t"))
		require.NoError(t, s.Set(KeyUser, `{"id":"u1"}`))
		require.NoError(t, s.Clear())
		for _, key := range []string{KeyToken, KeyUser} {
			_, ok, err := s.Get(key)
			require.NoError(t, err)
			assert.False(t, ok, "key %s should be gone", key)
		}
	})
}

func TestSQLiteStorePersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.db")

	db, err := database.Open(path)
	require.NoError(t, err)
	s, err := NewSQLiteStore(db)
	require.NoError(t, err)
	require.NoError(t, s.Set(KeyToken, "persisted"))
	require.NoError(t, db.Close())

	db, err = database.Open(path)
	require.NoError(t, err)
	defer db.Close()
	s, err = NewSQLiteStore(db)
	require.NoError(t, err)

	value, ok, err := s.Get(KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "persisted", value)
}
