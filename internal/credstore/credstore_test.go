// ABOUTME: Tests for the SQLite credential store.
// ABOUTME: Covers roundtrip, replacement, deletion, and reopen persistence.

package credstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, filepath.Join(t.TempDir(), "spira.db"))

	got, err := store.Get(ctx, "authToken")
	require.NoError(t, err)
	assert.Empty(t, got, "missing name reads as empty")

	require.NoError(t, store.Put(ctx, "authToken", "tok-1"))
	got, err = store.Get(ctx, "authToken")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got)

	require.NoError(t, store.Put(ctx, "authToken", "tok-2"))
	got, err = store.Get(ctx, "authToken")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", got, "put replaces the previous value")

	require.NoError(t, store.Delete(ctx, "authToken"))
	got, err = store.Get(ctx, "authToken")
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, store.Delete(ctx, "authToken"), "deleting a missing name is a no-op")
}

func TestValueSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "spira.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "authToken", "tok-persisted"))
	require.NoError(t, store.Close())

	reopened := openTestStore(t, path)
	got, err := reopened.Get(ctx, "authToken")
	require.NoError(t, err)
	assert.Equal(t, "tok-persisted", got)
}
