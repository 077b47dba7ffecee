package client

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.db")

	store, err := OpenSQLiteStore(path)
	require.NoError(t, err)

	creds, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, creds.Empty(), "fresh store holds nothing")

	require.NoError(t, store.Save(ctx, Credentials{Access: "a1", Refresh: "r1"}))
	require.NoError(t, store.Save(ctx, Credentials{Access: "a2", Refresh: "r1"}))
	require.NoError(t, store.Close())

	// Credentials survive reopening the file.
	store, err = OpenSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	creds, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Credentials{Access: "a2", Refresh: "r1"}, creds)

	require.NoError(t, store.Save(ctx, Credentials{Refresh: "r1"}))
	creds, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, creds.Access)
	assert.Equal(t, "r1", creds.Refresh)

	require.NoError(t, store.Clear(ctx))
	creds, err = store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, creds.Empty())
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Save(ctx, Credentials{Access: "a", Refresh: "r"}))
	creds, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", creds.Access)

	require.NoError(t, store.Clear(ctx))
	creds, _ = store.Load(ctx)
	assert.True(t, creds.Empty())
}
