package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripsplit/internal/session"
)

func TestCreateMemoryBackend(t *testing.T) {
	f := NewFactory(nil)
	result, err := f.CreateBackend(context.Background(), Config{Type: MemoryBackend})
	require.NoError(t, err)
	require.NotNil(t, result.Store)
	assert.Nil(t, result.Cleanup)
}

func TestCreateSQLiteBackend(t *testing.T) {
	f := NewFactory(nil)
	cfg := Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "t.db")}

	result, err := f.CreateBackend(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, result.Store)
	require.NotNil(t, result.Cleanup)
	assert.NoError(t, result.Cleanup())
}

func TestCreateBackendRejectsInvalidType(t *testing.T) {
	f := NewFactory(nil)
	_, err := f.CreateBackend(context.Background(), Config{Type: "postgres"})
	assert.Error(t, err)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.ReplaceGroup(ctx, session.Group{Name: "b"}, 1))
	require.NoError(t, store.ReplaceGroup(ctx, session.Group{Name: "a"}, 0))
	require.NoError(t, store.SetActive(ctx, "b"))

	groups, active, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "a", groups[0].Name)
	assert.Equal(t, "b", groups[1].Name)
	assert.Equal(t, "b", active)

	require.NoError(t, store.DeleteGroup(ctx, "b"))
	groups, active, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 1)
	assert.Empty(t, active)
}
