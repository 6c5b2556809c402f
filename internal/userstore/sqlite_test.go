package userstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "userstore-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	store, err := NewSQLiteStore(filepath.Join(tmpDir, "users.db"))
	require.NoError(t, err)
	return store
}

func TestSQLiteStore_CreateAndGet(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()
	user := &User{
		ID:           uuid.New().String(),
		Username:     "dr.huang",
		PasswordHash: "deadbeef",
		Role:         RoleClinician,
	}

	require.NoError(t, store.Create(ctx, user))
	assert.False(t, user.CreatedAt.IsZero(), "CreatedAt should be set")

	byName, err := store.GetByUsername(ctx, "dr.huang")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, user.ID, byName.ID)
	assert.Equal(t, RoleClinician, byName.Role)

	byID, err := store.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "dr.huang", byID.Username)
}

func TestSQLiteStore_GetMissingUser(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()

	user, err := store.GetByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = store.GetByID(ctx, uuid.New().String())
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestSQLiteStore_DuplicateUsername(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()
	first := &User{
		ID:           uuid.New().String(),
		Username:     "dr.huang",
		PasswordHash: "deadbeef",
		Role:         RoleClinician,
	}
	require.NoError(t, store.Create(ctx, first))

	second := &User{
		ID:           uuid.New().String(),
		Username:     "dr.huang",
		PasswordHash: "cafef00d",
		Role:         RoleAdmin,
	}
	err := store.Create(ctx, second)
	assert.Error(t, err, "Duplicate usernames should be rejected")
}

func TestSQLiteStore_Count(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, store.Create(ctx, &User{
			ID:           uuid.New().String(),
			Username:     name,
			PasswordHash: "hash",
			Role:         RoleClinician,
		}))
	}

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
