package localstate

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fc-faces/internal/auth"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "state.db")
	store, err := Open(context.Background(), path)
	require.NoError(t, err)
	return store, path
}

func TestStore_GetSetRemove(t *testing.T) {
	store, _ := openTemp(t)
	defer store.Close()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, auth.AttemptsKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, auth.AttemptsKey, "1"))
	require.NoError(t, store.Set(ctx, auth.AttemptsKey, "2"))
	v, ok, err := store.Get(ctx, auth.AttemptsKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	require.NoError(t, store.Remove(ctx, auth.AttemptsKey))
	_, ok, err = store.Get(ctx, auth.AttemptsKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_LockoutSurvivesReopen(t *testing.T) {
	store, path := openTemp(t)
	ctx := context.Background()

	hash, err := auth.HashPassword("pw", 4)
	require.NoError(t, err)
	checker, err := auth.NewDigestChecker(hash)
	require.NoError(t, err)

	service := auth.NewService(store, checker)
	service.WithThrottle(0, 0)
	for i := 0; i < 5; i++ {
		_ = service.Submit(ctx, "wrong")
	}
	require.NoError(t, store.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	service = auth.NewService(reopened, checker)
	service.WithThrottle(0, 0)
	err = service.Submit(ctx, "pw")
	locked, ok := auth.IsLockedOut(err)
	require.True(t, ok, "got %v", err)
	assert.InDelta(t, (15 * time.Minute).Seconds(), locked.Remaining.Seconds(), 5)
}

func TestOpen_Memory(t *testing.T) {
	store, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(context.Background(), "k", "v"))
}
