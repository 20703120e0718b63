package otp

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (Store, *miniredis.Miniredis) {
	t.Helper()
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, "otp", time.Minute), server
}

func TestStorePutGetDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	expiresAt, err := store.Put(ctx, "9000000001", "123456")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 5*time.Second)

	code, err := store.Get(ctx, "9000000001")
	require.NoError(t, err)
	require.Equal(t, "123456", code)

	require.NoError(t, store.Delete(ctx, "9000000001"))

	_, err = store.Get(ctx, "9000000001")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreGetMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "9000000009")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreCodeExpires(t *testing.T) {
	store, server := newTestStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "9000000001", "123456")
	require.NoError(t, err)

	server.FastForward(2 * time.Minute)

	_, err = store.Get(ctx, "9000000001")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreReplacesPendingCode(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "9000000001", "111111")
	require.NoError(t, err)
	_, err = store.Put(ctx, "9000000001", "222222")
	require.NoError(t, err)

	code, err := store.Get(ctx, "9000000001")
	require.NoError(t, err)
	require.Equal(t, "222222", code)
}

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(6)
	require.NoError(t, err)
	require.Len(t, code, 6)
	for _, r := range code {
		require.True(t, r >= '0' && r <= '9')
	}

	// Non-positive lengths fall back to six digits.
	code, err = GenerateCode(0)
	require.NoError(t, err)
	require.Len(t, code, 6)
}
