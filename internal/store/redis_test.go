package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, "jewelbook:"), mr
}

func TestRedisPutGet(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	got, err := s.Get(ctx, KeyInventory)
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, s.Put(ctx,
		Entry{Key: KeyInventory, Value: []byte(`[{"id":1}]`)},
		Entry{Key: KeySales, Value: []byte(`[]`)},
	))

	got, err = s.Get(ctx, KeyInventory)
	require.NoError(t, err)
	require.Equal(t, `[{"id":1}]`, string(got))

	raw, err := mr.Get("jewelbook:" + KeySales)
	require.NoError(t, err)
	require.Equal(t, "[]", raw)
}

func TestRedisDelete(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, Entry{Key: PhotoKey(3), Value: []byte("jpeg")}))
	require.NoError(t, s.Put(ctx, Entry{Key: PhotoKey(3)}))

	require.False(t, mr.Exists("jewelbook:"+PhotoKey(3)))
	got, err := s.Get(ctx, PhotoKey(3))
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestDialRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := DialRedis(context.Background(), mr.Addr())
	require.NoError(t, err)
	client.Close()

	mr.Close()
	_, err = DialRedis(context.Background(), mr.Addr())
	require.Error(t, err)
}

func TestRedisHas(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	ok, err := s.Has(ctx, PhotoKey(9))
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Put(ctx, Entry{Key: PhotoKey(9), Value: []byte("jpeg")}))
	ok, err = s.Has(ctx, PhotoKey(9))
	require.NoError(t, err)
	require.True(t, ok)
}
