package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a store connected to a miniredis instance
func setupTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	st, err := NewRedis(&redis.Options{Addr: mr.Addr()}, "test")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return st, mr
}

func TestNewRedis(t *testing.T) {
	t.Run("rejects empty namespace", func(t *testing.T) {
		_, err := NewRedis(&redis.Options{Addr: "localhost:6379"}, "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "namespace cannot be empty")
	})

	t.Run("pings server", func(t *testing.T) {
		st, _ := setupTestRedis(t)
		assert.NoError(t, st.Ping(context.Background()))
	})
}

func TestRedisRoundTrip(t *testing.T) {
	st, mr := setupTestRedis(t)
	ctx := context.Background()

	_, ok, err := st.Get(ctx, KeyScans)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.Set(ctx, KeyScans, []byte(`[{"id":"a"}]`)))
	assert.True(t, mr.Exists("lingua:test:"+KeyScans))

	got, ok, err := st.Get(ctx, KeyScans)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"a"}]`, string(got))

	require.NoError(t, st.Remove(ctx, KeyScans))
	assert.False(t, mr.Exists("lingua:test:"+KeyScans))
}

func TestRedisUnreachable(t *testing.T) {
	st, mr := setupTestRedis(t)
	mr.Close()

	var v []string
	assert.False(t, LoadJSON(context.Background(), st, KeyScans, &v, nil))
	assert.Error(t, st.Set(context.Background(), KeyScans, []byte("[]")))
}
