package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotCache_SetAndGet(t *testing.T) {
	s, client := newTestClient(t)
	cache := NewSnapshotCache(client)
	ctx := context.Background()

	value := []byte(`{"bitcoin":{"usd":50000}}`)

	got, err := cache.Get(ctx, "usd:BTC,ETH")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, cache.Set(ctx, "usd:BTC,ETH", value, time.Minute))

	got, err = cache.Get(ctx, "usd:BTC,ETH")
	require.NoError(t, err)
	assert.Equal(t, value, got)
	assert.True(t, s.Exists("snapshot:usd:BTC,ETH"))
}

func TestSnapshotCache_Expires(t *testing.T) {
	s, client := newTestClient(t)
	cache := NewSnapshotCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "fx", []byte(`{"EUR":"0.9"}`), time.Second))
	s.FastForward(2 * time.Second)

	got, err := cache.Get(ctx, "fx")
	require.NoError(t, err)
	assert.Nil(t, got, "expired snapshot should read as absent")
}

func TestSnapshotCache_ServerDown(t *testing.T) {
	s, client := newTestClient(t)
	cache := NewSnapshotCache(client)
	s.Close()

	_, err := cache.Get(context.Background(), "fx")
	assert.ErrorContains(t, err, "redis snapshot get")
}
