package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonceStore_CheckAndSet(t *testing.T) {
	s, client := newTestClient(t)
	store := NewNonceStore(client)
	ctx := context.Background()

	ok, err := store.CheckAndSet(ctx, "ops-1", "n-abc", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "first use is accepted")

	ok, err = store.CheckAndSet(ctx, "ops-1", "n-abc", 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "replay is rejected")

	ok, err = store.CheckAndSet(ctx, "ops-2", "n-abc", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "nonces are scoped per key id")

	s.FastForward(6 * time.Minute)
	ok, err = store.CheckAndSet(ctx, "ops-1", "n-abc", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "an expired nonce is accepted again")
}
