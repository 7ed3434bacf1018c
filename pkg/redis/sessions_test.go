package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestSessions_CreateAndGet(t *testing.T) {
	client, _ := setupTestClient(t)
	sessions := NewSessions(client)
	ctx := context.Background()

	token, err := sessions.Create(ctx, 42, "customer")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	principal, err := sessions.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), principal.CustomerID)
	assert.Equal(t, "customer", principal.Role)
	assert.False(t, principal.IsAdmin())
}

func TestSessions_GetUnknownToken(t *testing.T) {
	client, _ := setupTestClient(t)
	sessions := NewSessions(client)

	principal, err := sessions.Get(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Nil(t, principal)
}

func TestSessions_Delete(t *testing.T) {
	client, _ := setupTestClient(t)
	sessions := NewSessions(client)
	ctx := context.Background()

	token, err := sessions.Create(ctx, 42, "customer")
	require.NoError(t, err)

	require.NoError(t, sessions.Delete(ctx, token))

	_, err = sessions.Get(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessions_ExpiredToken(t *testing.T) {
	client, mr := setupTestClient(t)
	sessions := NewSessions(client)
	ctx := context.Background()

	token, err := sessions.Create(ctx, 42, "customer")
	require.NoError(t, err)

	mr.FastForward(sessionTTL + 1)

	_, err = sessions.Get(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessions_SlidingExpiry(t *testing.T) {
	client, mr := setupTestClient(t)
	sessions := NewSessions(client)
	ctx := context.Background()

	token, err := sessions.Create(ctx, 42, "admin")
	require.NoError(t, err)

	// Almost expired, then touched by a Get; the TTL resets.
	mr.FastForward(sessionTTL - 1)
	principal, err := sessions.Get(ctx, token)
	require.NoError(t, err)
	assert.True(t, principal.IsAdmin())

	mr.FastForward(sessionTTL - 1)
	_, err = sessions.Get(ctx, token)
	assert.NoError(t, err)
}
