//go:build integration

package redis_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	cache "github.com/sirpyerre/healthlog/internal/infrastructure/db/redis"
)

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)
	return fmt.Sprintf("%s:%s", host, port.Port())
}

func TestRedisAdapters(t *testing.T) {
	ctx := context.Background()
	client, err := cache.Connect(ctx, cache.Config{Addr: startRedis(t)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, cache.Pinger{Client: client}.Ping(ctx))

	t.Run("denylist", func(t *testing.T) {
		d := cache.NewDenylist(client)
		revoked, err := d.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.False(t, revoked)

		require.NoError(t, d.Revoke(ctx, "jti-1", time.Minute))
		revoked, err = d.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)

		ttl, err := client.TTL(ctx, "session:revoked:jti-1").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})

	t.Run("submission guard", func(t *testing.T) {
		g := cache.NewSubmissionGuard(client)
		first, err := g.FirstSeen(ctx, "key-1")
		require.NoError(t, err)
		assert.True(t, first)

		again, err := g.FirstSeen(ctx, "key-1")
		require.NoError(t, err)
		assert.False(t, again)

		require.NoError(t, g.Release(ctx, "key-1"))
		retry, err := g.FirstSeen(ctx, "key-1")
		require.NoError(t, err)
		assert.True(t, retry)
	})
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := cache.Connect(context.Background(), cache.Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}
