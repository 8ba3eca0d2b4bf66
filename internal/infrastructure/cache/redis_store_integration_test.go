//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/maintledger/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) config.RedisConfig {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "6379")
	require.NoError(t, err)
	return config.RedisConfig{Host: host, Port: port.Int()}
}

func TestIntegration_RedisStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewRedisStore(ctx, startRedis(t))
	require.NoError(t, err)
	defer store.Close()

	ok, err := store.MarkProcessed(ctx, "event:1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.MarkProcessed(ctx, "event:1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Release(ctx, "event:1"))
	ok, err = store.MarkProcessed(ctx, "event:1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
