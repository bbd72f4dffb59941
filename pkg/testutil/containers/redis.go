//go:build integration

package containers

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"profileguard/internal/platform/config"
	platformredis "profileguard/internal/platform/redis"
)

const redisImage = "redis:7.4-alpine"

type RedisContainer struct {
	URL    string
	Client *redis.Client
}

// NewRedisContainer starts Redis and dials it the way the server does, so
// the REDIS_URL parsing and pool settings are covered too.
func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := tcredis.Run(ctx, redisImage)
	require.NoError(t, err, "start %s", redisImage)

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := platformredis.New(ctx, config.RedisConfig{
		URL:         url,
		PoolSize:    4,
		DialTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	require.NotNil(t, client)

	return &RedisContainer{URL: url, Client: client.Client}
}

func (r *RedisContainer) FlushAll(ctx context.Context) error {
	return r.Client.FlushAll(ctx).Err()
}
