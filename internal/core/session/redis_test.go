package session

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, c)

	endpoint, err := c.Endpoint(ctx, "")
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisStoreLifecycle(t *testing.T) {
	rdb := startRedis(t)
	ctx := context.Background()
	s := NewRedisStore(rdb, time.Hour)

	id, err := s.Create(ctx, Data{UserID: "u1", CreatedAt: time.Now().UTC()})
	require.NoError(t, err)

	ttl, err := rdb.TTL(ctx, keyPrefix+id).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)

	d, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "u1", d.UserID)

	require.NoError(t, s.Destroy(ctx, id))
	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)
}
