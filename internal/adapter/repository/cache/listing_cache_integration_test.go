//go:build integration

package cache_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/repository/cache"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/domain"
	platformLogger "github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRedis *redis.Client

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7-alpine",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start Redis resource: %s", err)
	}

	addr := resource.GetHostPort("6379/tcp")
	if err := pool.Retry(func() error {
		var errRetry error
		testRedis, errRetry = cache.NewRedisClient(addr, "", 0, platformLogger.NewNop())
		return errRetry
	}); err != nil {
		log.Fatalf("Could not connect to Redis: %s", err)
	}

	code := m.Run()

	_ = testRedis.Close()
	if err := pool.Purge(resource); err != nil {
		log.Fatalf("Could not purge Redis resource: %s", err)
	}
	os.Exit(code)
}

func TestListingCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := cache.NewListingCache(testRedis, time.Minute, platformLogger.NewNop())

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	listing := &domain.Listing{
		ID:       fmt.Sprintf("listing-%d", time.Now().UnixNano()),
		Title:    "Cabin",
		Price:    120,
		Images:   []string{"http://img/1.jpg"},
		Location: "Borovoe",
		Category: domain.CategoryCabins,
		OwnerID:  "owner-1",
		Owner:    &domain.UserRef{ID: "owner-1", Username: "owner"},
	}
	require.NoError(t, c.Set(ctx, listing))

	got, err := c.Get(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cabin", got.Title)
	assert.Equal(t, "owner-1", got.OwnerID, "owner id must survive the cache")
	assert.Equal(t, "owner", got.Owner.Username)

	require.NoError(t, c.Delete(ctx, listing.ID))
	_, err = c.Get(ctx, listing.ID)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}
