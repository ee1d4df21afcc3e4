package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "listing:"

// NewRedisClient connects to Redis and pings it once.
func NewRedisClient(addr, password string, db int, log *logger.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Error("Failed to connect to Redis", zap.String("address", addr), zap.Error(err))
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	log.Info("Successfully connected to Redis", zap.String("address", addr))
	return rdb, nil
}

// ListingCache implements domain.ListingCache on top of Redis.
type ListingCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *logger.Logger
}

func NewListingCache(client redis.Cmdable, ttl time.Duration, log *logger.Logger) *ListingCache {
	return &ListingCache{
		client: client,
		ttl:    ttl,
		logger: log.Named("ListingCache"),
	}
}

func (c *ListingCache) Get(ctx context.Context, id string) (*domain.Listing, error) {
	data, err := c.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCacheMiss
		}
		c.logger.Error("Redis Get operation failed", zap.String("listing_id", id), zap.Error(err))
		return nil, fmt.Errorf("listing cache get %s: %w", id, err)
	}

	var entry cachedListing
	if err := json.Unmarshal(data, &entry); err != nil || entry.Listing == nil {
		c.logger.Warn("Dropping undecodable cache entry", zap.String("listing_id", id), zap.Error(err))
		_ = c.client.Del(ctx, keyPrefix+id).Err()
		return nil, domain.ErrCacheMiss
	}
	entry.Listing.OwnerID = entry.OwnerID
	return entry.Listing, nil
}

// Set stores the listing including its owner id, which is hidden from the
// public JSON form.
func (c *ListingCache) Set(ctx context.Context, listing *domain.Listing) error {
	data, err := json.Marshal(cachedListing{Listing: listing, OwnerID: listing.OwnerID})
	if err != nil {
		return fmt.Errorf("listing cache encode %s: %w", listing.ID, err)
	}
	if err := c.client.Set(ctx, keyPrefix+listing.ID, data, c.ttl).Err(); err != nil {
		c.logger.Error("Redis Set operation failed", zap.String("listing_id", listing.ID), zap.Error(err))
		return fmt.Errorf("listing cache set %s: %w", listing.ID, err)
	}
	c.logger.Debug("Listing cached", zap.String("listing_id", listing.ID), zap.Duration("ttl", c.ttl))
	return nil
}

func (c *ListingCache) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		c.logger.Error("Redis Del operation failed", zap.String("listing_id", id), zap.Error(err))
		return fmt.Errorf("listing cache delete %s: %w", id, err)
	}
	return nil
}

type cachedListing struct {
	*domain.Listing
	OwnerID string `json:"ownerId"`
}
