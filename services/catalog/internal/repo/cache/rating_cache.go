package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"torrent-catalog/services/catalog/internal/entity"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Get when nothing is cached for the torrent.
var ErrCacheMiss = errors.New("rating summary not cached")

type RatingCache interface {
	Get(ctx context.Context, torrentID string) (*entity.RatingSummary, error)
	Set(ctx context.Context, summary entity.RatingSummary, ttl time.Duration) error
	Invalidate(ctx context.Context, torrentID string) error
}

func RatingKey(torrentID string) string {
	return fmt.Sprintf("torrent:rating:%s", torrentID)
}

type redisRatingCache struct {
	client *redis.Client
}

// NewRatingCache returns a redis-backed cache, or a no-op one when client is
// nil so the catalog still runs without redis.
func NewRatingCache(client *redis.Client) RatingCache {
	if client == nil {
		return noopRatingCache{}
	}
	return &redisRatingCache{client: client}
}

func (c *redisRatingCache) Get(ctx context.Context, torrentID string) (*entity.RatingSummary, error) {
	data, err := c.client.Get(ctx, RatingKey(torrentID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var summary entity.RatingSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("decode cached rating: %w", err)
	}
	return &summary, nil
}

func (c *redisRatingCache) Set(ctx context.Context, summary entity.RatingSummary, ttl time.Duration) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, RatingKey(summary.TorrentID), data, ttl).Err()
}

func (c *redisRatingCache) Invalidate(ctx context.Context, torrentID string) error {
	return c.client.Del(ctx, RatingKey(torrentID)).Err()
}

type noopRatingCache struct{}

func (noopRatingCache) Get(context.Context, string) (*entity.RatingSummary, error) {
	return nil, ErrCacheMiss
}

func (noopRatingCache) Set(context.Context, entity.RatingSummary, time.Duration) error {
	return nil
}

func (noopRatingCache) Invalidate(context.Context, string) error {
	return nil
}
