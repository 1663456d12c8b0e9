// Package cache provides a Redis-backed read-side cache for the scream
// feed.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/socialape/screams-backend/internal/models"
)

const (
	feedKey = "screams:feed"
	feedTTL = 30 * time.Second
)

// ErrMiss is returned when the requested entry is not cached.
var ErrMiss = errors.New("cache miss")

// Redis caches the scream feed in Redis.
type Redis struct {
	cli *redis.Client
}

// Connect connects to the Redis server and pings it to ensure the
// connection is working.
func Connect(ctx context.Context, addr string) (*Redis, error) {
	cli := redis.NewClient(&redis.Options{Addr: addr})
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{cli: cli}, nil
}

// GetFeed returns the cached feed, or ErrMiss.
func (r *Redis) GetFeed(ctx context.Context) ([]models.Scream, error) {
	raw, err := r.cli.Get(ctx, feedKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("get feed: %w", err)
	}

	var screams []models.Scream
	if err := json.Unmarshal(raw, &screams); err != nil {
		return nil, fmt.Errorf("decode cached feed: %w", err)
	}
	return screams, nil
}

// SetFeed stores the feed with a short TTL.
func (r *Redis) SetFeed(ctx context.Context, screams []models.Scream) error {
	raw, err := json.Marshal(screams)
	if err != nil {
		return err
	}
	if err := r.cli.Set(ctx, feedKey, raw, feedTTL).Err(); err != nil {
		return fmt.Errorf("set feed: %w", err)
	}
	return nil
}

// InvalidateFeed drops the cached feed after a mutation touches screams or
// their counters.
func (r *Redis) InvalidateFeed(ctx context.Context) error {
	if err := r.cli.Del(ctx, feedKey).Err(); err != nil {
		return fmt.Errorf("invalidate feed: %w", err)
	}
	return nil
}
