package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campusmatch/matchengine/internal/config"
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	return c.Client.Incr(ctx, key).Result()
}

func (c *RedisCache) Decr(ctx context.Context, key string) (int64, error) {
	return c.Client.Decr(ctx, key).Result()
}

// KeyForLikeCount generates the Redis key for a user's inbound like count.
func (c *RedisCache) KeyForLikeCount(userID uint64) string {
	return fmt.Sprintf("likes:count:%d", userID)
}

func (c *RedisCache) UpdateLikeCount(ctx context.Context, userID uint64, count int64) error {
	key := c.KeyForLikeCount(userID)
	// Always refresh TTL when updating
	return c.Client.Set(ctx, key, count, time.Hour).Err()
}

// GetLikeCount returns the cached inbound like count for a user.
// A cache miss is reported as found=false, never as an error.
func (c *RedisCache) GetLikeCount(ctx context.Context, userID uint64) (int64, bool, error) {
	key := c.KeyForLikeCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, time.Hour).Err()
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return n, true, nil
}

// KeyForCrushQuota generates the Redis key for a sender's used crush count
// in the week starting at weekStart. Keying by window start makes stale
// entries from a previous week unreachable even before their TTL fires.
func (c *RedisCache) KeyForCrushQuota(senderID uint64, weekStart time.Time) string {
	return fmt.Sprintf("crushes:sent:%d:%s", senderID, weekStart.UTC().Format("2006-01-02"))
}

// GetCrushQuotaUsed returns the cached number of crushes the sender has
// used in the given week. Cache miss is found=false.
func (c *RedisCache) GetCrushQuotaUsed(ctx context.Context, senderID uint64, weekStart time.Time) (int64, bool, error) {
	val, err := c.Client.Get(ctx, c.KeyForCrushQuota(senderID, weekStart)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return n, true, nil
}

// SetCrushQuotaUsed stores the sender's used crush count with a TTL that
// expires at the end of the window.
func (c *RedisCache) SetCrushQuotaUsed(ctx context.Context, senderID uint64, weekStart time.Time, used int64, windowEnd time.Time) error {
	ttl := time.Until(windowEnd)
	if ttl <= 0 {
		return nil
	}
	return c.Client.Set(ctx, c.KeyForCrushQuota(senderID, weekStart), used, ttl).Err()
}

// InvalidateCrushQuota drops the cached count after a successful send so
// the next read recounts from the ledger.
func (c *RedisCache) InvalidateCrushQuota(ctx context.Context, senderID uint64, weekStart time.Time) error {
	return c.Client.Del(ctx, c.KeyForCrushQuota(senderID, weekStart)).Err()
}
