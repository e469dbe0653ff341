package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/config"
)

// Client wraps the Redis connection. Redis is an optional accelerator:
// session lookup cache, spreadsheet read cache and rate limiting. Callers
// must tolerate a nil *Client and fall through to the primary stores.
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient connects to Redis and verifies the connection with a ping.
// An empty address means Redis is not deployed; the caller runs without it.
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address not configured")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	logger.Info("redis connected", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// Ping reports connection health.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// ── read cache (spreadsheet ranges) ──

const cachePrefix = "cache:"

// GetCache returns a cached value and whether it was present.
func (c *Client) GetCache(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, cachePrefix+key).Result()
	if err == goredis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// SetCache stores a value under the cache prefix with a TTL.
func (c *Client) SetCache(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, cachePrefix+key, value, ttl).Err()
}

// DeleteCachePrefix removes cached values whose key starts with prefix and
// returns the count. Uses SCAN so a large keyspace does not block the server.
func (c *Client) DeleteCachePrefix(ctx context.Context, prefix string) (int64, error) {
	var (
		cursor  uint64
		cleared int64
	)
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, cachePrefix+prefix+"*", 100).Result()
		if err != nil {
			return cleared, err
		}
		if len(keys) > 0 {
			n, err := c.rdb.Del(ctx, keys...).Result()
			cleared += n
			if err != nil {
				return cleared, err
			}
		}
		cursor = next
		if cursor == 0 {
			return cleared, nil
		}
	}
}

// ClearCache removes every cached value.
func (c *Client) ClearCache(ctx context.Context) (int64, error) {
	return c.DeleteCachePrefix(ctx, "")
}

// ── session lookup cache ──

const sessionPrefix = "session:"

// CacheSession stores the serialized auth context for a session token.
func (c *Client) CacheSession(ctx context.Context, token, payload string, ttl time.Duration) error {
	return c.rdb.Set(ctx, sessionPrefix+token, payload, ttl).Err()
}

// GetSession returns the cached auth context for a token, if any.
func (c *Client) GetSession(ctx context.Context, token string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, sessionPrefix+token).Result()
	if err == goredis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// DeleteSession drops the cached auth context (logout, revocation).
func (c *Client) DeleteSession(ctx context.Context, token string) error {
	return c.rdb.Del(ctx, sessionPrefix+token).Err()
}

// ── rate limiting ──

// CheckRateLimit implements a sliding window over a sorted set. Returns
// whether the request identified by key is within limit for the window.
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now().UnixNano()
	windowStart := strconv.FormatInt(now-window.Nanoseconds(), 10)

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", windowStart)
	pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now), Member: strconv.FormatInt(now, 10)})
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return card.Val() <= int64(limit), nil
}
