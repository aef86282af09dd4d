package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// MaxURLCacheTTL caps the same-day response cache. Entries are keyed by full
// URL only; nothing user-scoped ever enters the cache.
const MaxURLCacheTTL = 5 * time.Minute

// URLCache is an optional Redis-backed cache for upstream GET bodies. A nil
// *URLCache is valid and disables caching entirely.
type URLCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewURLCache connects to Redis and verifies the connection. Returns an error
// rather than degrading silently so the caller can decide to run uncached.
func NewURLCache(redisURL string, ttl time.Duration, logger *logrus.Logger) (*URLCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	if ttl <= 0 || ttl > MaxURLCacheTTL {
		ttl = MaxURLCacheTTL
	}
	return &URLCache{client: client, ttl: ttl, logger: logger}, nil
}

func (c *URLCache) key(url string) string {
	return "sports-mcp:url:" + url
}

// Get returns the cached body for a URL, false on miss or any Redis error.
func (c *URLCache) Get(ctx context.Context, url string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, c.key(url)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).WithField("component", "url_cache").Debug("Cache read failed")
		}
		return nil, false
	}
	return data, true
}

// Set stores a response body. Failures are logged and swallowed; the cache is
// an optimization, never a dependency.
func (c *URLCache) Set(ctx context.Context, url string, body []byte) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, c.key(url), body, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("component", "url_cache").Debug("Cache write failed")
	}
}

// Close releases the Redis connection.
func (c *URLCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
