// Package redis provides the optional LLM response cache.  Model output is
// keyed by the hash of the exact chat request, so reprocessing a document
// skips every completed chat round-trip.  The pipeline treats the cache as
// best-effort: any failure here falls through to a live LLM call.
package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/brankow/citation-extraction/internal/config"
	"github.com/brankow/citation-extraction/internal/infrastructure/monitoring/logging"
	apperrors "github.com/brankow/citation-extraction/pkg/errors"
)

// connectTimeout bounds the startup ping.
const connectTimeout = 5 * time.Second

// ResponseCache stores raw LLM output strings with a TTL.
type ResponseCache struct {
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
	log    logging.Logger
}

// New connects to Redis and verifies the connection.  Callers should not
// construct a cache when cfg.Addr is empty; that is the documented way to
// disable caching.
func New(cfg config.RedisConfig, log logging.Logger) (*ResponseCache, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCacheError, "redis connection failed").
			WithDetail(cfg.Addr)
	}

	log.Info("response cache connected",
		logging.String("addr", cfg.Addr),
		logging.Duration("ttl", cfg.TTL))
	return newFromClient(rdb, cfg.KeyPrefix, cfg.TTL, log), nil
}

func newFromClient(rdb goredis.UniversalClient, prefix string, ttl time.Duration, log logging.Logger) *ResponseCache {
	if prefix == "" {
		prefix = "citex"
	}
	return &ResponseCache{
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
		log:    log.Named("cache"),
	}
}

func (c *ResponseCache) fullKey(key string) string {
	return c.prefix + ":llm:" + key
}

// Get returns the cached response for key.  ok is false on a miss.
func (c *ResponseCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, c.fullKey(key)).Result()
	if err == goredis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperrors.Wrap(err, apperrors.ErrCodeCacheError, "cache read failed")
	}
	return val, true, nil
}

// Set stores a response under key with the configured TTL.
func (c *ResponseCache) Set(ctx context.Context, key, value string) error {
	if err := c.rdb.Set(ctx, c.fullKey(key), value, c.ttl).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeCacheError, "cache write failed")
	}
	return nil
}

// Ping reports cache reachability for readiness checks.
func (c *ResponseCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *ResponseCache) Close() error {
	return c.rdb.Close()
}
