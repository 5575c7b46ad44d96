package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"flipearn/internal/domain/entity"
	"flipearn/internal/infrastructure/metrics"
	"flipearn/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const publicListingsKey = "flipearn:listings:public"

// Config defines connection parameters for Redis.
type Config struct {
	Addr     string
	Password string
	DB       int
	UseTLS   bool
}

// client is the subset of go-redis used here.
type client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// Redis wraps a go-redis client with JSON helpers and serves as the public
// listing cache.
type Redis struct {
	client  client
	ttl     time.Duration
	metrics *metrics.Metrics
}

// New returns a Redis client based on provided configuration.
func New(cfg Config, ttl time.Duration, m *metrics.Metrics) *Redis {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return newRedis(redis.NewClient(opts), ttl, m)
}

func newRedis(c client, ttl time.Duration, m *metrics.Metrics) *Redis {
	return &Redis{client: c, ttl: ttl, metrics: m}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// SetJSON caches a value as JSON with the provided TTL.
func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

// GetJSON retrieves JSON value and unmarshals into dest.
func (r *Redis) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	res, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(res), dest); err != nil {
		return false, fmt.Errorf("json unmarshal: %w", err)
	}
	return true, nil
}

// GetPublic returns the cached public listing feed. Any Redis failure is
// treated as a miss so the caller falls back to the database.
func (r *Redis) GetPublic(ctx context.Context) ([]*entity.Listing, bool) {
	var listings []*entity.Listing
	ok, err := r.GetJSON(ctx, publicListingsKey, &listings)
	if err != nil {
		logger.Warn("Public listing cache read failed: %v", err)
		r.observe("error")
		return nil, false
	}
	if !ok {
		r.observe("miss")
		return nil, false
	}
	r.observe("hit")
	return listings, true
}

func (r *Redis) SetPublic(ctx context.Context, listings []*entity.Listing) {
	if err := r.SetJSON(ctx, publicListingsKey, listings, r.ttl); err != nil {
		logger.Warn("Public listing cache write failed: %v", err)
	}
}

func (r *Redis) InvalidatePublic(ctx context.Context) {
	if err := r.client.Del(ctx, publicListingsKey).Err(); err != nil {
		logger.Warn("Public listing cache invalidation failed: %v", err)
	}
}

// Close releases Redis resources.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) observe(result string) {
	if r.metrics != nil {
		r.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}
