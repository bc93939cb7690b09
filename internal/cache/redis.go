package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ridrisa/barq-fleet-optimization-api/internal/logging"
)

const redisKeyPrefix = "cvrp:solution:"

// Redis caches solved responses in a shared Redis instance so replicas
// behind a load balancer see each other's results.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedis builds a Redis-backed cache from a redis:// URL.
func NewRedis(url string, ttl time.Duration) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &Redis{client: redis.NewClient(opt), ttl: ttl, log: logging.Component("cache")}, nil
}

func (r *Redis) Get(ctx context.Context, k Key) ([]byte, bool) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+string(k)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.Warn().Err(err).Msg("redis get failed")
		}
		return nil, false
	}
	return raw, true
}

func (r *Redis) Put(ctx context.Context, k Key, raw []byte) {
	if err := r.client.Set(ctx, redisKeyPrefix+string(k), raw, r.ttl).Err(); err != nil {
		r.log.Warn().Err(err).Msg("redis set failed")
	}
}

// Close releases the underlying client.
func (r *Redis) Close() error { return r.client.Close() }
