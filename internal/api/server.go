// Package api exposes the optimization service over HTTP: solve endpoints,
// progress streaming, stats, and health probes.
package api

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/ridrisa/barq-fleet-optimization-api/internal/cache"
	"github.com/ridrisa/barq-fleet-optimization-api/internal/config"
	"github.com/ridrisa/barq-fleet-optimization-api/internal/logging"
	"github.com/ridrisa/barq-fleet-optimization-api/internal/store"
)

type Server struct {
	Cfg    *config.Config
	Store  store.Store
	Cache  cache.Cache
	Broker EventBroker

	log     zerolog.Logger
	limiter *ipLimiter
}

// NewServer wires the server's dependencies from configuration. Without
// DATABASE_URL the store is in-memory; without REDIS_URL the broker and
// cache are in-process.
func NewServer(cfg *config.Config) (*Server, error) {
	log := logging.Component("api")

	var st store.Store
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		st = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		st = sp
	}

	var broker EventBroker
	if cfg.RedisURL != "" {
		if rb, err := NewRedisBroker(cfg.RedisURL); err == nil {
			broker = rb
		} else {
			log.Warn().Err(err).Msg("redis broker unavailable, falling back to in-memory")
			broker = NewBroker()
		}
	} else {
		broker = NewBroker()
	}

	var c cache.Cache
	if cfg.Cache.Enabled {
		ttl := cfg.Cache.TTL.Std()
		if cfg.RedisURL != "" {
			if rc, err := cache.NewRedis(cfg.RedisURL, ttl); err == nil {
				c = rc
			} else {
				log.Warn().Err(err).Msg("redis cache unavailable, falling back to in-memory")
				c = cache.NewMemory(ttl, cfg.Cache.MaxEntries)
			}
		} else {
			c = cache.NewMemory(ttl, cfg.Cache.MaxEntries)
		}
	}

	return &Server{
		Cfg:     cfg,
		Store:   st,
		Cache:   c,
		Broker:  broker,
		log:     log,
		limiter: newIPLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst),
	}, nil
}
