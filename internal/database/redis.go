package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ronicTakouugang/stockz/internal/config"
)

// RedisClient backs the redis quota store and the daily bar cache.
type RedisClient struct {
	Client *redis.Client
	logger *logrus.Logger
}

// RedisPoolStatus is the connection pool snapshot reported on /api/v1/stats.
type RedisPoolStatus struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
}

// RedisOptions maps the redis config onto client options. Unset timeouts
// fall back to 5s dial and 2s read/write.
func RedisOptions(cfg config.RedisConfig) *redis.Options {
	opts := &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  config.Duration(cfg.DialTimeout, 5*time.Second),
		ReadTimeout:  config.Duration(cfg.ReadTimeout, 2*time.Second),
		WriteTimeout: config.Duration(cfg.WriteTimeout, 2*time.Second),
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	return opts
}

func NewRedisConnection(ctx context.Context, cfg config.RedisConfig, logger *logrus.Logger) (*RedisClient, error) {
	rdb := redis.NewClient(RedisOptions(cfg))

	pingCtx, cancel := context.WithTimeout(ctx, config.Duration(cfg.DialTimeout, 5*time.Second))
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"addr":      rdb.Options().Addr,
		"db":        cfg.DB,
		"pool_size": rdb.Options().PoolSize,
	}).Info("Successfully connected to Redis")

	return &RedisClient{Client: rdb, logger: logger}, nil
}

func (r *RedisClient) Close() {
	if r.Client == nil {
		return
	}
	if err := r.Client.Close(); err != nil {
		r.logger.WithError(err).Warn("Error closing Redis connection")
		return
	}
	r.logger.Info("Redis connection closed")
}

func (r *RedisClient) HealthCheck(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

// PoolStatus reports the client's connection pool counters.
func (r *RedisClient) PoolStatus() RedisPoolStatus {
	s := r.Client.PoolStats()
	return RedisPoolStatus{
		Hits:       s.Hits,
		Misses:     s.Misses,
		Timeouts:   s.Timeouts,
		TotalConns: s.TotalConns,
		IdleConns:  s.IdleConns,
	}
}
