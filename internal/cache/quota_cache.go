package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// quotaKeyTTL keeps a day's counter around long enough to cover every time zone.
const quotaKeyTTL = 48 * time.Hour

// RedisQuotaStore keeps daily usage counters in Redis under quota:{user}:{date}.
type RedisQuotaStore struct {
	redis  *redis.Client
	prefix string
}

// NewRedisQuotaStore creates a Redis-backed quota store
func NewRedisQuotaStore(redisClient *redis.Client) *RedisQuotaStore {
	return &RedisQuotaStore{redis: redisClient, prefix: "quota:"}
}

func (s *RedisQuotaStore) key(userID, dateKey string) string {
	return s.prefix + userID + ":" + dateKey
}

// GetCount returns 0 when the user has no counter for the day.
func (s *RedisQuotaStore) GetCount(ctx context.Context, userID, dateKey string) (int, error) {
	val, err := s.redis.Get(ctx, s.key(userID, dateKey)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get quota: %w", err)
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("corrupt quota counter %q: %w", val, err)
	}
	return count, nil
}

// Increment bumps the counter and refreshes its expiry in one transaction.
func (s *RedisQuotaStore) Increment(ctx context.Context, userID, dateKey string) error {
	key := s.key(userID, dateKey)
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, quotaKeyTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis increment quota: %w", err)
	}
	return nil
}
