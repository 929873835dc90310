package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ronicTakouugang/stockz/internal/models"
)

// SeriesFetcher is the price source wrapped by CachedPriceSource.
type SeriesFetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) (*models.PriceSeries, error)
}

// seriesCacheEntry is the JSON document stored per symbol and day range.
type seriesCacheEntry struct {
	Symbol     string    `json:"symbol"`
	Timestamps []int64   `json:"t"`
	Open       []float64 `json:"o"`
	High       []float64 `json:"h"`
	Low        []float64 `json:"l"`
	Close      []float64 `json:"c"`
	Volume     []float64 `json:"v"`
	CachedAt   time.Time `json:"cached_at"`
}

// SeriesCacheStats tracks cache performance metrics
type SeriesCacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
}

// CachedPriceSource serves daily bars from Redis and falls through to the
// wrapped source on a miss. Redis errors never fail a fetch.
type CachedPriceSource struct {
	source SeriesFetcher
	redis  *redis.Client
	ttl    time.Duration
	prefix string
	logger *logrus.Logger

	mu    sync.Mutex
	stats SeriesCacheStats
}

// NewCachedPriceSource wraps source with a Redis cache of the given TTL.
func NewCachedPriceSource(source SeriesFetcher, redisClient *redis.Client, ttl time.Duration, logger *logrus.Logger) *CachedPriceSource {
	return &CachedPriceSource{
		source: source,
		redis:  redisClient,
		ttl:    ttl,
		prefix: "series:",
		logger: logger,
	}
}

// Keys use calendar days so repeated requests within a day share an entry.
func (c *CachedPriceSource) key(symbol string, from, to time.Time) string {
	return fmt.Sprintf("%s%s:%s:%s", c.prefix, symbol,
		from.UTC().Format(models.DateLayout), to.UTC().Format(models.DateLayout))
}

func (c *CachedPriceSource) FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) (*models.PriceSeries, error) {
	key := c.key(symbol, from, to)

	if series, ok := c.get(ctx, key); ok {
		return series, nil
	}

	series, err := c.source.FetchDailyBars(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, series)
	return series, nil
}

func (c *CachedPriceSource) get(ctx context.Context, key string) (*models.PriceSeries, bool) {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).WithField("key", key).Warn("Series cache read failed")
		}
		c.count(func(s *SeriesCacheStats) { s.Misses++ })
		return nil, false
	}

	var entry seriesCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Discarding undecodable series cache entry")
		c.count(func(s *SeriesCacheStats) { s.Misses++ })
		return nil, false
	}
	series, err := models.NewPriceSeries(entry.Symbol, models.RawSeries{
		Timestamps: entry.Timestamps,
		Open:       entry.Open,
		High:       entry.High,
		Low:        entry.Low,
		Close:      entry.Close,
		Volume:     entry.Volume,
	})
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Discarding malformed series cache entry")
		c.count(func(s *SeriesCacheStats) { s.Misses++ })
		return nil, false
	}

	c.count(func(s *SeriesCacheStats) { s.Hits++ })
	return series, true
}

func (c *CachedPriceSource) set(ctx context.Context, key string, series *models.PriceSeries) {
	entry := seriesCacheEntry{
		Symbol:     series.Symbol(),
		Timestamps: series.Timestamps(),
		Open:       series.Opens(),
		High:       series.Highs(),
		Low:        series.Lows(),
		Close:      series.Closes(),
		Volume:     series.Volumes(),
		CachedAt:   time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to encode series for cache")
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Series cache write failed")
		return
	}
	c.count(func(s *SeriesCacheStats) { s.Sets++ })

	c.logger.WithFields(logrus.Fields{
		"symbol": series.Symbol(),
		"bars":   series.Len(),
		"ttl":    c.ttl.String(),
	}).Debug("Cached daily bars")
}

func (c *CachedPriceSource) count(fn func(*SeriesCacheStats)) {
	c.mu.Lock()
	fn(&c.stats)
	c.mu.Unlock()
}

// GetStats returns current cache statistics
func (c *CachedPriceSource) GetStats() SeriesCacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Clear removes all cached series.
func (c *CachedPriceSource) Clear(ctx context.Context) error {
	var keys []string
	iter := c.redis.Scan(ctx, 0, c.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("error scanning cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("error clearing cache: %w", err)
	}
	return nil
}
