package main

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronicTakouugang/stockz/internal/cache"
	"github.com/ronicTakouugang/stockz/internal/config"
	"github.com/ronicTakouugang/stockz/internal/database"
	"github.com/ronicTakouugang/stockz/pkg/marketdata"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestNewQuotaStore(t *testing.T) {
	ctx := context.Background()

	store, err := newQuotaStore(ctx, "memory", nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &cache.MemoryQuotaStore{}, store)

	mr := miniredis.RunT(t)
	redis := &database.RedisClient{Client: goredis.NewClient(&goredis.Options{Addr: mr.Addr()})}
	store, err = newQuotaStore(ctx, "redis", nil, redis)
	require.NoError(t, err)
	assert.IsType(t, &cache.RedisQuotaStore{}, store)

	_, err = newQuotaStore(ctx, "redis", nil, nil)
	assert.Error(t, err)
	_, err = newQuotaStore(ctx, "postgres", nil, nil)
	assert.Error(t, err)
	_, err = newQuotaStore(ctx, "mongo", nil, nil)
	assert.Error(t, err)
}

func TestNewPriceSource(t *testing.T) {
	cfg := &config.MarketDataConfig{Provider: "yahoo"}
	assert.IsType(t, &marketdata.YahooClient{}, newPriceSource(cfg, nil, time.Minute, quietLogger()))

	cfg = &config.MarketDataConfig{Provider: "finnhub", BaseURL: "https://finnhub.io/api/v1"}
	assert.IsType(t, &marketdata.FinnhubClient{}, newPriceSource(cfg, nil, time.Minute, quietLogger()))

	mr := miniredis.RunT(t)
	redis := &database.RedisClient{Client: goredis.NewClient(&goredis.Options{Addr: mr.Addr()})}
	assert.IsType(t, &cache.CachedPriceSource{}, newPriceSource(cfg, redis, time.Minute, quietLogger()))
	assert.IsType(t, &marketdata.FinnhubClient{}, newPriceSource(cfg, redis, 0, quietLogger()))
}
