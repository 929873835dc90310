package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ronicTakouugang/stockz/internal/cache"
	"github.com/ronicTakouugang/stockz/internal/database"
	"github.com/ronicTakouugang/stockz/internal/services"
)

// BreakerMonitor is the reasoner circuit breaker.
type BreakerMonitor interface {
	Name() string
	GetState() services.CircuitBreakerState
	GetStats() services.CircuitBreakerStats
	Reset()
}

// SeriesCacheMonitor is the Redis cache of daily bars.
type SeriesCacheMonitor interface {
	GetStats() cache.SeriesCacheStats
	Clear(ctx context.Context) error
}

// RedisPoolMonitor exposes Redis connection pool counters.
type RedisPoolMonitor interface {
	PoolStatus() database.RedisPoolStatus
}

type BreakerStatus struct {
	Name  string                       `json:"name"`
	State string                       `json:"state"`
	Stats services.CircuitBreakerStats `json:"stats"`
}

type StatsResponse struct {
	CircuitBreaker *BreakerStatus            `json:"circuit_breaker,omitempty"`
	SeriesCache    *cache.SeriesCacheStats   `json:"series_cache,omitempty"`
	RedisPool      *database.RedisPoolStatus `json:"redis_pool,omitempty"`
}

// StatsHandler reports runtime counters. Every collaborator is optional.
type StatsHandler struct {
	breaker     BreakerMonitor
	seriesCache SeriesCacheMonitor
	redisPool   RedisPoolMonitor
}

func NewStatsHandler(breaker BreakerMonitor, seriesCache SeriesCacheMonitor, redisPool RedisPoolMonitor) *StatsHandler {
	return &StatsHandler{breaker: breaker, seriesCache: seriesCache, redisPool: redisPool}
}

// GetStats handles GET /api/v1/stats.
func (h *StatsHandler) GetStats(c *gin.Context) {
	var resp StatsResponse
	if h.breaker != nil {
		resp.CircuitBreaker = &BreakerStatus{
			Name:  h.breaker.Name(),
			State: h.breaker.GetState().String(),
			Stats: h.breaker.GetStats(),
		}
	}
	if h.seriesCache != nil {
		stats := h.seriesCache.GetStats()
		resp.SeriesCache = &stats
	}
	if h.redisPool != nil {
		pool := h.redisPool.PoolStatus()
		resp.RedisPool = &pool
	}
	c.JSON(http.StatusOK, resp)
}

// ResetBreaker handles POST /api/v1/stats/breaker/reset.
func (h *StatsHandler) ResetBreaker(c *gin.Context) {
	if h.breaker == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_configured", Message: "circuit breaker not configured"})
		return
	}
	h.breaker.Reset()
	c.JSON(http.StatusOK, BreakerStatus{
		Name:  h.breaker.Name(),
		State: h.breaker.GetState().String(),
		Stats: h.breaker.GetStats(),
	})
}

// ClearSeriesCache handles DELETE /api/v1/stats/series-cache.
func (h *StatsHandler) ClearSeriesCache(c *gin.Context) {
	if h.seriesCache == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_configured", Message: "series cache not configured"})
		return
	}
	if err := h.seriesCache.Clear(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
