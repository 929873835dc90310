package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ronicTakouugang/stockz/internal/cache"
	"github.com/ronicTakouugang/stockz/internal/database"
	"github.com/ronicTakouugang/stockz/internal/services"
)

type fixedPool struct{}

func (fixedPool) PoolStatus() database.RedisPoolStatus {
	return database.RedisPoolStatus{Hits: 7, TotalConns: 2, IdleConns: 1}
}

func statsRouter(h *StatsHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/stats", h.GetStats)
	router.POST("/stats/breaker/reset", h.ResetBreaker)
	router.DELETE("/stats/series-cache", h.ClearSeriesCache)
	return router
}

func TestStatsHandler_GetStats(t *testing.T) {
	breaker := &MockBreaker{}
	breaker.On("Name").Return("reasoner")
	breaker.On("GetState").Return(services.Open)
	breaker.On("GetStats").Return(services.CircuitBreakerStats{
		TotalRequests:    4,
		FailedRequests:   3,
		RejectedRequests: 1,
		LastFailureTime:  time.Date(2024, 6, 28, 21, 0, 0, 0, time.UTC),
	})
	seriesCache := &MockSeriesCache{}
	seriesCache.On("GetStats").Return(cache.SeriesCacheStats{Hits: 10, Misses: 2, Sets: 2})

	w := httptest.NewRecorder()
	statsRouter(NewStatsHandler(breaker, seriesCache, fixedPool{})).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.CircuitBreaker)
	assert.Equal(t, "reasoner", body.CircuitBreaker.Name)
	assert.Equal(t, "open", body.CircuitBreaker.State)
	assert.Equal(t, int64(3), body.CircuitBreaker.Stats.FailedRequests)
	require.NotNil(t, body.SeriesCache)
	assert.Equal(t, int64(10), body.SeriesCache.Hits)
	require.NotNil(t, body.RedisPool)
	assert.Equal(t, uint32(2), body.RedisPool.TotalConns)
}

func TestStatsHandler_GetStats_NothingConfigured(t *testing.T) {
	w := httptest.NewRecorder()
	statsRouter(NewStatsHandler(nil, nil, nil)).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())
}

func TestStatsHandler_ResetBreaker(t *testing.T) {
	breaker := &MockBreaker{}
	breaker.On("Reset").Return().Once()
	breaker.On("Name").Return("reasoner")
	breaker.On("GetState").Return(services.Closed)
	breaker.On("GetStats").Return(services.CircuitBreakerStats{})

	w := httptest.NewRecorder()
	statsRouter(NewStatsHandler(breaker, nil, nil)).
		ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/stats/breaker/reset", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"closed"`)
	breaker.AssertCalled(t, "Reset")

	w = httptest.NewRecorder()
	statsRouter(NewStatsHandler(nil, nil, nil)).
		ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/stats/breaker/reset", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatsHandler_ClearSeriesCache(t *testing.T) {
	tests := []struct {
		name     string
		cache    func() *MockSeriesCache
		wantCode int
	}{
		{"cleared", func() *MockSeriesCache {
			m := &MockSeriesCache{}
			m.On("Clear", mock.Anything).Return(nil)
			return m
		}, http.StatusNoContent},
		{"redis failure", func() *MockSeriesCache {
			m := &MockSeriesCache{}
			m.On("Clear", mock.Anything).Return(errors.New("connection refused"))
			return m
		}, http.StatusInternalServerError},
		{"not configured", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h *StatsHandler
			if tt.cache == nil {
				h = NewStatsHandler(nil, nil, nil)
			} else {
				h = NewStatsHandler(nil, tt.cache(), nil)
			}
			w := httptest.NewRecorder()
			statsRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/stats/series-cache", nil))
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}
