package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ronicTakouugang/stockz/internal/cache"
	"github.com/ronicTakouugang/stockz/internal/models"
	"github.com/ronicTakouugang/stockz/internal/services"
)

type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Analyze(ctx context.Context, symbol string, horizonDays int, userID string) (*models.AnalysisResult, error) {
	args := m.Called(ctx, symbol, horizonDays, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalysisResult), args.Error(1)
}

func (m *MockAnalysisService) RunBacktest(ctx context.Context, symbol string) (*models.BacktestResult, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BacktestResult), args.Error(1)
}

func (m *MockAnalysisService) Indicators(ctx context.Context, symbol string, limit int) (*models.HistoryWindow, error) {
	args := m.Called(ctx, symbol, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HistoryWindow), args.Error(1)
}

func (m *MockAnalysisService) QuotaStatus(ctx context.Context, userID string) (*models.QuotaStatus, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuotaStatus), args.Error(1)
}

type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockBreaker struct {
	mock.Mock
}

func (m *MockBreaker) Name() string {
	return m.Called().String(0)
}

func (m *MockBreaker) GetState() services.CircuitBreakerState {
	return m.Called().Get(0).(services.CircuitBreakerState)
}

func (m *MockBreaker) GetStats() services.CircuitBreakerStats {
	return m.Called().Get(0).(services.CircuitBreakerStats)
}

func (m *MockBreaker) Reset() {
	m.Called()
}

type MockSeriesCache struct {
	mock.Mock
}

func (m *MockSeriesCache) GetStats() cache.SeriesCacheStats {
	return m.Called().Get(0).(cache.SeriesCacheStats)
}

func (m *MockSeriesCache) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
