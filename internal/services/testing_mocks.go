package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ronicTakouugang/stockz/internal/models"
)

// MockPriceSource implements PriceSource for testing within the services package
type MockPriceSource struct {
	mock.Mock
}

func (m *MockPriceSource) FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) (*models.PriceSeries, error) {
	args := m.Called(ctx, symbol, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PriceSeries), args.Error(1)
}

// MockReasoner implements Reasoner for testing
type MockReasoner struct {
	mock.Mock
}

func (m *MockReasoner) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockUpstreamSignalSource implements UpstreamSignalSource for testing
type MockUpstreamSignalSource struct {
	mock.Mock
}

func (m *MockUpstreamSignalSource) FetchSignals(ctx context.Context, symbol string, horizonDays int) (*models.UpstreamSignals, error) {
	args := m.Called(ctx, symbol, horizonDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UpstreamSignals), args.Error(1)
}

// MockQuotaStore implements QuotaStore for testing
type MockQuotaStore struct {
	mock.Mock
}

func (m *MockQuotaStore) GetCount(ctx context.Context, userID, dateKey string) (int, error) {
	args := m.Called(ctx, userID, dateKey)
	return args.Int(0), args.Error(1)
}

func (m *MockQuotaStore) Increment(ctx context.Context, userID, dateKey string) error {
	args := m.Called(ctx, userID, dateKey)
	return args.Error(0)
}
