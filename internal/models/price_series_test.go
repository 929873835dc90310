package models

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawFixture() RawSeries {
	return RawSeries{
		Timestamps: []int64{1704067200, 1704153600, 1704240000},
		Open:       []float64{10, 11, 12},
		High:       []float64{11, 12, 13},
		Low:        []float64{9, 10, 11},
		Close:      []float64{10.5, 11.5, 12.5},
		Volume:     []float64{1000, 1100, 1200},
	}
}

func TestNewPriceSeries_Valid(t *testing.T) {
	s, err := NewPriceSeries("AAPL", rawFixture())
	require.NoError(t, err)

	assert.Equal(t, "AAPL", s.Symbol())
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []float64{10.5, 11.5, 12.5}, s.Closes())
	assert.Equal(t, "2024-01-02", s.DateKey(1))

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 12.5, last.Close)
	assert.Equal(t, float64(1200), last.Volume)
}

func TestNewPriceSeries_Empty(t *testing.T) {
	s, err := NewPriceSeries("AAPL", RawSeries{})
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())

	_, ok := s.Last()
	assert.False(t, ok)
}

func TestNewPriceSeries_LengthMismatch(t *testing.T) {
	raw := rawFixture()
	raw.Volume = raw.Volume[:2]

	_, err := NewPriceSeries("AAPL", raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedSeries))

	var mErr *MalformedSeriesError
	require.True(t, errors.As(err, &mErr))
	assert.Equal(t, "volume", mErr.Field)
}

func TestNewPriceSeries_NonIncreasingTimestamps(t *testing.T) {
	raw := rawFixture()
	raw.Timestamps[2] = raw.Timestamps[1]

	_, err := NewPriceSeries("AAPL", raw)
	var mErr *MalformedSeriesError
	require.True(t, errors.As(err, &mErr))
	assert.Equal(t, "timestamp", mErr.Field)
}

func TestNewPriceSeries_NonFinite(t *testing.T) {
	raw := rawFixture()
	raw.Close[1] = math.NaN()

	_, err := NewPriceSeries("AAPL", raw)
	var mErr *MalformedSeriesError
	require.True(t, errors.As(err, &mErr))
	assert.Equal(t, "close", mErr.Field)
}

func TestNewPriceSeries_KeepsVendorBarsAsReported(t *testing.T) {
	raw := rawFixture()
	raw.High[1], raw.Low[1] = raw.Low[1], raw.High[1]

	s, err := NewPriceSeries("AAPL", raw)
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 10, 13}, s.Highs())
	assert.Equal(t, []float64{9, 12, 11}, s.Lows())
}

func TestPriceSeries_AccessorsReturnCopies(t *testing.T) {
	raw := rawFixture()
	s, err := NewPriceSeries("AAPL", raw)
	require.NoError(t, err)

	raw.Close[0] = 999
	closes := s.Closes()
	closes[1] = 999

	assert.Equal(t, []float64{10.5, 11.5, 12.5}, s.Closes())
}

func TestInsufficientHistoryError(t *testing.T) {
	err := &InsufficientHistoryError{What: "backtest", Need: 51, Have: 10}
	assert.True(t, errors.Is(err, ErrInsufficientHistory))
	assert.Contains(t, err.Error(), "need 51")
	assert.False(t, IsUpstreamFailure(err))
	assert.True(t, IsUpstreamFailure(ErrInvalidDecisionPayload))
}

func TestBacktestResult_TransitionCounts(t *testing.T) {
	r := &BacktestResult{Transitions: []Transition{
		{From: PositionFlat, To: PositionLong},
		{From: PositionLong, To: PositionFlat},
		{From: PositionFlat, To: PositionLong},
	}}
	assert.Equal(t, 2, r.Entries())
	assert.Equal(t, 1, r.Exits())
}
