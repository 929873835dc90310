package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ronicTakouugang/stockz/internal/models"
)

// seriesFromCloses builds daily bars starting 2024-01-01 UTC.
func seriesFromCloses(t *testing.T, symbol string, closes []float64) *models.PriceSeries {
	t.Helper()
	raw := models.RawSeries{}
	for i, c := range closes {
		raw.Timestamps = append(raw.Timestamps, int64(1704067200+i*86400))
		raw.Open = append(raw.Open, c)
		raw.High = append(raw.High, c*1.01)
		raw.Low = append(raw.Low, c*0.99)
		raw.Close = append(raw.Close, c)
		raw.Volume = append(raw.Volume, 1_000_000)
	}
	s, err := models.NewPriceSeries(symbol, raw)
	require.NoError(t, err)
	return s
}

func rampCloses(from, to float64) []float64 {
	var out []float64
	for v := from; v <= to; v++ {
		out = append(out, v)
	}
	return out
}
