package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronicTakouugang/stockz/internal/models"
)

func TestCorrelation_Self(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		values[i] = 100 + 5*math.Sin(float64(i))
	}
	corr, err := Correlation(values, values, 30)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, corr, 1e-12)
}

func TestCorrelation_Inverse(t *testing.T) {
	a := make([]float64, 30)
	b := make([]float64, 30)
	for i := range a {
		a[i] = float64(i)
		b[i] = float64(-2 * i)
	}
	corr, err := Correlation(a, b, 30)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, corr, 1e-12)
}

func TestCorrelation_Bounded(t *testing.T) {
	a := make([]float64, 60)
	b := make([]float64, 45)
	for i := range a {
		a[i] = math.Cos(float64(i) * 0.7)
	}
	for i := range b {
		b[i] = float64(i%5) * 1.3
	}
	corr, err := Correlation(a, b, 30)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, corr, -1.0)
	assert.LessOrEqual(t, corr, 1.0)
}

func TestCorrelation_ZeroVariance(t *testing.T) {
	flat := make([]float64, 30)
	moving := make([]float64, 30)
	for i := range flat {
		flat[i] = 42
		moving[i] = float64(i)
	}
	corr, err := Correlation(flat, moving, 30)
	require.NoError(t, err)
	assert.Equal(t, 0.0, corr)
}

func TestCorrelation_EndAligned(t *testing.T) {
	// Only the trailing window matters; the leading noise is ignored.
	asset := append([]float64{500, -3, 77}, seq(30)...)
	bench := seq(30)
	corr, err := Correlation(asset, bench, 30)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, corr, 1e-12)
}

func TestCorrelation_InsufficientHistory(t *testing.T) {
	_, err := Correlation(seq(29), seq(40), 30)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInsufficientHistory)
}

func seq(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}
