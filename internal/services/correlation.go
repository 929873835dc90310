package services

import "github.com/ronicTakouugang/stockz/internal/models"

// DefaultCorrelationWindow is the number of trailing closes compared.
const DefaultCorrelationWindow = 30

// Correlation returns the Pearson coefficient of the last window values of
// asset and benchmark, aligned at their ends. A flat window yields 0.
func Correlation(asset, benchmark []float64, window int) (float64, error) {
	if window <= 0 {
		window = DefaultCorrelationWindow
	}
	have := len(asset)
	if len(benchmark) < have {
		have = len(benchmark)
	}
	if have < window {
		return 0, &models.InsufficientHistoryError{What: "correlation", Need: window, Have: have}
	}
	return pearson(asset[len(asset)-window:], benchmark[len(benchmark)-window:]), nil
}
