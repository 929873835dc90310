package indicators

import (
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/volatility"
)

const (
	DefaultBollingerPeriod     = 20
	DefaultBollingerMultiplier = 2.0
	DefaultATRPeriod           = 14
)

// Bands holds Bollinger upper, middle and lower bands.
type Bands struct {
	Upper  Series `json:"upper"`
	Middle Series `json:"middle"`
	Lower  Series `json:"lower"`
}

// Bollinger computes bands around SMA(period) using the population standard
// deviation of the same window.
func Bollinger(values []float64, period int, multiplier float64) Bands {
	n := len(values)
	b := Bands{
		Upper:  undefinedSeries(n),
		Middle: SMA(values, period),
		Lower:  undefinedSeries(n),
	}
	if !validPeriod(period, n) {
		return b
	}

	std := volatility.NewMovingStdWithPeriod[float64](period)
	sd := alignRight(n, helper.ChanToSlice(std.Compute(helper.SliceToChan(values))))
	for i, mid := range b.Middle {
		if !mid.Valid || !sd[i].Valid {
			continue
		}
		b.Upper[i] = defined(mid.Float + multiplier*sd[i].Float)
		b.Lower[i] = defined(mid.Float - multiplier*sd[i].Float)
	}
	return b
}

// TrueRange returns the true range of every bar. TR[0] is high[0]-low[0].
func TrueRange(high, low, close []float64) []float64 {
	n := len(close)
	if len(high) < n || len(low) < n {
		return nil
	}
	tr := make([]float64, n)
	for i := 0; i < n; i++ {
		hl := high[i] - low[i]
		if i == 0 {
			tr[i] = hl
			continue
		}
		hc := math.Abs(high[i] - close[i-1])
		lc := math.Abs(low[i] - close[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return tr
}

// ATR is the average true range with Wilder smoothing, seeded at
// period-1 with the mean of the first period true ranges.
func ATR(high, low, close []float64, period int) Series {
	n := len(close)
	out := undefinedSeries(n)
	tr := TrueRange(high, low, close)
	if tr == nil || !validPeriod(period, n) {
		return out
	}

	p := float64(period)
	atr := sum(tr[:period]) / p
	out[period-1] = defined(atr)
	for i := period; i < n; i++ {
		atr = (atr*(p-1) + tr[i]) / p
		out[i] = defined(atr)
	}
	return out
}
