package indicators

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
)

// sum adds values in order. RSI and ATR seed their Wilder averages with it.
func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

func validPeriod(period, n int) bool {
	return period > 0 && period <= n
}

// SMA is the simple moving average. It is undefined for i < period-1.
func SMA(values []float64, period int) Series {
	if !validPeriod(period, len(values)) {
		return undefinedSeries(len(values))
	}
	sma := trend.NewSmaWithPeriod[float64](period)
	return alignRight(len(values), helper.ChanToSlice(sma.Compute(helper.SliceToChan(values))))
}

// EMA is the exponential moving average seeded with the SMA of the first
// period values at index period-1.
func EMA(values []float64, period int) Series {
	// The library reads a zero seed from a short input instead of emitting nothing.
	if !validPeriod(period, len(values)) {
		return undefinedSeries(len(values))
	}
	ema := trend.NewEmaWithPeriod[float64](period)
	return alignRight(len(values), helper.ChanToSlice(ema.Compute(helper.SliceToChan(values))))
}

// EMAFrom restarts an EMA over the defined values of a derived series and
// maps the result back onto the series' own positions.
func EMAFrom(s Series, period int) Series {
	idx := Compact(s)
	return idx.Scatter(EMA(idx.Values, period))
}
