package indicators

// Default periods.
const (
	DefaultRSIPeriod  = 14
	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9
)

// RSI is Wilder's relative strength index. The initial average gain and
// loss are simple means of the first period changes; the first emitted
// value is the first smoothed one, at index period+1.
func RSI(values []float64, period int) Series {
	n := len(values)
	out := undefinedSeries(n)
	if period <= 0 || n < period+2 {
		return out
	}

	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	p := float64(period)
	avgGain := sum(gains[1:period+1]) / p
	avgLoss := sum(losses[1:period+1]) / p

	for i := period + 1; i < n; i++ {
		avgGain = (avgGain*(p-1) + gains[i]) / p
		avgLoss = (avgLoss*(p-1) + losses[i]) / p
		if avgLoss == 0 {
			out[i] = defined(100)
			continue
		}
		rs := avgGain / avgLoss
		out[i] = defined(100 - 100/(1+rs))
	}
	return out
}

// MACDResult holds the three MACD outputs, each aligned with the input.
type MACDResult struct {
	Line      Series `json:"line"`
	Signal    Series `json:"signal"`
	Histogram Series `json:"histogram"`
}

// MACD computes line = EMA(fast) - EMA(slow), signal = EMA(signal) of the
// line and histogram = line - signal. The signal is undefined for
// i < slow+signal-1.
func MACD(values []float64, fast, slow, signal int) MACDResult {
	n := len(values)
	res := MACDResult{
		Line:      undefinedSeries(n),
		Signal:    undefinedSeries(n),
		Histogram: undefinedSeries(n),
	}
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return res
	}

	fastEMA := EMA(values, fast)
	slowEMA := EMA(values, slow)
	for i := 0; i < n; i++ {
		if fastEMA[i].Valid && slowEMA[i].Valid {
			res.Line[i] = defined(fastEMA[i].Float - slowEMA[i].Float)
		}
	}

	sig := EMAFrom(res.Line, signal)
	warmup := slow + signal - 1
	for i := 0; i < n && i < warmup; i++ {
		sig[i] = Value{}
	}
	res.Signal = sig

	for i := 0; i < n; i++ {
		if res.Line[i].Valid && res.Signal[i].Valid {
			res.Histogram[i] = defined(res.Line[i].Float - res.Signal[i].Float)
		}
	}
	return res
}
