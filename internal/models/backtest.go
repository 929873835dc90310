package models

// PositionState is the crossover strategy state for one bar.
type PositionState string

const (
	PositionFlat PositionState = "FLAT"
	PositionLong PositionState = "LONG"
)

// EquityPoint is one day of the market and strategy cumulative return curves.
type EquityPoint struct {
	Date                 string  `json:"date"`
	MarketCumReturnPct   float64 `json:"market_cum_return_pct"`
	StrategyCumReturnPct float64 `json:"strategy_cum_return_pct"`
}

// Transition records a state change of the crossover strategy.
type Transition struct {
	Date string        `json:"date"`
	From PositionState `json:"from"`
	To   PositionState `json:"to"`
}

// BacktestResult holds the metrics of one crossover simulation.
type BacktestResult struct {
	Symbol              string        `json:"symbol"`
	ShortWindow         int           `json:"short_window"`
	LongWindow          int           `json:"long_window"`
	TotalReturnPct      float64       `json:"total_return_pct"`
	MarketReturnPct     float64       `json:"market_return_pct"`
	AnnualizedReturnPct float64       `json:"annualized_return_pct"`
	SharpeRatio         float64       `json:"sharpe_ratio"`
	WinRatePct          float64       `json:"win_rate_pct"`
	MaxDrawdownPct      float64       `json:"max_drawdown_pct"`
	SimulatedDays       int           `json:"simulated_days"`
	LongDays            int           `json:"long_days"`
	Transitions         []Transition  `json:"transitions"`
	EquityCurve         []EquityPoint `json:"equity_curve"`
}

// Entries counts FLAT to LONG transitions.
func (r *BacktestResult) Entries() int {
	return r.countTransitions(PositionFlat, PositionLong)
}

// Exits counts LONG to FLAT transitions.
func (r *BacktestResult) Exits() int {
	return r.countTransitions(PositionLong, PositionFlat)
}

func (r *BacktestResult) countTransitions(from, to PositionState) int {
	n := 0
	for _, t := range r.Transitions {
		if t.From == from && t.To == to {
			n++
		}
	}
	return n
}

// BacktestSummary is the part of a backtest handed to the reasoning collaborator.
type BacktestSummary struct {
	TotalReturnPct float64 `json:"total_return_pct"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	WinRatePct     float64 `json:"win_rate_pct"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
}

// Summary projects the headline metrics.
func (r *BacktestResult) Summary() *BacktestSummary {
	return &BacktestSummary{
		TotalReturnPct: r.TotalReturnPct,
		SharpeRatio:    r.SharpeRatio,
		WinRatePct:     r.WinRatePct,
		MaxDrawdownPct: r.MaxDrawdownPct,
	}
}
