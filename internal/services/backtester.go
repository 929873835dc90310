package services

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/ronicTakouugang/stockz/internal/indicators"
	"github.com/ronicTakouugang/stockz/internal/models"
)

// TradingDaysPerYear annualizes daily metrics.
const TradingDaysPerYear = 252

// BacktestOptions configures the crossover simulation.
type BacktestOptions struct {
	ShortWindow int
	LongWindow  int
	// TransactionCostPct is charged on the day after each position change.
	// Zero keeps the simulation cost-free.
	TransactionCostPct float64
}

// DefaultBacktestOptions is the SMA20/SMA50 cost-free setup.
func DefaultBacktestOptions() BacktestOptions {
	return BacktestOptions{ShortWindow: 20, LongWindow: 50}
}

// Backtester simulates a dual moving-average crossover strategy.
type Backtester struct {
	opts   BacktestOptions
	logger *logrus.Logger
}

// NewBacktester creates a backtester, falling back to defaults for unset windows.
func NewBacktester(opts BacktestOptions, logger *logrus.Logger) *Backtester {
	def := DefaultBacktestOptions()
	if opts.ShortWindow <= 0 {
		opts.ShortWindow = def.ShortWindow
	}
	if opts.LongWindow <= opts.ShortWindow {
		opts.LongWindow = def.LongWindow
	}
	if opts.TransactionCostPct < 0 {
		opts.TransactionCostPct = 0
	}
	return &Backtester{opts: opts, logger: logger}
}

// MinBars is the number of bars needed for one simulated day.
func (b *Backtester) MinBars() int {
	return b.opts.LongWindow + 1
}

// Run simulates the strategy over the whole series.
func (b *Backtester) Run(series *models.PriceSeries) (*models.BacktestResult, error) {
	n := series.Len()
	if n < b.MinBars() {
		return nil, &models.InsufficientHistoryError{What: "backtest", Need: b.MinBars(), Have: n}
	}

	closes := series.Closes()
	short := indicators.SMA(closes, b.opts.ShortWindow)
	long := indicators.SMA(closes, b.opts.LongWindow)

	result := &models.BacktestResult{
		Symbol:      series.Symbol(),
		ShortWindow: b.opts.ShortWindow,
		LongWindow:  b.opts.LongWindow,
		Transitions: []models.Transition{},
	}

	// states[i] is the position held after the close of bar i.
	states := make([]models.PositionState, n)
	state := models.PositionFlat
	prevAbove := false
	for i := 0; i < n; i++ {
		above := short[i].Valid && long[i].Valid && short[i].Float > long[i].Float
		switch {
		case state == models.PositionFlat && !prevAbove && above:
			result.Transitions = append(result.Transitions, models.Transition{
				Date: series.DateKey(i), From: models.PositionFlat, To: models.PositionLong,
			})
			state = models.PositionLong
		case state == models.PositionLong && prevAbove && !above:
			result.Transitions = append(result.Transitions, models.Transition{
				Date: series.DateKey(i), From: models.PositionLong, To: models.PositionFlat,
			})
			state = models.PositionFlat
		}
		states[i] = state
		prevAbove = above
	}

	start := b.opts.LongWindow - 1
	cost := b.opts.TransactionCostPct / 100
	marketEquity, strategyEquity, peak := 1.0, 1.0, 1.0
	maxDrawdown := 0.0
	wins := 0
	daily := make([]float64, 0, n-start-1)

	result.EquityCurve = append(result.EquityCurve, models.EquityPoint{Date: series.DateKey(start)})
	for t := start + 1; t < n; t++ {
		marketReturn := 0.0
		if closes[t-1] != 0 {
			marketReturn = closes[t]/closes[t-1] - 1
		}

		strategyReturn := 0.0
		if states[t-1] == models.PositionLong {
			strategyReturn = marketReturn
		}
		if cost > 0 && changedAt(states, t-1) {
			strategyReturn -= cost
		}
		if states[t-1] == models.PositionLong {
			result.LongDays++
			if strategyReturn > 0 {
				wins++
			}
		}
		daily = append(daily, strategyReturn)

		marketEquity *= 1 + marketReturn
		strategyEquity *= 1 + strategyReturn
		if strategyEquity > peak {
			peak = strategyEquity
		}
		if peak > 0 {
			if dd := (peak - strategyEquity) / peak; dd > maxDrawdown {
				maxDrawdown = dd
			}
		}

		result.EquityCurve = append(result.EquityCurve, models.EquityPoint{
			Date:                 series.DateKey(t),
			MarketCumReturnPct:   (marketEquity - 1) * 100,
			StrategyCumReturnPct: (strategyEquity - 1) * 100,
		})
	}

	days := len(daily)
	result.SimulatedDays = days
	result.TotalReturnPct = (strategyEquity - 1) * 100
	result.MarketReturnPct = (marketEquity - 1) * 100
	result.AnnualizedReturnPct = annualize(strategyEquity, days) * 100
	result.MaxDrawdownPct = maxDrawdown * 100
	if sd := sampleStdDev(daily); sd > 0 {
		result.SharpeRatio = mean(daily) / sd * math.Sqrt(TradingDaysPerYear)
	}
	if result.LongDays > 0 {
		result.WinRatePct = float64(wins) / float64(result.LongDays) * 100
	}

	if b.logger != nil {
		b.logger.WithFields(logrus.Fields{
			"symbol":       result.Symbol,
			"days":         days,
			"transitions":  len(result.Transitions),
			"total_return": result.TotalReturnPct,
		}).Debug("Backtest completed")
	}
	return result, nil
}

// changedAt reports whether the position changed on bar i.
func changedAt(states []models.PositionState, i int) bool {
	prev := models.PositionFlat
	if i > 0 {
		prev = states[i-1]
	}
	return states[i] != prev
}

func annualize(equity float64, days int) float64 {
	if days <= 0 {
		return 0
	}
	if equity <= 0 {
		return -1
	}
	return math.Pow(equity, float64(TradingDaysPerYear)/float64(days)) - 1
}
