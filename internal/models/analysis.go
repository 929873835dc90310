package models

import (
	"encoding/json"
	"time"
)

// Signal values accepted from the reasoning collaborator.
const (
	SignalBuy  = "BUY"
	SignalSell = "SELL"
	SignalHold = "HOLD"
)

// Risk levels accepted from the reasoning collaborator.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// Market regimes derived from price and moving averages.
const (
	RegimeTrendingUp   = "Trending Up"
	RegimeTrendingDown = "Trending Down"
	RegimeSideways     = "Sideways"
	RegimeVolatile     = "Volatile"
	RegimeUnknown      = "Unknown"
)

// FeatureBundle is the snapshot of computed values sent to the reasoning
// collaborator. Nil pointers mean the value is undefined for this history.
type FeatureBundle struct {
	Symbol         string           `json:"symbol"`
	AsOf           string           `json:"as_of"`
	CurrentPrice   float64          `json:"current_price"`
	Volume         float64          `json:"volume"`
	SMA20          *float64         `json:"sma20"`
	SMA50          *float64         `json:"sma50"`
	EMA20          *float64         `json:"ema20"`
	RSI14          *float64         `json:"rsi14"`
	MACD           *float64         `json:"macd"`
	MACDSignal     *float64         `json:"macd_signal"`
	MACDHistogram  *float64         `json:"macd_histogram"`
	BBUpper        *float64         `json:"bb_upper"`
	BBMiddle       *float64         `json:"bb_middle"`
	BBLower        *float64         `json:"bb_lower"`
	ATR14          *float64         `json:"atr14"`
	OBV            *float64         `json:"obv"`
	Benchmark      string           `json:"benchmark"`
	Correlation    *float64         `json:"correlation_with_benchmark"`
	RecentCloses   []float64        `json:"recent_closes"`
	MarketRegime   string           `json:"market_regime"`
	Backtest       *BacktestSummary `json:"backtest,omitempty"`
	Forecast       json.RawMessage  `json:"forecast,omitempty"`
	Sentiment      json.RawMessage  `json:"sentiment,omitempty"`
}

// UpstreamSignals are optional forecast and sentiment payloads produced by
// an external model service. They are merged into the bundle unchanged.
type UpstreamSignals struct {
	Forecast  json.RawMessage
	Sentiment json.RawMessage
}

// Decision is the validated classification returned by the reasoning collaborator.
type Decision struct {
	Signal            string   `json:"signal" validate:"required,oneof=BUY SELL HOLD"`
	Confidence        *float64 `json:"confidence" validate:"required,gte=0,lte=100"`
	RiskLevel         string   `json:"riskLevel" validate:"required,oneof=Low Medium High"`
	ExpectedReturnPct *float64 `json:"expectedReturnPct" validate:"required"`
	MarketRegime      string   `json:"marketRegime" validate:"required"`
	Reasoning         string   `json:"reasoning" validate:"required"`
	Timeframe         string   `json:"timeframe,omitempty"`
}

// HistoryWindow is the trailing chart data returned alongside an analysis.
type HistoryWindow struct {
	Timestamps []int64    `json:"timestamps"`
	Open       []float64  `json:"open"`
	High       []float64  `json:"high"`
	Low        []float64  `json:"low"`
	Close      []float64  `json:"close"`
	Volume     []float64  `json:"volume"`
	SMA20      []*float64 `json:"sma20"`
	SMA50      []*float64 `json:"sma50"`
	EMA20      []*float64 `json:"ema20"`
	RSI14      []*float64 `json:"rsi14"`
	MACD       []*float64 `json:"macd"`
	MACDSignal []*float64 `json:"macd_signal"`
	BBUpper    []*float64 `json:"bb_upper"`
	BBLower    []*float64 `json:"bb_lower"`
	ATR14      []*float64 `json:"atr14"`
}

// AnalysisResult is the value object returned by one analysis request.
type AnalysisResult struct {
	ID          string          `json:"id"`
	Symbol      string          `json:"symbol"`
	HorizonDays int             `json:"horizon_days"`
	Features    *FeatureBundle  `json:"features"`
	Decision    *Decision       `json:"decision"`
	Backtest    *BacktestResult `json:"backtest"`
	Correlation *float64        `json:"correlation"`
	History     *HistoryWindow  `json:"history"`
	Unavailable []string        `json:"unavailable,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
}
