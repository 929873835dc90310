package indicators

import (
	"math"

	"github.com/ronicTakouugang/stockz/internal/models"
)

// Periods used by Compute.
const (
	ShortSMAPeriod = 20
	LongSMAPeriod  = 50
	EMAPeriod      = 20
)

// Set is every indicator the analysis needs for one series.
type Set struct {
	SMA20     Series     `json:"sma20"`
	SMA50     Series     `json:"sma50"`
	EMA20     Series     `json:"ema20"`
	RSI14     Series     `json:"rsi14"`
	MACD      MACDResult `json:"macd"`
	Bollinger Bands      `json:"bollinger"`
	ATR14     Series     `json:"atr14"`
	OBV       Series     `json:"obv"`
}

// Compute runs all indicators at their default periods.
func Compute(s *models.PriceSeries) Set {
	closes := s.Closes()
	return Set{
		SMA20:     SMA(closes, ShortSMAPeriod),
		SMA50:     SMA(closes, LongSMAPeriod),
		EMA20:     EMA(closes, EMAPeriod),
		RSI14:     RSI(closes, DefaultRSIPeriod),
		MACD:      MACD(closes, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal),
		Bollinger: Bollinger(closes, DefaultBollingerPeriod, DefaultBollingerMultiplier),
		ATR14:     ATR(s.Highs(), s.Lows(), closes, DefaultATRPeriod),
		OBV:       OBV(closes, s.Volumes()),
	}
}

// Regime classifies the latest bar from price and the 20/50 moving averages.
func (set Set) Regime(price float64) string {
	short, long := set.SMA20.Last(), set.SMA50.Last()
	if !short.Valid || !long.Valid {
		return models.RegimeUnknown
	}
	switch {
	case price > short.Float && short.Float > long.Float:
		return models.RegimeTrendingUp
	case price < short.Float && short.Float < long.Float:
		return models.RegimeTrendingDown
	}
	denom := long.Float
	if denom == 0 {
		denom = 1
	}
	if math.Abs(short.Float-long.Float)/denom < 0.02 {
		return models.RegimeSideways
	}
	return models.RegimeVolatile
}
