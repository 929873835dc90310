package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/shopspring/decimal"

	"github.com/ronicTakouugang/stockz/internal/models"
)

// promptDecimals is the precision used when numbers are written into prompts.
const promptDecimals = 4

var promptTemplate = template.Must(template.New("analysis").Funcs(template.FuncMap{
	"num":  formatNumber,
	"fnum": formatFloat,
}).Parse(`You are an expert quantitative analyst.
Analyze the technical indicators below for {{.Features.Symbol}} and provide a market prediction for the next {{.HorizonDays}} days.

Technical data (as of {{.Features.AsOf}}):
Current price: {{fnum .Features.CurrentPrice}}
Volume: {{fnum .Features.Volume}}
SMA 20: {{num .Features.SMA20}}, SMA 50: {{num .Features.SMA50}}, EMA 20: {{num .Features.EMA20}}
RSI (14): {{num .Features.RSI14}}
MACD: {{num .Features.MACD}}, Signal: {{num .Features.MACDSignal}}, Histogram: {{num .Features.MACDHistogram}}
Bollinger bands: upper {{num .Features.BBUpper}}, middle {{num .Features.BBMiddle}}, lower {{num .Features.BBLower}}
ATR (14): {{num .Features.ATR14}}
OBV: {{num .Features.OBV}}
Correlation with {{.Features.Benchmark}} (30d): {{num .Features.Correlation}}
Market regime hint: {{.Features.MarketRegime}}
{{- with .Features.Backtest}}

Backtest of the SMA crossover strategy:
- Total return: {{fnum .TotalReturnPct}}%
- Sharpe ratio: {{fnum .SharpeRatio}}
- Win rate: {{fnum .WinRatePct}}%
- Max drawdown: {{fnum .MaxDrawdownPct}}%
{{- end}}

Full feature bundle:
{{.BundleJSON}}

Respond with a single JSON object and nothing else:
{
  "signal": "BUY" | "SELL" | "HOLD",
  "confidence": number (0-100),
  "riskLevel": "Low" | "Medium" | "High",
  "expectedReturnPct": number (percentage for the next {{.HorizonDays}} days),
  "marketRegime": "Trending Up" | "Trending Down" | "Sideways" | "Volatile",
  "reasoning": "brief explanation",
  "timeframe": "{{.HorizonDays}}D"
}`))

// BuildPrompt renders the reasoning request for a feature bundle.
func BuildPrompt(bundle *models.FeatureBundle, horizonDays int) (string, error) {
	raw, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode feature bundle: %w", err)
	}

	var buf bytes.Buffer
	err = promptTemplate.Execute(&buf, struct {
		Features    *models.FeatureBundle
		HorizonDays int
		BundleJSON  string
	}{bundle, horizonDays, string(raw)})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}

func formatNumber(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	return decimal.NewFromFloat(v).Round(promptDecimals).String()
}
