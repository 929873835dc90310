package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ronicTakouugang/stockz/internal/config"
	"github.com/ronicTakouugang/stockz/internal/models"
)

// YahooClient reads daily bars from the Yahoo Finance v8 chart endpoint.
type YahooClient struct {
	HTTPClient *http.Client
	BaseURL    string
	logger     *logrus.Logger
}

type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func NewYahooClient(cfg *config.MarketDataConfig, logger *logrus.Logger) *YahooClient {
	base := cfg.BaseURL
	if base == "" || strings.Contains(base, "finnhub") {
		base = "https://query1.finance.yahoo.com"
	}
	return &YahooClient{
		HTTPClient: newHTTPClient(config.Duration(cfg.Timeout, 15*time.Second)),
		BaseURL:    strings.TrimSuffix(base, "/"),
		logger:     logger,
	}
}

// FetchDailyBars drops bars where Yahoo reports any null field.
func (c *YahooClient) FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) (*models.PriceSeries, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("period1", strconv.FormatInt(from.Unix(), 10))
	params.Set("period2", strconv.FormatInt(to.Unix(), 10))

	var chart yahooChart
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.BaseURL, url.PathEscape(symbol), params.Encode())
	if err := getJSON(ctx, c.HTTPClient, c.logger, "yahoo", endpoint, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		if chart.Chart.Error.Code == "Not Found" {
			return nil, ErrSymbolNotFound
		}
		return nil, fmt.Errorf("yahoo error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return models.NewPriceSeries(symbol, models.RawSeries{})
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	n := len(result.Timestamp)
	fields := []struct {
		name   string
		values []*float64
	}{
		{"open", quote.Open}, {"high", quote.High}, {"low", quote.Low}, {"close", quote.Close}, {"volume", quote.Volume},
	}
	for _, f := range fields {
		if len(f.values) != n {
			return nil, &models.MalformedSeriesError{Field: f.name, Reason: "length does not match timestamp"}
		}
	}

	raw := models.RawSeries{}
	for i := 0; i < n; i++ {
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil ||
			quote.Close[i] == nil || quote.Volume[i] == nil {
			continue
		}
		raw.Timestamps = append(raw.Timestamps, result.Timestamp[i])
		raw.Open = append(raw.Open, *quote.Open[i])
		raw.High = append(raw.High, *quote.High[i])
		raw.Low = append(raw.Low, *quote.Low[i])
		raw.Close = append(raw.Close, *quote.Close[i])
		raw.Volume = append(raw.Volume, *quote.Volume[i])
	}
	return models.NewPriceSeries(symbol, raw)
}
