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

// FinnhubClient reads daily candles from the Finnhub REST API.
type FinnhubClient struct {
	HTTPClient *http.Client
	BaseURL    string
	apiKey     string
	logger     *logrus.Logger
}

// finnhubCandles is the /stock/candle payload: parallel arrays plus a status.
type finnhubCandles struct {
	Status     string    `json:"s"`
	Open       []float64 `json:"o"`
	High       []float64 `json:"h"`
	Low        []float64 `json:"l"`
	Close      []float64 `json:"c"`
	Volume     []float64 `json:"v"`
	Timestamps []int64   `json:"t"`
}

func NewFinnhubClient(cfg *config.MarketDataConfig, logger *logrus.Logger) *FinnhubClient {
	return &FinnhubClient{
		HTTPClient: newHTTPClient(config.Duration(cfg.Timeout, 15*time.Second)),
		BaseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		logger:     logger,
	}
}

// FetchDailyBars returns an empty series when Finnhub reports no_data.
func (c *FinnhubClient) FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) (*models.PriceSeries, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("resolution", "D")
	params.Set("from", strconv.FormatInt(from.Unix(), 10))
	params.Set("to", strconv.FormatInt(to.Unix(), 10))
	params.Set("token", c.apiKey)

	var candles finnhubCandles
	if err := getJSON(ctx, c.HTTPClient, c.logger, "finnhub", c.BaseURL+"/stock/candle?"+params.Encode(), &candles); err != nil {
		return nil, err
	}

	switch candles.Status {
	case "ok":
	case "no_data":
		return models.NewPriceSeries(symbol, models.RawSeries{})
	default:
		return nil, fmt.Errorf("finnhub returned status %q for %s", candles.Status, symbol)
	}

	return models.NewPriceSeries(symbol, models.RawSeries{
		Timestamps: candles.Timestamps,
		Open:       candles.Open,
		High:       candles.High,
		Low:        candles.Low,
		Close:      candles.Close,
		Volume:     candles.Volume,
	})
}
