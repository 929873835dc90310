// Package forecast talks to the optional model service that produces price
// forecasts and news sentiment for a symbol.
package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ronicTakouugang/stockz/internal/config"
	"github.com/ronicTakouugang/stockz/internal/models"
)

// Client calls /predict/{symbol} and /sentiment/{symbol}. Payloads are kept
// as raw JSON.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	logger     *logrus.Logger
}

func NewClient(cfg *config.ForecastConfig, logger *logrus.Logger) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: config.Duration(cfg.Timeout, 20*time.Second)},
		BaseURL:    strings.TrimSuffix(cfg.ServiceURL, "/"),
		logger:     logger,
	}
}

// Predict fetches the price forecast for the next days.
func (c *Client) Predict(ctx context.Context, symbol string, days int) (json.RawMessage, error) {
	path := fmt.Sprintf("/predict/%s?days=%s", url.PathEscape(symbol), strconv.Itoa(days))
	return c.get(ctx, path)
}

// Sentiment fetches the news sentiment summary.
func (c *Client) Sentiment(ctx context.Context, symbol string) (json.RawMessage, error) {
	return c.get(ctx, "/sentiment/"+url.PathEscape(symbol))
}

// FetchSignals gathers both payloads. A failing half is logged and left
// empty; an error is returned only when neither is available.
func (c *Client) FetchSignals(ctx context.Context, symbol string, horizonDays int) (*models.UpstreamSignals, error) {
	signals := &models.UpstreamSignals{}

	prediction, predErr := c.Predict(ctx, symbol, horizonDays)
	if predErr != nil {
		c.logger.WithError(predErr).WithField("symbol", symbol).Warn("Forecast unavailable")
	} else {
		signals.Forecast = prediction
	}

	sentiment, sentErr := c.Sentiment(ctx, symbol)
	if sentErr != nil {
		c.logger.WithError(sentErr).WithField("symbol", symbol).Warn("Sentiment unavailable")
	} else {
		signals.Sentiment = sentiment
	}

	if predErr != nil && sentErr != nil {
		return nil, fmt.Errorf("forecast service unavailable: %w", predErr)
	}
	return signals, nil
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.WithError(err).Debug("Error closing response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("forecast service error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("forecast service returned invalid JSON for %s", path)
	}
	return json.RawMessage(body), nil
}
