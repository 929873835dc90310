// Package gemini adapts the Gemini generateContent API to a single-turn
// text generator.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"github.com/ronicTakouugang/stockz/internal/config"
)

// ErrRateLimited is returned on HTTP 429 from the API.
var ErrRateLimited = errors.New("gemini rate limit exceeded")

// ErrEmptyResponse is returned when no candidate text came back.
var ErrEmptyResponse = errors.New("gemini returned no content")

const defaultTemperature float32 = 0.2

// Client calls models/{model}:generateContent through the genai SDK.
type Client struct {
	models *genai.Models
	model  string
	logger *logrus.Logger
}

// NewClient builds a Gemini API backed client. The API key is required.
func NewClient(ctx context.Context, cfg *config.ReasoningConfig, logger *logrus.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: config.Duration(cfg.Timeout, 60*time.Second)},
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/") + "/"
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Client{models: client.Models, model: cfg.Model, logger: logger}, nil
}

// Generate sends a single-turn prompt and returns the first candidate's text.
// JSON output is requested through the response MIME type.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr(defaultTemperature),
	})
	if err != nil {
		return "", classify(err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	if len(resp.Candidates) > 0 {
		c.logger.WithFields(logrus.Fields{
			"model":         c.model,
			"finish_reason": resp.Candidates[0].FinishReason,
		}).Debug("Gemini response received")
	}
	return text, nil
}

func classify(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var ptr *genai.APIError
		if !errors.As(err, &ptr) || ptr == nil {
			return fmt.Errorf("failed to call gemini: %w", err)
		}
		apiErr = *ptr
	}
	if apiErr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
	}
	return fmt.Errorf("gemini error (%d): %s", apiErr.Code, apiErr.Message)
}
