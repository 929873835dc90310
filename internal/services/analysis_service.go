package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ronicTakouugang/stockz/internal/config"
	"github.com/ronicTakouugang/stockz/internal/indicators"
	"github.com/ronicTakouugang/stockz/internal/models"
	"github.com/ronicTakouugang/stockz/internal/telemetry"
)

// PriceSource fetches daily bars for a symbol between two instants.
type PriceSource interface {
	FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) (*models.PriceSeries, error)
}

// Reasoner turns a prompt into a text completion expected to hold a JSON decision.
type Reasoner interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// UpstreamSignalSource supplies optional forecast and sentiment payloads.
type UpstreamSignalSource interface {
	FetchSignals(ctx context.Context, symbol string, horizonDays int) (*models.UpstreamSignals, error)
}

// Parts of an analysis that may be missing from a result.
const (
	UnavailableCorrelation = "correlation"
	UnavailableBacktest    = "backtest"
	UnavailableSignals     = "upstream_signals"
)

// AnalysisOptions tunes the orchestrator.
type AnalysisOptions struct {
	BenchmarkSymbol   string
	LookbackDays      int
	CorrelationWindow int
	RecentPrices      int
	HistoryBars       int
	MaxHorizonDays    int
}

// DefaultAnalysisOptions mirrors the configuration defaults.
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		BenchmarkSymbol:   "SPY",
		LookbackDays:      365,
		CorrelationWindow: DefaultCorrelationWindow,
		RecentPrices:      10,
		HistoryBars:       250,
		MaxHorizonDays:    365,
	}
}

// AnalysisOptionsFromConfig reads the market data and analysis sections.
func AnalysisOptionsFromConfig(cfg *config.Config) AnalysisOptions {
	opts := AnalysisOptions{
		BenchmarkSymbol:   cfg.MarketData.BenchmarkSymbol,
		LookbackDays:      cfg.MarketData.LookbackDays,
		CorrelationWindow: cfg.Analysis.CorrelationWindow,
		RecentPrices:      cfg.Analysis.RecentPrices,
		HistoryBars:       cfg.Analysis.HistoryBars,
		MaxHorizonDays:    cfg.Analysis.MaxHorizonDays,
	}
	return opts.withDefaults()
}

func (o AnalysisOptions) withDefaults() AnalysisOptions {
	def := DefaultAnalysisOptions()
	if o.BenchmarkSymbol == "" {
		o.BenchmarkSymbol = def.BenchmarkSymbol
	}
	if o.LookbackDays <= 0 {
		o.LookbackDays = def.LookbackDays
	}
	if o.CorrelationWindow <= 1 {
		o.CorrelationWindow = def.CorrelationWindow
	}
	if o.RecentPrices <= 0 {
		o.RecentPrices = def.RecentPrices
	}
	if o.HistoryBars <= 0 {
		o.HistoryBars = def.HistoryBars
	}
	if o.MaxHorizonDays <= 0 {
		o.MaxHorizonDays = def.MaxHorizonDays
	}
	return o
}

// AnalysisService runs one analysis request end to end: quota check, price
// fetches, indicators, correlation, backtest, reasoning and quota commit.
type AnalysisService struct {
	prices     PriceSource
	reasoner   Reasoner
	signals    UpstreamSignalSource
	quota      *QuotaGate
	backtester *Backtester
	breaker    *CircuitBreaker
	opts       AnalysisOptions
	logger     *logrus.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// NewAnalysisService wires the orchestrator. signals may be nil.
func NewAnalysisService(
	prices PriceSource,
	reasoner Reasoner,
	signals UpstreamSignalSource,
	quota *QuotaGate,
	backtester *Backtester,
	breaker *CircuitBreaker,
	opts AnalysisOptions,
	logger *logrus.Logger,
) *AnalysisService {
	return &AnalysisService{
		prices:     prices,
		reasoner:   reasoner,
		signals:    signals,
		quota:      quota,
		backtester: backtester,
		breaker:    breaker,
		opts:       opts.withDefaults(),
		logger:     logger,
		tracer:     telemetry.Tracer(),
		now:        time.Now,
	}
}

// Analyze produces a validated decision for symbol. The user's quota is
// charged only after the decision passed validation.
func (s *AnalysisService) Analyze(ctx context.Context, symbol string, horizonDays int, userID string) (*models.AnalysisResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.analyze", trace.WithAttributes(
		attribute.String("analysis.symbol", symbol),
		attribute.Int("analysis.horizon_days", horizonDays),
	))
	defer span.End()

	result, err := s.analyze(ctx, symbol, horizonDays, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("analysis.signal", result.Decision.Signal))
	return result, nil
}

func (s *AnalysisService) analyze(ctx context.Context, symbol string, horizonDays int, userID string) (*models.AnalysisResult, error) {
	symbol = strings.TrimSpace(symbol)
	if err := s.validateRequest(symbol, horizonDays, userID); err != nil {
		return nil, err
	}

	ticket, err := s.quota.Check(ctx, userID)
	if err != nil {
		return nil, err
	}

	series, err := s.fetchSeries(ctx, symbol)
	if err != nil {
		return nil, err
	}

	log := s.logger.WithFields(logrus.Fields{
		"symbol":       symbol,
		"user_id":      userID,
		"horizon_days": horizonDays,
		"bars":         series.Len(),
	})

	result := &models.AnalysisResult{
		ID:          uuid.New().String(),
		Symbol:      symbol,
		HorizonDays: horizonDays,
	}

	set := indicators.Compute(series)
	bundle := s.featureBundle(series, set)

	corr, err := s.correlation(ctx, series)
	if err != nil {
		log.WithError(err).Warn("Correlation unavailable")
		result.Unavailable = append(result.Unavailable, UnavailableCorrelation)
	} else {
		result.Correlation = &corr
		bundle.Correlation = &corr
	}

	backtest, err := s.backtester.Run(series)
	if err != nil {
		log.WithError(err).Warn("Backtest unavailable")
		result.Unavailable = append(result.Unavailable, UnavailableBacktest)
	} else {
		result.Backtest = backtest
		bundle.Backtest = backtest.Summary()
	}

	if s.signals != nil {
		upstream, err := s.signals.FetchSignals(ctx, symbol, horizonDays)
		if err != nil {
			log.WithError(err).Warn("Upstream signals unavailable")
			result.Unavailable = append(result.Unavailable, UnavailableSignals)
		} else if upstream != nil {
			bundle.Forecast = upstream.Forecast
			bundle.Sentiment = upstream.Sentiment
		}
	}

	decision, err := s.decide(ctx, bundle, horizonDays)
	if err != nil {
		log.WithError(err).Error("Reasoning failed")
		return nil, err
	}

	if err := s.quota.Commit(ctx, ticket); err != nil {
		log.WithError(err).Error("Failed to record quota usage")
	}

	result.Features = bundle
	result.Decision = decision
	result.History = s.history(series, set, s.opts.HistoryBars)
	result.GeneratedAt = s.now().UTC()

	log.WithFields(logrus.Fields{
		"analysis_id": result.ID,
		"signal":      decision.Signal,
		"unavailable": result.Unavailable,
	}).Info("Analysis completed")
	return result, nil
}

// RunBacktest simulates the crossover strategy over the lookback window.
// It does not consume quota.
func (s *AnalysisService) RunBacktest(ctx context.Context, symbol string) (*models.BacktestResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.backtest", trace.WithAttributes(
		attribute.String("analysis.symbol", symbol),
	))
	defer span.End()

	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", models.ErrInvalidInput)
	}
	series, err := s.fetchSeries(ctx, symbol)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	result, err := s.backtester.Run(series)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return result, nil
}

// Indicators returns the last limit bars with indicator overlays. A
// non-positive limit uses the configured history length.
func (s *AnalysisService) Indicators(ctx context.Context, symbol string, limit int) (*models.HistoryWindow, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.indicators", trace.WithAttributes(
		attribute.String("analysis.symbol", symbol),
	))
	defer span.End()

	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", models.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = s.opts.HistoryBars
	}
	series, err := s.fetchSeries(ctx, symbol)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return s.history(series, indicators.Compute(series), limit), nil
}

// QuotaStatus reports today's usage for userID.
func (s *AnalysisService) QuotaStatus(ctx context.Context, userID string) (*models.QuotaStatus, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", models.ErrInvalidInput)
	}
	return s.quota.Status(ctx, userID)
}

func (s *AnalysisService) validateRequest(symbol string, horizonDays int, userID string) error {
	switch {
	case symbol == "":
		return fmt.Errorf("%w: symbol is required", models.ErrInvalidInput)
	case horizonDays < 1 || horizonDays > s.opts.MaxHorizonDays:
		return fmt.Errorf("%w: horizon must be between 1 and %d days", models.ErrInvalidInput, s.opts.MaxHorizonDays)
	case strings.TrimSpace(userID) == "":
		return fmt.Errorf("%w: user id is required", models.ErrInvalidInput)
	}
	return nil
}

// fetchSeries loads the lookback window and classifies failures.
func (s *AnalysisService) fetchSeries(ctx context.Context, symbol string) (*models.PriceSeries, error) {
	to := s.now().UTC()
	from := to.AddDate(0, 0, -s.opts.LookbackDays)

	series, err := s.prices.FetchDailyBars(ctx, symbol, from, to)
	if err != nil {
		if errors.Is(err, models.ErrMalformedSeries) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: price data for %s: %v", models.ErrUpstreamUnavailable, symbol, err)
	}
	if series == nil || series.Len() == 0 {
		return nil, &models.InsufficientHistoryError{What: symbol, Need: 1, Have: 0}
	}
	return series, nil
}

func (s *AnalysisService) correlation(ctx context.Context, asset *models.PriceSeries) (float64, error) {
	benchmark, err := s.fetchSeries(ctx, s.opts.BenchmarkSymbol)
	if err != nil {
		return 0, err
	}
	return Correlation(asset.Closes(), benchmark.Closes(), s.opts.CorrelationWindow)
}

func (s *AnalysisService) featureBundle(series *models.PriceSeries, set indicators.Set) *models.FeatureBundle {
	last, _ := series.Last()
	closes := series.Closes()

	recent := s.opts.RecentPrices
	if recent > len(closes) {
		recent = len(closes)
	}

	return &models.FeatureBundle{
		Symbol:        series.Symbol(),
		AsOf:          series.DateKey(series.Len() - 1),
		CurrentPrice:  last.Close,
		Volume:        last.Volume,
		SMA20:         set.SMA20.Last().Ptr(),
		SMA50:         set.SMA50.Last().Ptr(),
		EMA20:         set.EMA20.Last().Ptr(),
		RSI14:         set.RSI14.Last().Ptr(),
		MACD:          set.MACD.Line.Last().Ptr(),
		MACDSignal:    set.MACD.Signal.Last().Ptr(),
		MACDHistogram: set.MACD.Histogram.Last().Ptr(),
		BBUpper:       set.Bollinger.Upper.Last().Ptr(),
		BBMiddle:      set.Bollinger.Middle.Last().Ptr(),
		BBLower:       set.Bollinger.Lower.Last().Ptr(),
		ATR14:         set.ATR14.Last().Ptr(),
		OBV:           set.OBV.Last().Ptr(),
		Benchmark:     s.opts.BenchmarkSymbol,
		RecentCloses:  closes[len(closes)-recent:],
		MarketRegime:  set.Regime(last.Close),
	}
}

// decide calls the reasoner through the breaker and validates its answer.
func (s *AnalysisService) decide(ctx context.Context, bundle *models.FeatureBundle, horizonDays int) (*models.Decision, error) {
	prompt, err := BuildPrompt(bundle, horizonDays)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	var text string
	err = s.breaker.Execute(ctx, func(ctx context.Context) error {
		out, genErr := s.reasoner.Generate(ctx, prompt)
		if genErr != nil {
			return genErr
		}
		text = out
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: reasoning: %v", models.ErrUpstreamUnavailable, err)
	}

	return ParseDecision(text)
}

func (s *AnalysisService) history(series *models.PriceSeries, set indicators.Set, limit int) *models.HistoryWindow {
	n := series.Len()
	if limit > n {
		limit = n
	}
	start := n - limit

	return &models.HistoryWindow{
		Timestamps: series.Timestamps()[start:],
		Open:       series.Opens()[start:],
		High:       series.Highs()[start:],
		Low:        series.Lows()[start:],
		Close:      series.Closes()[start:],
		Volume:     series.Volumes()[start:],
		SMA20:      set.SMA20.Tail(limit).Ptrs(),
		SMA50:      set.SMA50.Tail(limit).Ptrs(),
		EMA20:      set.EMA20.Tail(limit).Ptrs(),
		RSI14:      set.RSI14.Tail(limit).Ptrs(),
		MACD:       set.MACD.Line.Tail(limit).Ptrs(),
		MACDSignal: set.MACD.Signal.Tail(limit).Ptrs(),
		BBUpper:    set.Bollinger.Upper.Tail(limit).Ptrs(),
		BBLower:    set.Bollinger.Lower.Tail(limit).Ptrs(),
		ATR14:      set.ATR14.Tail(limit).Ptrs(),
	}
}
