package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string           `mapstructure:"environment"`
	LogLevel    string           `mapstructure:"log_level"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Redis       RedisConfig      `mapstructure:"redis"`
	MarketData  MarketDataConfig `mapstructure:"market_data"`
	Reasoning   ReasoningConfig  `mapstructure:"reasoning"`
	Forecast    ForecastConfig   `mapstructure:"forecast"`
	Quota       QuotaConfig      `mapstructure:"quota"`
	Backtest    BacktestConfig   `mapstructure:"backtest"`
	Analysis    AnalysisConfig   `mapstructure:"analysis"`
	Telemetry   TelemetryConfig  `mapstructure:"telemetry"`
	Security    SecurityConfig   `mapstructure:"security"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	ReadTimeout    string   `mapstructure:"read_timeout"`
	WriteTimeout   string   `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	DatabaseURL     string `mapstructure:"database_url"`
	MaxConns        int    `mapstructure:"max_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
}

// DSN prefers an explicit database URL over the discrete fields.
func (c DatabaseConfig) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	PoolSize     int    `mapstructure:"pool_size"`
	DialTimeout  string `mapstructure:"dial_timeout"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
	// SeriesCacheTTL caches fetched daily bars; empty or "0" disables it.
	SeriesCacheTTL string `mapstructure:"series_cache_ttl"`
}

type MarketDataConfig struct {
	Provider        string `mapstructure:"provider"`
	BaseURL         string `mapstructure:"base_url"`
	APIKey          string `mapstructure:"api_key" json:"-"`
	Timeout         string `mapstructure:"timeout"`
	BenchmarkSymbol string `mapstructure:"benchmark_symbol"`
	LookbackDays    int    `mapstructure:"lookback_days"`
}

type ReasoningConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key" json:"-"`
	Model   string `mapstructure:"model"`
	Timeout string `mapstructure:"timeout"`

	BreakerFailureThreshold int    `mapstructure:"breaker_failure_threshold"`
	BreakerOpenTimeout      string `mapstructure:"breaker_open_timeout"`
}

type ForecastConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ServiceURL string `mapstructure:"service_url"`
	Timeout    string `mapstructure:"timeout"`
}

type QuotaConfig struct {
	Backend    string `mapstructure:"backend"`
	DailyLimit int    `mapstructure:"daily_limit"`
}

type BacktestConfig struct {
	ShortWindow        int     `mapstructure:"short_window"`
	LongWindow         int     `mapstructure:"long_window"`
	TransactionCostPct float64 `mapstructure:"transaction_cost_pct"`
}

type AnalysisConfig struct {
	CorrelationWindow int `mapstructure:"correlation_window"`
	RecentPrices      int `mapstructure:"recent_prices"`
	HistoryBars       int `mapstructure:"history_bars"`
	MaxHorizonDays    int `mapstructure:"max_horizon_days"`
}

type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Exporter       string `mapstructure:"exporter"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	ServiceName    string `mapstructure:"service_name"`
	ServiceVersion string `mapstructure:"service_version"`
	ExportLogs     bool   `mapstructure:"export_logs"`
}

type SecurityConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" json:"-" yaml:"-"`
}

var (
	validProviders     = []string{"finnhub", "yahoo"}
	validQuotaBackends = []string{"memory", "redis", "postgres"}
	validExporters     = []string{"otlp", "stdout"}
)

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	for key, env := range map[string]string{
		"security.jwt_secret":   "JWT_SECRET",
		"market_data.api_key":   "FINNHUB_API_KEY",
		"reasoning.api_key":     "GEMINI_API_KEY",
		"database.database_url": "DATABASE_URL",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", env, err)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)
	config.MarketData.Provider = strings.ToLower(config.MarketData.Provider)
	config.Quota.Backend = strings.ToLower(config.Quota.Backend)
	config.Telemetry.Exporter = strings.ToLower(config.Telemetry.Exporter)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks cross-field constraints that defaults cannot guarantee.
func (c *Config) Validate() error {
	if c.Environment != "development" && c.Security.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required in non-development environments")
	}
	if !contains(validProviders, c.MarketData.Provider) {
		return fmt.Errorf("unknown market data provider %q (want one of %s)", c.MarketData.Provider, strings.Join(validProviders, ", "))
	}
	if !contains(validQuotaBackends, c.Quota.Backend) {
		return fmt.Errorf("unknown quota backend %q (want one of %s)", c.Quota.Backend, strings.Join(validQuotaBackends, ", "))
	}
	if c.Telemetry.Enabled && !contains(validExporters, c.Telemetry.Exporter) {
		return fmt.Errorf("unknown telemetry exporter %q", c.Telemetry.Exporter)
	}
	if c.Quota.DailyLimit <= 0 {
		return fmt.Errorf("quota daily limit must be positive, got %d", c.Quota.DailyLimit)
	}
	if c.Backtest.ShortWindow <= 0 || c.Backtest.ShortWindow >= c.Backtest.LongWindow {
		return fmt.Errorf("backtest short window (%d) must be positive and below long window (%d)",
			c.Backtest.ShortWindow, c.Backtest.LongWindow)
	}
	if c.Backtest.TransactionCostPct < 0 {
		return errors.New("backtest transaction cost cannot be negative")
	}
	if c.Redis.PoolSize < 0 {
		return fmt.Errorf("redis pool size cannot be negative, got %d", c.Redis.PoolSize)
	}
	if c.MarketData.LookbackDays <= 0 {
		return fmt.Errorf("market data lookback must be positive, got %d", c.MarketData.LookbackDays)
	}

	durations := map[string]string{
		"server.read_timeout":            c.Server.ReadTimeout,
		"server.write_timeout":           c.Server.WriteTimeout,
		"database.conn_max_lifetime":     c.Database.ConnMaxLifetime,
		"redis.series_cache_ttl":         c.Redis.SeriesCacheTTL,
		"redis.dial_timeout":             c.Redis.DialTimeout,
		"redis.read_timeout":             c.Redis.ReadTimeout,
		"redis.write_timeout":            c.Redis.WriteTimeout,
		"market_data.timeout":            c.MarketData.Timeout,
		"reasoning.timeout":              c.Reasoning.Timeout,
		"reasoning.breaker_open_timeout": c.Reasoning.BreakerOpenTimeout,
		"forecast.timeout":               c.Forecast.Timeout,
	}
	for key, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %w", key, err)
		}
	}
	return nil
}

// Duration parses a validated duration string, returning fallback when empty.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "90s")

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "stockz")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.database_url", "")
	viper.SetDefault("database.max_conns", 10)
	viper.SetDefault("database.conn_max_lifetime", "300s")

	// Redis
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.dial_timeout", "5s")
	viper.SetDefault("redis.read_timeout", "2s")
	viper.SetDefault("redis.write_timeout", "2s")
	viper.SetDefault("redis.series_cache_ttl", "15m")

	// Market data
	viper.SetDefault("market_data.provider", "finnhub")
	viper.SetDefault("market_data.base_url", "https://finnhub.io/api/v1")
	viper.SetDefault("market_data.api_key", "")
	viper.SetDefault("market_data.timeout", "15s")
	viper.SetDefault("market_data.benchmark_symbol", "SPY")
	viper.SetDefault("market_data.lookback_days", 365)

	// Reasoning
	viper.SetDefault("reasoning.base_url", "https://generativelanguage.googleapis.com")
	viper.SetDefault("reasoning.api_key", "")
	viper.SetDefault("reasoning.model", "gemini-2.5-flash")
	viper.SetDefault("reasoning.timeout", "60s")
	viper.SetDefault("reasoning.breaker_failure_threshold", 3)
	viper.SetDefault("reasoning.breaker_open_timeout", "60s")

	// Forecast
	viper.SetDefault("forecast.enabled", false)
	viper.SetDefault("forecast.service_url", "http://localhost:8000")
	viper.SetDefault("forecast.timeout", "20s")

	// Quota
	viper.SetDefault("quota.backend", "memory")
	viper.SetDefault("quota.daily_limit", 5)

	// Backtest
	viper.SetDefault("backtest.short_window", 20)
	viper.SetDefault("backtest.long_window", 50)
	viper.SetDefault("backtest.transaction_cost_pct", 0.0)

	// Analysis
	viper.SetDefault("analysis.correlation_window", 30)
	viper.SetDefault("analysis.recent_prices", 10)
	viper.SetDefault("analysis.history_bars", 250)
	viper.SetDefault("analysis.max_horizon_days", 365)

	// Telemetry
	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.exporter", "otlp")
	viper.SetDefault("telemetry.otlp_endpoint", "localhost:4318")
	viper.SetDefault("telemetry.service_name", "stockz")
	viper.SetDefault("telemetry.service_version", "dev")
	viper.SetDefault("telemetry.export_logs", false)

	// Security
	viper.SetDefault("security.jwt_secret", "")
}
