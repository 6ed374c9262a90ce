package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"hyperiq/internal/catalog"
	"hyperiq/internal/coordinator"
	"hyperiq/internal/fetcher"
	"hyperiq/internal/yahoo"
)

// Supported price history providers.
const (
	ProviderYahoo     = "yahoo"
	ProviderFinanceGo = "financego"
)

// InstrumentConfig is one catalog entry of the config file.
type InstrumentConfig struct {
	Name string `mapstructure:"name"`
	Key  string `mapstructure:"key"`
}

// CatalogConfig overrides the built-in catalog when any partition is set.
type CatalogConfig struct {
	Commodities []InstrumentConfig `mapstructure:"commodities"`
	Stocks      []InstrumentConfig `mapstructure:"stocks"`
	Crypto      []InstrumentConfig `mapstructure:"crypto"`
}

// Config holds all configuration for the market oracle.
type Config struct {
	// Price history provider
	Provider       string        `mapstructure:"provider"`
	YahooBaseURL   string        `mapstructure:"yahoo_base_url"`
	UserAgent      string        `mapstructure:"user_agent"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RetryCount     int           `mapstructure:"retry_count"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	RateBurst      int           `mapstructure:"rate_burst"`

	// Refresh behaviour
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	CommodityPeriod string        `mapstructure:"commodity_period"`
	ShortPeriod     string        `mapstructure:"short_period"`
	LongPeriod      string        `mapstructure:"long_period"`

	LogLevel string        `mapstructure:"log_level"`
	Catalog  CatalogConfig `mapstructure:"catalog"`
}

// Load reads configuration from defaults, an optional config file, a .env file
// and environment variables. Environment variables take precedence over config
// file values. An empty path searches for config.yaml in the working directory
// and in $HOME/.hyperiq; a missing file is not an error in that case.
//
// Recognised environment variables:
//   - HYPERIQ_PROVIDER (yahoo or financego)
//   - YAHOO_BASE_URL
//   - HYPERIQ_USER_AGENT, HYPERIQ_REQUEST_TIMEOUT, HYPERIQ_RETRY_COUNT
//   - HYPERIQ_RATE_LIMIT, HYPERIQ_RATE_BURST
//   - HYPERIQ_REFRESH_INTERVAL
//   - HYPERIQ_COMMODITY_PERIOD, HYPERIQ_SHORT_PERIOD, HYPERIQ_LONG_PERIOD
//   - HYPERIQ_LOG_LEVEL
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	v.SetDefault("provider", ProviderYahoo)
	v.SetDefault("yahoo_base_url", yahoo.DefaultBaseURL)
	v.SetDefault("user_agent", "Mozilla/5.0 (compatible; hyperiq/1.0)")
	v.SetDefault("request_timeout", "15s")
	v.SetDefault("retry_count", 0)
	v.SetDefault("rate_limit", 4.0)
	v.SetDefault("rate_burst", 1)
	v.SetDefault("refresh_interval", "0s")
	v.SetDefault("commodity_period", string(fetcher.PeriodMonth))
	v.SetDefault("short_period", string(fetcher.PeriodMonth))
	v.SetDefault("long_period", string(fetcher.PeriodYear))
	v.SetDefault("log_level", "info")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.hyperiq")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.BindEnv("provider", "HYPERIQ_PROVIDER")
	v.BindEnv("yahoo_base_url", "YAHOO_BASE_URL")
	v.BindEnv("user_agent", "HYPERIQ_USER_AGENT")
	v.BindEnv("request_timeout", "HYPERIQ_REQUEST_TIMEOUT")
	v.BindEnv("retry_count", "HYPERIQ_RETRY_COUNT")
	v.BindEnv("rate_limit", "HYPERIQ_RATE_LIMIT")
	v.BindEnv("rate_burst", "HYPERIQ_RATE_BURST")
	v.BindEnv("refresh_interval", "HYPERIQ_REFRESH_INTERVAL")
	v.BindEnv("commodity_period", "HYPERIQ_COMMODITY_PERIOD")
	v.BindEnv("short_period", "HYPERIQ_SHORT_PERIOD")
	v.BindEnv("long_period", "HYPERIQ_LONG_PERIOD")
	v.BindEnv("log_level", "HYPERIQ_LOG_LEVEL")

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	switch c.Provider {
	case ProviderYahoo, ProviderFinanceGo:
	default:
		problems = append(problems, fmt.Sprintf("unknown provider %q", c.Provider))
	}
	for _, p := range []string{c.CommodityPeriod, c.ShortPeriod, c.LongPeriod} {
		if _, err := fetcher.ParsePeriod(p); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if c.RetryCount < 0 {
		problems = append(problems, "retry_count must not be negative")
	}
	if c.RefreshInterval < 0 {
		problems = append(problems, "refresh_interval must not be negative")
	}
	if _, err := c.Level(); err != nil {
		problems = append(problems, err.Error())
	}
	if err := c.Instruments().Validate(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Instruments returns the configured catalog, or the built-in one when the
// config file lists no instruments.
func (c *Config) Instruments() catalog.Catalog {
	cc := c.Catalog
	if len(cc.Commodities)+len(cc.Stocks)+len(cc.Crypto) == 0 {
		return catalog.Default()
	}
	return catalog.Catalog{
		Commodities: instruments(catalog.Commodity, cc.Commodities),
		Stocks:      instruments(catalog.Stock, cc.Stocks),
		Crypto:      instruments(catalog.Crypto, cc.Crypto),
	}
}

func instruments(category catalog.Category, entries []InstrumentConfig) []catalog.Instrument {
	pairs := make([][2]string, len(entries))
	for i, e := range entries {
		pairs[i] = [2]string{e.Name, e.Key}
	}
	return catalog.New(category, pairs...)
}

// Periods returns the growth windows. Call it on a validated Config.
func (c *Config) Periods() coordinator.Periods {
	return coordinator.Periods{
		Commodities: fetcher.Period(c.CommodityPeriod),
		ShortStocks: fetcher.Period(c.ShortPeriod),
		LongStocks:  fetcher.Period(c.LongPeriod),
	}
}

// Level maps log_level onto a slog level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return level, nil
}

// ClientOptions returns the HTTP client settings for HTTP based providers.
func (c *Config) ClientOptions() fetcher.ClientOptions {
	return fetcher.ClientOptions{
		Timeout:    c.RequestTimeout,
		RetryCount: c.RetryCount,
		UserAgent:  c.UserAgent,
	}
}
