package main

import (
	"fmt"
	"io"
	"log/slog"

	"hyperiq/internal/config"
	"hyperiq/internal/coordinator"
	"hyperiq/internal/fetcher"
	"hyperiq/internal/financego"
	"hyperiq/internal/ratelimit"
	"hyperiq/internal/yahoo"
)

// app is the wiring shared by every command.
type app struct {
	cfg *config.Config
	log *slog.Logger
}

// newApp loads configuration and builds the logger. Logs go to logOut.
func newApp(path string, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	log := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	return &app{cfg: cfg, log: log}, nil
}

// newFetcher builds the configured provider behind its rate limit.
func (a *app) newFetcher() (fetcher.Fetcher, error) {
	var f fetcher.Fetcher
	switch a.cfg.Provider {
	case config.ProviderYahoo:
		f = yahoo.NewChartFetcher(fetcher.NewHTTPClient(a.cfg.YahooBaseURL, a.cfg.ClientOptions()))
	case config.ProviderFinanceGo:
		f = financego.NewChartFetcher()
	default:
		return nil, fmt.Errorf("unknown provider %q", a.cfg.Provider)
	}

	limiter := ratelimit.New()
	limiter.Set(f.Name(), ratelimit.Limit{Rate: a.cfg.RateLimit, Burst: a.cfg.RateBurst})

	a.log.Debug("provider ready",
		"provider", f.Name(),
		"rate_limit", a.cfg.RateLimit,
		"rate_burst", a.cfg.RateBurst)
	return ratelimit.Wrap(f, limiter), nil
}

func (a *app) newCoordinator() (*coordinator.Coordinator, error) {
	f, err := a.newFetcher()
	if err != nil {
		return nil, err
	}
	return coordinator.New(f, a.cfg.Instruments(), a.cfg.Periods(), a.log)
}
