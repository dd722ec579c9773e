package main

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/seenimoa/stonks/internal/catalog"
	"github.com/seenimoa/stonks/internal/config"
	"github.com/seenimoa/stonks/internal/dashboard"
	"github.com/seenimoa/stonks/internal/market"
	"github.com/seenimoa/stonks/internal/news"
	"github.com/seenimoa/stonks/internal/provider"
	"github.com/seenimoa/stonks/internal/providers"
)

// newDashboard wires the live providers. Tests swap it for a fake market.
var newDashboard = func(c *config.Config) (*dashboard.Dashboard, error) {
	provider.SetCacheTTL(c.Analysis.CacheDuration())
	reg := provider.NewRegistry()
	keys := providers.Keys{
		TwelveData: c.Providers.TwelveDataKey,
		FRED:       c.Providers.FREDKey,
	}
	if err := providers.RegisterAllTo(reg, keys); err != nil {
		return nil, fmt.Errorf("register providers: %w", err)
	}

	l := log.Logger
	cat := catalog.Default()
	mkt := market.New(reg, cat,
		market.WithLogger(l),
		market.WithConcurrency(c.Analysis.ConcurrentFetches),
	)
	return dashboard.New(dashboard.Config{
		Market:       mkt,
		News:         news.New(news.WithLogger(l)),
		Catalog:      cat,
		Simulations:  c.Analysis.Simulations,
		ForecastDays: c.Analysis.ForecastDays,
		ExportDir:    c.Scan.ExportDir,
		RiskFreeRate: c.Analysis.RiskFreeRate,
		Registry:     reg,
		Logger:       &l,
	}), nil
}
