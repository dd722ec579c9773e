// Package providers creates the concrete data providers and registers
// them with a provider registry.
package providers

import (
	"os"

	"github.com/seenimoa/stonks/internal/provider"
	"github.com/seenimoa/stonks/internal/providers/coingecko"
	"github.com/seenimoa/stonks/internal/providers/fred"
	"github.com/seenimoa/stonks/internal/providers/twelvedata"
	"github.com/seenimoa/stonks/internal/providers/yfinance"
)

// Keys holds optional API keys. Empty values fall back to each
// provider's keyless mode.
type Keys struct {
	TwelveData string
	FRED       string
}

// KeysFromEnv reads TWELVE_DATA_KEY and FRED_API_KEY.
func KeysFromEnv() Keys {
	return Keys{
		TwelveData: os.Getenv("TWELVE_DATA_KEY"),
		FRED:       os.Getenv("FRED_API_KEY"),
	}
}

// RegisterAll registers every provider with the global registry using
// keys from the environment.
func RegisterAll() error {
	return RegisterAllTo(provider.Global(), KeysFromEnv())
}

// RegisterAllTo registers every provider with reg. Twelve Data goes
// first so it is the default for equity quotes and history, with Yahoo
// as the fallback.
func RegisterAllTo(reg *provider.Registry, keys Keys) error {
	entries := []struct {
		p     provider.Provider
		creds map[string]string
	}{
		{twelvedata.New(), map[string]string{"api_key": keys.TwelveData}},
		{yfinance.New(), nil},
		{coingecko.New(), nil},
		{fred.New(), map[string]string{"api_key": keys.FRED}},
	}

	for _, e := range entries {
		if err := e.p.Init(e.creds); err != nil {
			return err
		}
		if err := reg.Register(e.p); err != nil {
			return err
		}
	}
	return nil
}
