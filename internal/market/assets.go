package market

import (
	"strings"

	"github.com/seenimoa/stonks/internal/catalog"
)

// AssetRef identifies one asset in a multi-asset request. Type accepts
// singular or plural class names.
type AssetRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Class parses Type.
func (a AssetRef) Class() (catalog.AssetClass, error) {
	return catalog.ParseClass(a.Type)
}

func (a AssetRef) String() string { return a.Type + ":" + a.ID }

// AssetType is the singular label reported in quotes.
func AssetType(c catalog.AssetClass) string {
	switch c {
	case catalog.ClassStocks:
		return "stock"
	case catalog.ClassCommodities:
		return "commodity"
	case catalog.ClassIndices:
		return "index"
	}
	return string(c)
}

// notFoundHints are the suggestions shown when a quote lookup fails.
var notFoundHints = map[catalog.AssetClass]string{
	catalog.ClassStocks:      "AAPL, MSFT, GOOGL, TSLA, AMZN",
	catalog.ClassCrypto:      "bitcoin, ethereum, solana, btc, eth",
	catalog.ClassCommodities: "gold, silver, platinum, palladium, oil, crude, wti, brent, natural gas, gas",
	catalog.ClassForex:       "EUR, GBP, JPY, CHF, AUD, CAD, EURUSD",
	catalog.ClassIndices:     "SPY, QQQ, DIA, IWM, VIX",
	catalog.ClassTreasury:    "2y, 5y, 10y, 30y",
	catalog.ClassMacro:       "m2, fed funds, us debt, vix, cpi, unemployment, gdp, eu cpi, japan gdp, china pmi",
}

func notFoundMessage(c catalog.AssetClass, id string) string {
	label := strings.ToUpper(AssetType(c)[:1]) + AssetType(c)[1:]
	if c == catalog.ClassForex {
		label = "Forex pair"
	}
	return label + " '" + id + "' not found. Try: " + notFoundHints[c]
}
