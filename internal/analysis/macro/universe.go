package macro

import (
	"github.com/seenimoa/stonks/internal/catalog"
	"github.com/seenimoa/stonks/internal/market"
)

// ClassAssets is one asset class of the scan universe.
type ClassAssets struct {
	Class catalog.AssetClass
	IDs   []string
}

// DefaultUniverse is scanned when a request names no class filter.
var DefaultUniverse = []ClassAssets{
	{catalog.ClassStocks, []string{
		"AAPL", "MSFT", "GOOGL", "AMZN", "META", "NVDA", "TSLA",
		"JPM", "BAC", "GS", "V", "MA",
		"JNJ", "PFE", "UNH",
		"XOM", "CVX",
		"WMT", "COST", "HD",
	}},
	// the free CoinGecko tier rate-limits hard
	{catalog.ClassCrypto, []string{"bitcoin", "ethereum"}},
	{catalog.ClassCommodities, []string{"gold", "silver", "oil", "natural gas", "copper", "wheat", "corn"}},
	{catalog.ClassForex, []string{"EURUSD", "GBPUSD", "USDJPY", "AUDUSD", "USDCHF", "USDCAD", "USDCNY"}},
	{catalog.ClassTreasury, []string{"^TNX", "^TYX", "^FVX", "^IRX"}},
	{catalog.ClassIndices, []string{
		"^GSPC", "^DJI", "^IXIC", "^RUT", "^VIX",
		"^GDAXI", "^FTSE", "^FCHI", "^STOXX50E",
		"^N225", "^HSI", "000001.SS",
		"^BVSP", "^GSPTSE",
	}},
	{catalog.ClassMacro, []string{
		"M2", "M1", "FEDFUNDS", "DFF",
		"CPIAUCSL", "PCEPI", "CPILFESL",
		"UNRATE", "PAYEMS", "ICSA", "CIVPART",
		"GDP", "GDPC1", "INDPRO",
		"UMCSENT", "RSAFS", "PCE",
		"HOUST", "PERMIT", "CSUSHPISA",
		"GFDEBTN", "TCMDO", "BUSLOANS",
		"DGORDER", "NEWORDER",
		"BOPGSTB", "NETEXP",
		"VIXCLS", "TEDRATE", "T10Y2Y", "T10Y3M",
		"GS10", "GS2", "GS5", "GS30",
		"DEXUSEU", "DEXJPUS", "DEXCHUS",
	}},
}

// Universe returns the refs to scan: the whole default universe, or one
// class of it when class is set, followed by extra refs not already
// present. Duplicates are dropped by class and id.
func Universe(class catalog.AssetClass, extra []market.AssetRef) []market.AssetRef {
	var refs []market.AssetRef
	seen := make(map[string]bool)
	add := func(c catalog.AssetClass, id string) {
		key := string(c) + ":" + id
		if id == "" || seen[key] {
			return
		}
		seen[key] = true
		refs = append(refs, market.AssetRef{ID: id, Type: string(c)})
	}

	for _, ca := range DefaultUniverse {
		if class != "" && ca.Class != class {
			continue
		}
		for _, id := range ca.IDs {
			add(ca.Class, id)
		}
	}
	for _, r := range extra {
		c, err := r.Class()
		if err != nil {
			// kept so the fetch reports it as failed
			refs = append(refs, r)
			continue
		}
		add(c, r.ID)
	}
	return refs
}
