package coingecko

type usd struct {
	USD float64 `json:"usd"`
}

type cgCoin struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	MarketCapRank int    `json:"market_cap_rank"`
	Description   struct {
		En string `json:"en"`
	} `json:"description"`
	MarketData struct {
		CurrentPrice        usd      `json:"current_price"`
		MarketCap           usd      `json:"market_cap"`
		TotalVolume         usd      `json:"total_volume"`
		High24h             usd      `json:"high_24h"`
		Low24h              usd      `json:"low_24h"`
		PriceChange24h      float64  `json:"price_change_24h"`
		PriceChangePct24h   float64  `json:"price_change_percentage_24h"`
		PriceChangePct7d    float64  `json:"price_change_percentage_7d"`
		PriceChangePct30d   float64  `json:"price_change_percentage_30d"`
		CirculatingSupply   float64  `json:"circulating_supply"`
		TotalSupply         float64  `json:"total_supply"`
		MaxSupply           *float64 `json:"max_supply"`
		ATH                 usd      `json:"ath"`
		ATHChangePercentage usd      `json:"ath_change_percentage"`
		ATL                 usd      `json:"atl"`
	} `json:"market_data"`
}

// Each point is [unix_ms, value].
type cgMarketChart struct {
	Prices       [][2]float64 `json:"prices"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

type cgSearch struct {
	Coins []struct {
		ID            string `json:"id"`
		Symbol        string `json:"symbol"`
		Name          string `json:"name"`
		MarketCapRank *int   `json:"market_cap_rank"`
	} `json:"coins"`
}
