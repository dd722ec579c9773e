package provider

// ModelType names a kind of data a fetcher returns. Each maps to one Go
// type in pkg/models.
type ModelType string

const (
	// ModelQuote returns *models.Quote for an exchange-listed symbol
	// (stocks, futures, FX pairs, indices, yields).
	ModelQuote ModelType = "Quote"
	// ModelHistorical returns *models.History of daily bars.
	ModelHistorical ModelType = "Historical"

	ModelCryptoQuote      ModelType = "CryptoQuote"      // *models.Quote with CryptoDetail
	ModelCryptoHistorical ModelType = "CryptoHistorical" // *models.History
	ModelCryptoSearch     ModelType = "CryptoSearch"     // []models.SearchResult

	// ModelMacroSeries returns *models.MacroSeries.
	ModelMacroSeries ModelType = "MacroSeries"
)

// AllModels returns every defined model type.
func AllModels() []ModelType {
	return []ModelType{
		ModelQuote, ModelHistorical,
		ModelCryptoQuote, ModelCryptoHistorical, ModelCryptoSearch,
		ModelMacroSeries,
	}
}

// ModelCategory groups model types for display.
func ModelCategory(m ModelType) string {
	switch m {
	case ModelQuote, ModelHistorical:
		return "Market"
	case ModelCryptoQuote, ModelCryptoHistorical, ModelCryptoSearch:
		return "Crypto"
	case ModelMacroSeries:
		return "Economy"
	}
	return "Other"
}
