package market

// CryptoDays maps a chart period to CoinGecko days for the history
// endpoint.
func CryptoDays(period string) int {
	switch period {
	case "1d":
		return 1
	case "7d", "5d":
		return 7
	case "1mo":
		return 30
	case "3mo":
		return 90
	case "6mo":
		return 180
	case "1y":
		return 365
	}
	return 90
}

// AnalysisCryptoDays maps an analysis period to CoinGecko days. Longer
// periods than the chart endpoint are accepted.
func AnalysisCryptoDays(period string) int {
	switch period {
	case "1mo":
		return 30
	case "3mo":
		return 90
	case "6mo":
		return 180
	case "1y":
		return 365
	case "2y":
		return 730
	case "5y":
		return 1825
	}
	return 365
}

// ScanDays maps a deep-scan lookback to calendar days.
func ScanDays(period string) int {
	switch period {
	case "1y":
		return 365
	case "2y":
		return 730
	case "5y":
		return 1825
	case "10y":
		return 3650
	case "20y":
		return 7300
	case "max":
		return 36500
	}
	return 3650
}

// ScanCryptoDays caps the crypto lookback at the free-tier limit.
func ScanCryptoDays(period string) int {
	return min(ScanDays(period), 365)
}
