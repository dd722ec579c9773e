package yfinance

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol             string   `json:"symbol"`
	Currency           string   `json:"currency"`
	ExchangeName       string   `json:"exchangeName"`
	LongName           string   `json:"longName"`
	ShortName          string   `json:"shortName"`
	GMTOffset          int64    `json:"gmtoffset"`
	RegularMarketPrice float64  `json:"regularMarketPrice"`
	PreviousClose      *float64 `json:"previousClose"`
	ChartPreviousClose *float64 `json:"chartPreviousClose"`
	FiftyTwoWeekHigh   float64  `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow    float64  `json:"fiftyTwoWeekLow"`
}

type yfIndicators struct {
	Quote []yfOHLCV `json:"quote"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

func at(s []*float64, i int) (float64, bool) {
	if i < len(s) && s[i] != nil {
		return *s[i], true
	}
	return 0, false
}

func nonNil(s []*float64) []float64 {
	out := make([]float64, 0, len(s))
	for _, v := range s {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}
