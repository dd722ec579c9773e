package twelvedata

import (
	"bytes"
	"strconv"
)

type tdError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Twelve Data encodes numbers as strings, but not always.
type num string

func (n *num) UnmarshalJSON(b []byte) error {
	*n = num(bytes.Trim(b, `"`))
	return nil
}

func (n num) Float() float64 {
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return 0
	}
	return f
}

type tdQuote struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Exchange      string `json:"exchange"`
	Currency      string `json:"currency"`
	Open          num    `json:"open"`
	High          num    `json:"high"`
	Low           num    `json:"low"`
	Close         num    `json:"close"`
	Volume        num    `json:"volume"`
	PreviousClose num    `json:"previous_close"`
	Change        num    `json:"change"`
	PercentChange num    `json:"percent_change"`
	FiftyTwoWeek  struct {
		High num `json:"high"`
		Low  num `json:"low"`
	} `json:"fifty_two_week"`
}

type tdTimeSeries struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
		Currency string `json:"currency"`
	} `json:"meta"`
	Values []tdBar `json:"values"`
	Status string  `json:"status"`
}

type tdBar struct {
	Datetime string `json:"datetime"`
	Open     num    `json:"open"`
	High     num    `json:"high"`
	Low      num    `json:"low"`
	Close    num    `json:"close"`
	Volume   num    `json:"volume"`
}
