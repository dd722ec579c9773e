package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/stonks/internal/provider"
	"github.com/seenimoa/stonks/pkg/models"
)

func newServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.Error(w, `{"error":"coin not found"}`, http.StatusNotFound)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCoinDetail(t *testing.T) {
	long := strings.Repeat("x", 800)
	srv := newServer(t, map[string]string{
		"/coins/bitcoin": `{"id":"bitcoin","symbol":"btc","name":"Bitcoin","market_cap_rank":1,
			"description":{"en":"` + long + `"},
			"market_data":{"current_price":{"usd":65000},"market_cap":{"usd":1.2e12},
			"total_volume":{"usd":3e10},"high_24h":{"usd":66000},"low_24h":{"usd":64000},
			"price_change_24h":500,"price_change_percentage_24h":0.77,"max_supply":21000000,
			"ath":{"usd":73000},"ath_change_percentage":{"usd":-11}}}`,
	})
	p := New(WithBaseURL(srv.URL))

	res, err := p.Fetcher(provider.ModelCryptoQuote).Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "bitcoin"})
	require.NoError(t, err)

	q := res.Data.(*models.Quote)
	assert.Equal(t, "Bitcoin", q.Name)
	assert.Equal(t, 65000.0, q.CurrentPrice)
	require.NotNil(t, q.CryptoDetail)
	assert.Equal(t, "BTC", q.CryptoDetail.Symbol)
	assert.Equal(t, 1, q.MarketCapRank)
	require.NotNil(t, q.MaxSupply)
	assert.Equal(t, 21000000.0, *q.MaxSupply)
	assert.Len(t, q.Description, maxDescription)
}

func TestCoinNotFound(t *testing.T) {
	srv := newServer(t, nil)
	p := New(WithBaseURL(srv.URL))

	_, err := p.Fetcher(provider.ModelCryptoQuote).Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "nocoin"})
	var noData *provider.ErrNoData
	require.ErrorAs(t, err, &noData)
	assert.Equal(t, "nocoin", noData.Symbol)
}

func TestMarketChartKeepsLastPointPerDay(t *testing.T) {
	// 2024-01-01 00:00, 2024-01-01 12:00 and 2024-01-02 00:00 UTC.
	srv := newServer(t, map[string]string{
		"/coins/ethereum/market_chart": `{
			"prices":[[1704067200000,2200],[1704110400000,2250],[1704153600000,2300]],
			"total_volumes":[[1704067200000,10],[1704110400000,11],[1704153600000,12]]}`,
	})
	p := New(WithBaseURL(srv.URL))

	res, err := p.Fetcher(provider.ModelCryptoHistorical).Fetch(context.Background(), provider.QueryParams{
		provider.ParamSymbol: "ethereum",
		provider.ParamDays:   "7",
	})
	require.NoError(t, err)

	h := res.Data.(*models.History)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, h.Dates())
	assert.Equal(t, []float64{2250, 2300}, h.Closes())
	assert.Equal(t, 2, h.DataPoints)
	assert.Equal(t, 11.0, h.Data[0].Volume)
}

func TestSearchSortsByRank(t *testing.T) {
	srv := newServer(t, map[string]string{
		"/search": `{"coins":[
			{"id":"a","symbol":"a","name":"A","market_cap_rank":null},
			{"id":"b","symbol":"b","name":"B","market_cap_rank":50},
			{"id":"c","symbol":"c","name":"C","market_cap_rank":3},
			{"id":"d","symbol":"d","name":"D","market_cap_rank":7},
			{"id":"e","symbol":"e","name":"E","market_cap_rank":9},
			{"id":"f","symbol":"f","name":"F","market_cap_rank":11}]}`,
	})
	p := New(WithBaseURL(srv.URL))

	res, err := p.Fetcher(provider.ModelCryptoSearch).Fetch(context.Background(), provider.QueryParams{provider.ParamQuery: "x"})
	require.NoError(t, err)

	hits := res.Data.([]models.SearchResult)
	require.Len(t, hits, searchLimit)
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	assert.Equal(t, []string{"c", "d", "e", "f", "b"}, ids)
	assert.Equal(t, "C", hits[0].Symbol)
	assert.Equal(t, "crypto", hits[0].Type)
}

func TestUnixDate(t *testing.T) {
	assert.Equal(t, "2024-01-01", unixDate(1704067200000))
}
