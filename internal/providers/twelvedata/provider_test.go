package twelvedata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/stonks/internal/provider"
	"github.com/seenimoa/stonks/pkg/models"
)

func newServer(t *testing.T, routes map[string]string) (*httptest.Server, *[]url.Values) {
	t.Helper()
	var queries []url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query())
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &queries
}

func TestQuote(t *testing.T) {
	srv, queries := newServer(t, map[string]string{
		"/quote": `{"symbol":"AAPL","name":"Apple Inc","exchange":"NASDAQ","currency":"USD",
			"open":"189.5","high":"191.2","low":"188.9","close":"190.1","volume":"51234567",
			"previous_close":"188.0","change":"2.1","percent_change":"1.117",
			"fifty_two_week":{"high":"199.62","low":"164.08"}}`,
	})
	p := New(WithBaseURL(srv.URL))
	require.NoError(t, p.Init(nil))

	res, err := p.Fetcher(provider.ModelQuote).Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "AAPL"})
	require.NoError(t, err)

	q := res.Data.(*models.Quote)
	assert.Equal(t, "Apple Inc", q.Name)
	assert.Equal(t, "twelve_data", q.Source)
	assert.Equal(t, 190.1, q.CurrentPrice)
	assert.Equal(t, 188.0, q.PreviousClose)
	assert.Equal(t, 1.117, q.ChangePct)
	assert.Equal(t, 199.62, q.WeekHigh52)
	assert.Equal(t, "NASDAQ", q.Exchange)
	assert.Equal(t, "demo", (*queries)[0].Get("apikey"))
}

func TestQuoteUsesConfiguredKey(t *testing.T) {
	srv, queries := newServer(t, map[string]string{"/quote": `{"close":"1"}`})
	p := New(WithBaseURL(srv.URL))
	require.NoError(t, p.Init(map[string]string{credAPIKey: "secret"}))

	_, err := p.Fetcher(provider.ModelQuote).Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "X"})
	require.NoError(t, err)
	assert.Equal(t, "secret", (*queries)[0].Get("apikey"))
}

func TestErrorBodyWithStatusOK(t *testing.T) {
	srv, _ := newServer(t, map[string]string{
		"/quote": `{"code":401,"message":"**symbol** not available with demo key","status":"error"}`,
	})
	p := New(WithBaseURL(srv.URL))

	_, err := p.Fetcher(provider.ModelQuote).Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "ZZZ"})
	var noData *provider.ErrNoData
	require.ErrorAs(t, err, &noData)
	assert.Equal(t, "ZZZ", noData.Symbol)
	assert.Contains(t, noData.Detail, "demo key")
}

func TestTimeSeriesIsChronological(t *testing.T) {
	srv, queries := newServer(t, map[string]string{
		"/time_series": `{"meta":{"symbol":"MSFT","interval":"1day"},"status":"ok","values":[
			{"datetime":"2024-03-05","open":"3","high":"3","low":"3","close":"3","volume":"30"},
			{"datetime":"2024-03-04","open":"2","high":"2","low":"2","close":"2","volume":"20"},
			{"datetime":"2024-03-01","open":"1","high":"1","low":"1","close":"1","volume":"10"}]}`,
	})
	p := New(WithBaseURL(srv.URL))

	res, err := p.Fetcher(provider.ModelHistorical).Fetch(context.Background(), provider.QueryParams{
		provider.ParamSymbol: "MSFT",
		provider.ParamPeriod: "1y",
	})
	require.NoError(t, err)

	h := res.Data.(*models.History)
	assert.Equal(t, []string{"2024-03-01", "2024-03-04", "2024-03-05"}, h.Dates())
	assert.Equal(t, []float64{1, 2, 3}, h.Closes())
	assert.Equal(t, "365", (*queries)[0].Get("outputsize"))
	assert.Equal(t, "1day", (*queries)[0].Get("interval"))
}

func TestOutputSize(t *testing.T) {
	assert.Equal(t, 30, OutputSize("1mo"))
	assert.Equal(t, 1825, OutputSize("5y"))
	assert.Equal(t, 90, OutputSize("ytd"))
	assert.Equal(t, 90, OutputSize(""))
	assert.Equal(t, 5000, OutputSize("max"))
}
