// Package fred implements the FRED (Federal Reserve Economic Data)
// provider. Without an API key it reads the public fredgraph.csv
// download; with one it uses the observations API.
//
// Docs: https://fred.stlouisfed.org/docs/api/fred/
package fred

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/seenimoa/stonks/internal/infra"
	"github.com/seenimoa/stonks/internal/provider"
	"github.com/seenimoa/stonks/pkg/models"
)

const (
	providerName   = "fred"
	defaultCSVURL  = "https://fred.stlouisfed.org/graph/fredgraph.csv"
	defaultAPIURL  = "https://api.stlouisfed.org/fred"
	credAPIKey     = "api_key"
	missingValue   = "."
	sourceFullName = "Federal Reserve Economic Data (FRED)"
)

// Provider implements provider.Provider for FRED.
type Provider struct {
	provider.BaseProvider
	csvURL string
	apiURL string
}

type Option func(*Provider)

// WithCSVURL overrides the fredgraph.csv endpoint.
func WithCSVURL(u string) Option { return func(p *Provider) { p.csvURL = u } }

// WithAPIURL overrides the API root.
func WithAPIURL(u string) Option {
	return func(p *Provider) { p.apiURL = strings.TrimRight(u, "/") }
}

func New(opts ...Option) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Federal Reserve Economic Data - 800K+ economic time series",
			"https://fred.stlouisfed.org",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "Optional FRED API key; the public CSV download is used without one",
					EnvVar:      "FRED_API_KEY",
				},
			},
		),
		csvURL: defaultCSVURL,
		apiURL: defaultAPIURL,
	}
	for _, o := range opts {
		o(p)
	}
	p.RegisterFetcher(newSeriesFetcher(p))
	return p
}

func (p *Provider) Ping(ctx context.Context) error {
	if _, err := p.observations(ctx, "DGS10"); err != nil {
		return fmt.Errorf("fred ping: %w", err)
	}
	return nil
}

// observations returns the series sorted by date with missing values
// dropped.
func (p *Provider) observations(ctx context.Context, seriesID string) ([]models.DatedValue, error) {
	var (
		points []models.DatedValue
		err    error
	)
	if key := p.Credential(credAPIKey); key != "" {
		points, err = p.fetchAPI(ctx, seriesID, key)
	} else {
		points, err = p.fetchCSV(ctx, seriesID)
	}
	if err != nil {
		return nil, fmt.Errorf("fred series %s: %w", seriesID, err)
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}

func (p *Provider) fetchCSV(ctx context.Context, seriesID string) ([]models.DatedValue, error) {
	body, _, err := infra.DoGet(ctx, p.csvURL+"?id="+url.QueryEscape(seriesID), map[string]string{
		"Accept": "text/csv, */*",
	})
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return parseCSV(body)
}

// parseCSV reads a two-column DATE,VALUE download. The header row and
// unparsable rows are skipped.
func parseCSV(r io.Reader) ([]models.DatedValue, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("csv has no data rows")
	}

	points := make([]models.DatedValue, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 2 || row[1] == missingValue {
			continue
		}
		v, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			continue
		}
		points = append(points, models.DatedValue{Date: row[0], Value: v})
	}
	return points, nil
}

func (p *Provider) fetchAPI(ctx context.Context, seriesID, apiKey string) ([]models.DatedValue, error) {
	q := url.Values{
		"series_id": {seriesID},
		"api_key":   {apiKey},
		"file_type": {"json"},
	}
	data, err := infra.GetBytes(ctx, p.apiURL+"/series/observations?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var resp fredObservationsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse observations: %w", err)
	}
	if resp.ErrorMessage != "" {
		return nil, &provider.ErrNoData{Provider: providerName, Symbol: seriesID, Detail: resp.ErrorMessage}
	}

	points := make([]models.DatedValue, 0, len(resp.Observations))
	for _, o := range resp.Observations {
		if o.Value == missingValue {
			continue
		}
		v, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			continue
		}
		points = append(points, models.DatedValue{Date: o.Date, Value: v})
	}
	return points, nil
}
