// Package news collects recent headlines and social posts for a query from
// Google News, Yahoo Finance, Reddit and StockTwits, plus stock pages
// (Finviz, Seeking Alpha, MarketWatch) or crypto feeds by asset type.
package news

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed/rss"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/stonks/internal/catalog"
	"github.com/seenimoa/stonks/internal/infra"
	"github.com/seenimoa/stonks/pkg/models"
)

const (
	// MaxAge is how far back Google News items are kept.
	MaxAge = 30 * 24 * time.Hour

	perQuery     = 40
	finvizRows   = 25
	dedupePrefix = 50
	cacheTTL     = 10 * time.Minute
)

// queryVariations widen the Google News search.
var queryVariations = []string{"stock", "market", "finance", "price", "news", "trading", "investment", "analysis"}

// Endpoints are the upstream base URLs.
type Endpoints struct {
	Google            string
	Finviz            string
	Yahoo             string
	SeekingAlpha      string // + /{ticker}/news
	MarketWatch       string
	Reddit            string // + /r/{sub}/search.json
	StockTwits        string // + /{symbol}.json
	CoinGeckoTrending string
	CryptoCompare     string
	TheBlock          string
}

// DefaultEndpoints returns the public upstream URLs.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Google:            "https://news.google.com/rss/search",
		Finviz:            "https://finviz.com/quote.ashx",
		Yahoo:             "https://query1.finance.yahoo.com/v7/finance/news",
		SeekingAlpha:      "https://seekingalpha.com/api/v3/symbols",
		MarketWatch:       "https://www.marketwatch.com/search",
		Reddit:            "https://www.reddit.com",
		StockTwits:        "https://api.stocktwits.com/api/2/streams/symbol",
		CoinGeckoTrending: "https://api.coingecko.com/api/v3/search/trending",
		CryptoCompare:     "https://min-api.cryptocompare.com/data/v2/news/",
		TheBlock:          "https://www.theblock.co/api/articles",
	}
}

// Client fetches headlines. It is safe for concurrent use.
type Client struct {
	ep      Endpoints
	limiter *infra.RateLimiter
	cache   *infra.Cache
	log     zerolog.Logger
	now     func() time.Time
}

type Option func(*Client)

// WithEndpoints replaces every upstream URL.
func WithEndpoints(e Endpoints) Option { return func(c *Client) { c.ep = e } }

func WithLogger(l zerolog.Logger) Option { return func(c *Client) { c.log = l } }

// WithClock overrides time.Now for the age cutoff and undated items.
func WithClock(now func() time.Time) Option { return func(c *Client) { c.now = now } }

// New returns a Client pacing outbound requests to about 6 per second.
func New(opts ...Option) *Client {
	c := &Client{
		ep:      DefaultEndpoints(),
		limiter: infra.NewRateLimiter(4, 150*time.Millisecond),
		cache:   infra.NewCache(cacheTTL),
		log:     log.Logger,
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With().Str("component", "news").Logger()
	return c
}

// ════════════════════════════════════════════════════════════════════
// Collect
// ════════════════════════════════════════════════════════════════════

type fetchFunc func(ctx context.Context, query string) ([]models.NewsArticle, error)

type source struct {
	name  string
	fetch fetchFunc
}

// sources lists what Collect queries for assetType, in report order.
func (c *Client) sources(assetType string) []source {
	srcs := []source{
		{"Google News", func(ctx context.Context, q string) ([]models.NewsArticle, error) { return c.Google(ctx, q), nil }},
		{"Yahoo Finance", c.Yahoo},
		{"Reddit", c.Reddit},
		{"StockTwits", c.StockTwits},
	}
	class, err := catalog.ParseClass(assetType)
	if err != nil {
		return srcs
	}
	switch class {
	case catalog.ClassStocks:
		srcs = append(srcs,
			source{"Finviz", c.Finviz},
			source{"Seeking Alpha", c.SeekingAlpha},
			source{"MarketWatch", c.MarketWatch},
		)
	case catalog.ClassCrypto:
		srcs = append(srcs, source{"Crypto Sources", c.Crypto})
	}
	return srcs
}

// Collect queries every source for assetType concurrently and returns the
// deduplicated headlines plus the sources that produced any, e.g.
// "Google News (57)". Failing sources are skipped; an empty result is not
// an error.
func (c *Client) Collect(ctx context.Context, query, assetType string) ([]models.NewsArticle, []string, error) {
	key := "news:" + strings.ToLower(query) + ":" + assetType
	if v, ok := c.cache.Get(key); ok {
		hit := v.(collected)
		return hit.articles, hit.sources, nil
	}

	srcs := c.sources(assetType)
	results := make([][]models.NewsArticle, len(srcs))
	var g errgroup.Group
	for i, src := range srcs {
		g.Go(func() error {
			got, err := src.fetch(ctx, query)
			if err != nil {
				c.log.Debug().Err(err).Str("source", src.name).Str("query", query).Msg("news source failed")
			}
			results[i] = got
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var all []models.NewsArticle
	sources := []string{}
	for i, got := range results {
		if len(got) == 0 {
			continue
		}
		all = append(all, got...)
		sources = append(sources, fmt.Sprintf("%s (%d)", srcs[i].name, len(got)))
	}

	all = Dedupe(all)
	if len(all) > 0 {
		c.cache.Set(key, collected{articles: all, sources: sources})
	}
	return all, sources, nil
}

type collected struct {
	articles []models.NewsArticle
	sources  []string
}

// Dedupe keeps the first article per lowercased 50-character title prefix.
func Dedupe(articles []models.NewsArticle) []models.NewsArticle {
	seen := make(map[string]bool, len(articles))
	out := make([]models.NewsArticle, 0, len(articles))
	for _, a := range articles {
		r := []rune(a.Title)
		if len(r) > dedupePrefix {
			r = r[:dedupePrefix]
		}
		k := strings.ToLower(string(r))
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, a)
	}
	return out
}

// ════════════════════════════════════════════════════════════════════
// Google News
// ════════════════════════════════════════════════════════════════════

// Google searches every query variation, up to 40 items each, dropping
// exact duplicate titles and items older than MaxAge. Items without a
// parseable date are kept.
func (c *Client) Google(ctx context.Context, query string) []models.NewsArticle {
	cutoff := c.now().Add(-MaxAge)
	seen := make(map[string]bool)
	var out []models.NewsArticle

	for _, v := range queryVariations {
		items, err := c.googleSearch(ctx, query+" "+v)
		if err != nil {
			if ctx.Err() != nil {
				return out
			}
			c.log.Debug().Err(err).Str("query", query+" "+v).Msg("google news query failed")
			continue
		}
		if len(items) > perQuery {
			items = items[:perQuery]
		}
		for _, it := range items {
			if it.Title == "" || seen[it.Title] {
				continue
			}
			a := models.NewsArticle{Title: it.Title, URL: it.Link, Source: "Google News"}
			if it.Source != nil && it.Source.Title != "" {
				a.Source = it.Source.Title
			}
			if it.PubDateParsed != nil {
				if it.PubDateParsed.Before(cutoff) {
					continue
				}
				a.PublishedAt = *it.PubDateParsed
			}
			seen[it.Title] = true
			out = append(out, a)
		}
	}
	return out
}

func (c *Client) googleSearch(ctx context.Context, q string) ([]*rss.Item, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	u := c.ep.Google + "?" + url.Values{
		"q":    {q},
		"hl":   {"en-US"},
		"gl":   {"US"},
		"ceid": {"US:en"},
	}.Encode()

	data, err := infra.GetBytes(ctx, u, map[string]string{"Accept": "application/rss+xml, application/xml"})
	if err != nil {
		return nil, err
	}
	feed, err := (&rss.Parser{}).Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse RSS: %w", err)
	}
	return feed.Items, nil
}

// ════════════════════════════════════════════════════════════════════
// Finviz
// ════════════════════════════════════════════════════════════════════

// Finviz scrapes the first 25 rows of the quote page news table. Rows
// that only carry a time inherit the date of the row above; "Today" is
// the current date.
func (c *Client) Finviz(ctx context.Context, ticker string) ([]models.NewsArticle, error) {
	u := c.ep.Finviz + "?" + url.Values{"t": {strings.ToUpper(ticker)}}.Encode()
	doc, err := c.getHTML(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("finviz %s: %w", ticker, err)
	}
	return parseFinviz(doc, c.now()), nil
}

func parseFinviz(doc *goquery.Document, now time.Time) []models.NewsArticle {
	var out []models.NewsArticle
	current := now
	doc.Find("table#news-table tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if i >= finvizRows {
			return false
		}
		cells := row.Find("td")
		if cells.Length() < 2 {
			return true
		}
		link := cells.Eq(1).Find("a").First()
		title := strings.TrimSpace(link.Text())
		if link.Length() == 0 || title == "" {
			return true
		}
		current = finvizDate(strings.TrimSpace(cells.Eq(0).Text()), current, now)
		href, _ := link.Attr("href")
		out = append(out, models.NewsArticle{
			Title:       title,
			URL:         href,
			Source:      "Finviz",
			PublishedAt: current,
		})
		return true
	})
	return out
}

// finvizDate reads "Dec-13-24 08:30AM", "Today 08:30AM" or "08:30AM".
func finvizDate(s string, prev, now time.Time) time.Time {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return prev
	}
	switch {
	case strings.EqualFold(fields[0], "today"):
		return now
	case strings.Contains(fields[0], ":"):
		return prev
	}
	d, err := time.ParseInLocation("Jan-02-06", fields[0], now.Location())
	if err != nil {
		return prev
	}
	return d
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

// getJSON waits for the limiter, then decodes a JSON response into out.
func (c *Client) getJSON(ctx context.Context, u string, headers map[string]string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	h := map[string]string{"Accept": "application/json"}
	maps.Copy(h, headers)
	data, err := infra.GetBytes(ctx, u, h)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", u, err)
	}
	return nil
}

// getHTML waits for the limiter, then parses an HTML page.
func (c *Client) getHTML(ctx context.Context, u string) (*goquery.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	body, _, err := infra.DoGet(ctx, u, map[string]string{"Accept": "text/html"})
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return goquery.NewDocumentFromReader(body)
}

// clip cuts s to n runes.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", time.DateOnly}

// parseTime reads an ISO-like timestamp, falling back to fallback.
func parseTime(s string, fallback time.Time) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return fallback
}

// unixOr converts epoch seconds, falling back when secs is not positive.
func unixOr(secs float64, fallback time.Time) time.Time {
	if secs <= 0 {
		return fallback
	}
	return time.Unix(int64(secs), 0).UTC()
}
