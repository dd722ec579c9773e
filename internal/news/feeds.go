package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/stonks/pkg/models"
)

const (
	yahooItems        = 20
	seekingAlphaItems = 15
	marketWatchItems  = 15

	seekingAlphaSite = "https://seekingalpha.com"
)

// ════════════════════════════════════════════════════════════════════
// Yahoo Finance
// ════════════════════════════════════════════════════════════════════

type yahooNews struct {
	Articles []yahooItem `json:"articles"`
	Items    []yahooItem `json:"items"`
}

type yahooItem struct {
	Title               string  `json:"title"`
	Link                string  `json:"link"`
	URL                 string  `json:"url"`
	Publisher           string  `json:"publisher"`
	ProviderPublishTime float64 `json:"providerPublishTime"`
	PublishedAt         string  `json:"published_at"`
}

// Yahoo reads the first 20 items of the Yahoo Finance news feed for a
// ticker.
func (c *Client) Yahoo(ctx context.Context, ticker string) ([]models.NewsArticle, error) {
	u := c.ep.Yahoo + "?" + url.Values{"symbols": {strings.ToUpper(ticker)}}.Encode()
	var resp yahooNews
	if err := c.getJSON(ctx, u, nil, &resp); err != nil {
		return nil, fmt.Errorf("yahoo news %s: %w", ticker, err)
	}
	items := resp.Articles
	if items == nil {
		items = resp.Items
	}
	now := c.now()

	var out []models.NewsArticle
	for _, it := range items[:min(yahooItems, len(items))] {
		if it.Title == "" {
			continue
		}
		a := models.NewsArticle{
			Title:       it.Title,
			URL:         it.Link,
			Source:      it.Publisher,
			PublishedAt: unixOr(it.ProviderPublishTime, parseTime(it.PublishedAt, now)),
		}
		if a.URL == "" {
			a.URL = it.URL
		}
		if a.Source == "" {
			a.Source = "Yahoo Finance"
		}
		out = append(out, a)
	}
	return out, nil
}

// ════════════════════════════════════════════════════════════════════
// Seeking Alpha
// ════════════════════════════════════════════════════════════════════

type seekingAlphaNews struct {
	Data []struct {
		Attributes struct {
			Title     string `json:"title"`
			PublishOn string `json:"publishOn"`
			Path      string `json:"path"`
		} `json:"attributes"`
	} `json:"data"`
}

// SeekingAlpha reads the first 15 items of a symbol's news list.
func (c *Client) SeekingAlpha(ctx context.Context, ticker string) ([]models.NewsArticle, error) {
	u := c.ep.SeekingAlpha + "/" + url.PathEscape(strings.ToUpper(ticker)) + "/news"
	var resp seekingAlphaNews
	if err := c.getJSON(ctx, u, nil, &resp); err != nil {
		return nil, fmt.Errorf("seeking alpha %s: %w", ticker, err)
	}
	now := c.now()

	var out []models.NewsArticle
	for _, d := range resp.Data[:min(seekingAlphaItems, len(resp.Data))] {
		attrs := d.Attributes
		if attrs.Title == "" {
			continue
		}
		out = append(out, models.NewsArticle{
			Title:       attrs.Title,
			URL:         seekingAlphaSite + attrs.Path,
			Source:      "Seeking Alpha",
			PublishedAt: parseTime(attrs.PublishOn, now),
		})
	}
	return out, nil
}

// ════════════════════════════════════════════════════════════════════
// MarketWatch
// ════════════════════════════════════════════════════════════════════

// MarketWatch scrapes the latest-news search page. Results carry no date
// and are stamped with the current time.
func (c *Client) MarketWatch(ctx context.Context, query string) ([]models.NewsArticle, error) {
	u := c.ep.MarketWatch + "?" + url.Values{"q": {query}, "mod": {"mw_latestnews"}}.Encode()
	doc, err := c.getHTML(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("marketwatch %s: %w", query, err)
	}
	return parseMarketWatch(doc, c.now()), nil
}

// parseMarketWatch takes the first heading or link of each article card.
func parseMarketWatch(doc *goquery.Document, now time.Time) []models.NewsArticle {
	var out []models.NewsArticle
	doc.Find("div.article__content").EachWithBreak(func(i int, card *goquery.Selection) bool {
		if i >= marketWatchItems {
			return false
		}
		el := card.Find("h3, a").First()
		title := strings.TrimSpace(el.Text())
		if el.Length() == 0 || title == "" {
			return true
		}
		href, _ := el.Attr("href")
		if href == "" {
			href, _ = el.Find("a").First().Attr("href")
		}
		out = append(out, models.NewsArticle{
			Title:       title,
			URL:         href,
			Source:      "MarketWatch",
			PublishedAt: now,
		})
		return true
	})
	return out
}
