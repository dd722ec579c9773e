package news

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/seenimoa/stonks/pkg/models"
)

const (
	trendingCoins      = 5
	trendingScore      = 0.4
	cryptoCompareItems = 20
	cryptoCompareBody  = 200
	theBlockItems      = 10
)

// Crypto merges the CoinGecko trending list, CryptoCompare news and The
// Block. Each feed is best effort.
func (c *Client) Crypto(ctx context.Context, query string) ([]models.NewsArticle, error) {
	feeds := []struct {
		name  string
		fetch fetchFunc
	}{
		{"coingecko trending", c.trending},
		{"cryptocompare", c.cryptoCompare},
		{"the block", c.theBlock},
	}
	var out []models.NewsArticle
	for _, f := range feeds {
		got, err := f.fetch(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			c.log.Debug().Err(err).Str("feed", f.name).Msg("crypto feed failed")
			continue
		}
		out = append(out, got...)
	}
	return out, nil
}

type trendingResponse struct {
	Coins []struct {
		Item struct {
			ID            string `json:"id"`
			Name          string `json:"name"`
			Symbol        string `json:"symbol"`
			MarketCapRank *int   `json:"market_cap_rank"`
		} `json:"item"`
	} `json:"coins"`
}

// trending reports the query's coin when it is among the top trending
// coins, with a fixed positive source score.
func (c *Client) trending(ctx context.Context, query string) ([]models.NewsArticle, error) {
	var resp trendingResponse
	if err := c.getJSON(ctx, c.ep.CoinGeckoTrending, nil, &resp); err != nil {
		return nil, fmt.Errorf("trending: %w", err)
	}
	q := strings.ToLower(query)
	now := c.now()

	var out []models.NewsArticle
	for _, coin := range resp.Coins[:min(trendingCoins, len(resp.Coins))] {
		it := coin.Item
		if !strings.Contains(strings.ToLower(it.Name), q) && !strings.Contains(strings.ToLower(it.Symbol), q) {
			continue
		}
		rank := "N/A"
		if it.MarketCapRank != nil {
			rank = strconv.Itoa(*it.MarketCapRank)
		}
		score := trendingScore
		out = append(out, models.NewsArticle{
			Title:           fmt.Sprintf("%s is trending #%s on CoinGecko", it.Name, rank),
			URL:             "https://coingecko.com/en/coins/" + it.ID,
			Source:          "CoinGecko Trending",
			PublishedAt:     now,
			SourceSentiment: &score,
		})
	}
	return out, nil
}

type cryptoCompareResponse struct {
	Data []struct {
		Title       string  `json:"title"`
		Body        string  `json:"body"`
		URL         string  `json:"url"`
		Source      string  `json:"source"`
		PublishedOn float64 `json:"published_on"`
	} `json:"Data"`
}

func (c *Client) cryptoCompare(ctx context.Context, query string) ([]models.NewsArticle, error) {
	u := c.ep.CryptoCompare + "?" + url.Values{"categories": {query}}.Encode()
	var resp cryptoCompareResponse
	if err := c.getJSON(ctx, u, nil, &resp); err != nil {
		return nil, fmt.Errorf("cryptocompare: %w", err)
	}
	now := c.now()

	var out []models.NewsArticle
	for _, d := range resp.Data[:min(cryptoCompareItems, len(resp.Data))] {
		if d.Title == "" {
			continue
		}
		a := models.NewsArticle{
			Title:       d.Title,
			URL:         d.URL,
			Source:      d.Source,
			PublishedAt: unixOr(d.PublishedOn, now),
			Body:        d.Title + " " + clip(d.Body, cryptoCompareBody),
		}
		if a.Source == "" {
			a.Source = "CryptoCompare"
		}
		out = append(out, a)
	}
	return out, nil
}

type theBlockResponse struct {
	Data []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"published_at"`
	} `json:"data"`
}

func (c *Client) theBlock(ctx context.Context, query string) ([]models.NewsArticle, error) {
	u := c.ep.TheBlock + "?" + url.Values{"q": {query}}.Encode()
	var resp theBlockResponse
	if err := c.getJSON(ctx, u, nil, &resp); err != nil {
		return nil, fmt.Errorf("the block: %w", err)
	}
	now := c.now()

	var out []models.NewsArticle
	for _, d := range resp.Data[:min(theBlockItems, len(resp.Data))] {
		if d.Title == "" {
			continue
		}
		out = append(out, models.NewsArticle{
			Title:       d.Title,
			URL:         d.URL,
			Source:      "The Block",
			PublishedAt: parseTime(d.PublishedAt, now),
		})
	}
	return out, nil
}
