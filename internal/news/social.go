package news

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/seenimoa/stonks/pkg/models"
)

// Reddit rejects default client agents.
const socialUserAgent = "StonksTerminal/2.0"

// ════════════════════════════════════════════════════════════════════
// Reddit
// ════════════════════════════════════════════════════════════════════

var subreddits = []string{
	"wallstreetbets", "stocks", "investing", "cryptocurrency",
	"stockmarket", "options", "thetagang", "dividends",
	"Bitcoin", "ethtrader", "altcoin",
}

const (
	redditLimit    = 15
	redditSelfText = 300
)

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	CreatedUTC  float64 `json:"created_utc"`
	Permalink   string  `json:"permalink"`
	Ups         int     `json:"ups"`
	NumComments int     `json:"num_comments"`
}

// Reddit searches the newest posts of each finance and crypto subreddit.
// A failing subreddit is skipped. Posts are scored on the title plus the
// start of the self text.
func (c *Client) Reddit(ctx context.Context, query string) ([]models.NewsArticle, error) {
	now := c.now()
	var out []models.NewsArticle
	for _, sub := range subreddits {
		u := c.ep.Reddit + "/r/" + sub + "/search.json?" + url.Values{
			"q":           {query},
			"sort":        {"new"},
			"limit":       {strconv.Itoa(redditLimit)},
			"restrict_sr": {"1"},
		}.Encode()

		var listing redditListing
		if err := c.getJSON(ctx, u, map[string]string{"User-Agent": socialUserAgent}, &listing); err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			c.log.Debug().Err(err).Str("subreddit", sub).Msg("reddit search failed")
			continue
		}
		for _, child := range listing.Data.Children {
			p := child.Data
			if p.Title == "" {
				continue
			}
			out = append(out, models.NewsArticle{
				Title:       p.Title,
				URL:         "https://reddit.com" + p.Permalink,
				Source:      "r/" + sub,
				PublishedAt: unixOr(p.CreatedUTC, now),
				Upvotes:     p.Ups,
				Comments:    p.NumComments,
				Body:        p.Title + " " + clip(p.SelfText, redditSelfText),
			})
		}
	}
	return out, nil
}

// ════════════════════════════════════════════════════════════════════
// StockTwits
// ════════════════════════════════════════════════════════════════════

const (
	stocktwitsMessages = 20
	stocktwitsTitle    = 200
	stocktwitsScore    = 0.7
)

type stocktwitsStream struct {
	Messages []struct {
		ID        int64  `json:"id"`
		Body      string `json:"body"`
		CreatedAt string `json:"created_at"`
		Entities  struct {
			Sentiment *struct {
				Basic string `json:"basic"`
			} `json:"sentiment"`
		} `json:"entities"`
	} `json:"messages"`
}

// StockTwits reads the symbol stream. Messages tagged Bullish or Bearish
// carry a fixed source score of ±0.7; untagged ones are scored on their
// full body.
func (c *Client) StockTwits(ctx context.Context, symbol string) ([]models.NewsArticle, error) {
	u := c.ep.StockTwits + "/" + url.PathEscape(strings.ToUpper(symbol)) + ".json"
	var stream stocktwitsStream
	if err := c.getJSON(ctx, u, map[string]string{"User-Agent": socialUserAgent}, &stream); err != nil {
		return nil, fmt.Errorf("stocktwits %s: %w", symbol, err)
	}
	now := c.now()

	var out []models.NewsArticle
	for _, m := range stream.Messages[:min(stocktwitsMessages, len(stream.Messages))] {
		if m.Body == "" {
			continue
		}
		title := clip(m.Body, stocktwitsTitle)
		if title != m.Body {
			title += "..."
		}
		a := models.NewsArticle{
			Title:       title,
			URL:         "https://stocktwits.com/message/" + strconv.FormatInt(m.ID, 10),
			Source:      "StockTwits",
			PublishedAt: parseTime(m.CreatedAt, now),
			SourceTag:   "neutral",
			Body:        m.Body,
		}
		if s := m.Entities.Sentiment; s != nil && s.Basic != "" {
			a.SourceTag = s.Basic
		}
		switch a.SourceTag {
		case "Bullish":
			v := stocktwitsScore
			a.SourceSentiment = &v
		case "Bearish":
			v := -stocktwitsScore
			a.SourceSentiment = &v
		}
		out = append(out, a)
	}
	return out, nil
}
