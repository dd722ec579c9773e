package models

import "time"

// NewsArticle is a headline collected from a news feed, social stream or
// scraped page.
type NewsArticle struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Summary     string    `json:"summary,omitempty"`
	PublishedAt time.Time `json:"published_at"`

	// Reddit engagement.
	Upvotes  int `json:"upvotes,omitempty"`
	Comments int `json:"comments,omitempty"`

	// SourceSentiment is a score in [-1, 1] assigned by the source itself,
	// such as a StockTwits bullish tag. When set it replaces lexicon scoring.
	SourceSentiment *float64 `json:"source_sentiment,omitempty"`
	// SourceTag is the source's own label, e.g. "Bullish".
	SourceTag string `json:"source_tag,omitempty"`

	// Body is the text to score when Title is a truncation or Summary is
	// not shown, e.g. a post's self text.
	Body string `json:"-"`
}

// Text returns what a sentiment scorer should read: Body when present,
// otherwise the title followed by the summary.
func (a NewsArticle) Text() string {
	if a.Body != "" {
		return a.Body
	}
	if a.Summary != "" {
		return a.Title + " " + a.Summary
	}
	return a.Title
}
