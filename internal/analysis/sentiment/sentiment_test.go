package sentiment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/stonks/internal/market"
	"github.com/seenimoa/stonks/pkg/models"
)

func TestScoreText(t *testing.T) {
	tests := []struct {
		text  string
		score float64
		label string
	}{
		{"Stocks surge on strong earnings", 1, LabelPositive},
		{"Market crash fears as stocks rally", -0.333, LabelNegative},
		{"Surge! surge, SURGE", 1, LabelPositive},
		{"Company holds annual meeting", 0, LabelNeutral},
		{"Gain then loss", 0, LabelNeutral},
		{"Rally meets probe and lawsuit plus profit and growth", 0.2, LabelNeutral},
		{"", 0, LabelNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			s := ScoreText(tt.text)
			assert.Equal(t, tt.score, s.Score)
			assert.Equal(t, tt.label, s.Label)
		})
	}
}

func TestScoreTextWords(t *testing.T) {
	s := ScoreText("Fraud probe hits rally")
	assert.Equal(t, []string{"rally"}, s.PositiveWords)
	assert.Equal(t, []string{"fraud", "probe"}, s.NegativeWords)
	assert.Equal(t, 1, s.PosWeight)
	assert.Equal(t, 3, s.NegWeight)
	assert.Equal(t, -0.5, s.Score)
}

func TestScoreArticle(t *testing.T) {
	published := time.Date(2024, 3, 5, 22, 0, 0, 0, time.FixedZone("EST", -5*3600))
	a := ScoreArticle(models.NewsArticle{Title: "Shares soar", Source: "Finviz", PublishedAt: published})
	assert.Equal(t, "2024-03-05", a.Date, "date in the publisher's zone")
	assert.Equal(t, LabelPositive, a.Sentiment.Label)

	assert.Empty(t, ScoreArticle(models.NewsArticle{Title: "x"}).Date)
}

func TestScoreArticleSourceSentiment(t *testing.T) {
	bearish := -0.7
	a := ScoreArticle(models.NewsArticle{Title: "Shares soar", SourceSentiment: &bearish, SourceTag: "Bearish"})
	assert.Equal(t, -0.7, a.Sentiment.Score)
	assert.Equal(t, LabelNegative, a.Sentiment.Label)
	assert.Empty(t, a.Sentiment.PositiveWords)

	trending := 0.4
	assert.Equal(t, LabelPositive, ScoreArticle(models.NewsArticle{Title: "x", SourceSentiment: &trending}).Sentiment.Label)
}

func TestScoreArticleBody(t *testing.T) {
	// the truncated title is neutral; the full body is not
	a := ScoreArticle(models.NewsArticle{Title: "Long post...", Body: "Long post about a fraud and a crash"})
	assert.Equal(t, LabelNegative, a.Sentiment.Label)

	b := ScoreArticle(models.NewsArticle{Title: "Quiet day", Summary: "then a rally"})
	assert.Equal(t, []string{"rally"}, b.Sentiment.PositiveWords)
}

func day(d int) time.Time {
	return time.Date(2024, 5, d, 12, 0, 0, 0, time.UTC)
}

func TestAnalyzeTimeline(t *testing.T) {
	articles := []models.NewsArticle{
		{Title: "Stock plunge deepens", PublishedAt: day(1)},
		{Title: "Crash worries", PublishedAt: day(1)},
		{Title: "Quiet session", PublishedAt: day(2)},
		{Title: "Decline continues", PublishedAt: day(3)},
		{Title: "Shares surge", PublishedAt: day(4)},
		{Title: "Rally builds", PublishedAt: day(5)},
		{Title: "Record high", PublishedAt: day(6)},
		{Title: "No date here"},
	}
	now := day(7)
	r, err := Analyze("AAPL", "stock", articles, []string{"Google News (8)"}, now)
	require.NoError(t, err)

	assert.Equal(t, 8, r.ArticlesAnalyzed)
	assert.Equal(t, ScanPeriod, r.ScanPeriod)
	assert.Equal(t, now, r.Timestamp)

	require.Len(t, r.Timeline, 6)
	d1 := r.Timeline[0]
	assert.Equal(t, "2024-05-01", d1.Date)
	assert.Equal(t, 2, d1.ArticleCount)
	assert.Equal(t, -1.0, d1.AvgSentiment)
	assert.Equal(t, -2, d1.DailyCumulative)
	assert.Equal(t, 1, r.Timeline[1].Neutral)

	running := []int{-2, -2, -3, -2, -1, 0}
	for i, d := range r.Timeline {
		assert.Equal(t, running[i], d.RunningCumulative, d.Date)
		require.NotNil(t, d.RollingAvg)
		require.NotNil(t, d.RollingAvg7d)
	}
	assert.Equal(t, -1.0, *d1.RollingAvg)
	assert.Equal(t, -0.667, *r.Timeline[2].RollingAvg)
	assert.Equal(t, 0.0, *r.Timeline[3].RollingAvg)
	assert.Equal(t, 0.333, *r.Timeline[4].RollingAvg)
	assert.Equal(t, 0.167, *r.Timeline[5].RollingAvg7d)

	agg := r.Aggregate
	assert.Equal(t, TrendImproving, agg.Trend)
	assert.Equal(t, 1.667, agg.TrendStrength)
	assert.Equal(t, 3, agg.PositiveCount)
	assert.Equal(t, 3, agg.NegativeCount)
	assert.Equal(t, 2, agg.NeutralCount)
	assert.Equal(t, 0, agg.CumulativeScore)
	assert.Equal(t, 1.0, agg.StrongestPositive)
	assert.Equal(t, -1.0, agg.StrongestNegative)
	assert.Equal(t, "NEUTRAL", agg.Overall)
	assert.Equal(t, "HOLD", agg.Signal)

	require.Len(t, r.News, 8)
	assert.Equal(t, "Record high", r.News[0].Title)
	assert.Equal(t, "No date here", r.News[7].Title)
}

func TestAnalyzeShortTimelineIsStable(t *testing.T) {
	r, err := Analyze("BTC", "crypto", []models.NewsArticle{
		{Title: "Bitcoin surge", PublishedAt: day(1)},
		{Title: "Bitcoin rally", PublishedAt: day(2)},
	}, nil, day(3))
	require.NoError(t, err)

	assert.Equal(t, TrendStable, r.Aggregate.Trend)
	assert.Nil(t, r.Timeline[0].RollingAvg)
	assert.Equal(t, "VERY BULLISH", r.Aggregate.Overall)
	assert.Equal(t, "STRONG BUY", r.Aggregate.Signal)
	assert.Equal(t, 2.0, r.Aggregate.WeightedScore)
	assert.NotNil(t, r.SourcesScanned)
}

func TestOverall(t *testing.T) {
	tests := []struct {
		w       float64
		overall string
		signal  string
	}{
		{0.31, "VERY BULLISH", "STRONG BUY"},
		{0.2, "BULLISH", "BUY"},
		{0.15, "NEUTRAL", "HOLD"},
		{-0.2, "BEARISH", "SELL"},
		{-0.5, "VERY BEARISH", "STRONG SELL"},
	}
	for _, tt := range tests {
		o, s := overall(tt.w)
		assert.Equal(t, tt.overall, o, "%v", tt.w)
		assert.Equal(t, tt.signal, s, "%v", tt.w)
	}
}

func TestAnalyzeCapsNewsAndTitles(t *testing.T) {
	var articles []models.NewsArticle
	for i := range 50 {
		articles = append(articles, models.NewsArticle{
			Title:       strings.Repeat("x", 120) + string(rune('a'+i%26)),
			PublishedAt: day(1).Add(time.Duration(i) * time.Minute),
		})
	}
	r, err := Analyze("q", "stock", articles, nil, day(2))
	require.NoError(t, err)

	assert.Len(t, r.News, maxNews)
	assert.Equal(t, articles[49].Title, r.News[0].Title)
	require.Len(t, r.Timeline, 1)
	assert.Len(t, r.Timeline[0].Articles, dayArticles)
	assert.Len(t, r.Timeline[0].Articles[0].Title, dayTitleLen)
}

type stubFeed struct {
	articles []models.NewsArticle
	err      error
}

func (f stubFeed) Collect(context.Context, string, string) ([]models.NewsArticle, []string, error) {
	return f.articles, []string{"stub"}, f.err
}

func TestAnalyzerRun(t *testing.T) {
	_, err := NewAnalyzer(stubFeed{}).Run(context.Background(), "x", "stock")
	assert.ErrorIs(t, err, ErrNoNews)
	assert.ErrorIs(t, err, market.ErrNotFound)

	boom := errors.New("boom")
	_, err = NewAnalyzer(stubFeed{err: boom}).Run(context.Background(), "x", "stock")
	assert.ErrorIs(t, err, boom)

	r, err := NewAnalyzer(stubFeed{articles: []models.NewsArticle{{Title: "Gains"}}}).Run(context.Background(), "x", "stock")
	require.NoError(t, err)
	assert.Equal(t, []string{"stub"}, r.SourcesScanned)
	assert.Empty(t, r.Timeline)
}
