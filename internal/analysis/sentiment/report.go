package sentiment

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/seenimoa/stonks/internal/market"
	"github.com/seenimoa/stonks/pkg/models"
)

// ScanPeriod is the news window the collectors search.
const ScanPeriod = "30 days"

const (
	countThreshold  = 0.15
	strongThreshold = 0.3
	trendThreshold  = 0.1
	trendMinDays    = 5
	trendWindow     = 3
	rollingMinDays  = 3
	dayArticles     = 5
	dayTitleLen     = 100
	maxNews         = 40
)

// Trend labels.
const (
	TrendImproving     = "IMPROVING"
	TrendDeteriorating = "DETERIORATING"
	TrendStable        = "STABLE"
)

// ErrNoNews is returned when no collector produced a headline.
var ErrNoNews = fmt.Errorf("%w: could not fetch news data from any source", market.ErrNotFound)

// DayArticle is the short form of an article in the timeline.
type DayArticle struct {
	Title  string  `json:"title"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
	Label  string  `json:"label"`
}

// Day is one timeline entry. Rolling averages are only set when the
// timeline spans at least 3 days.
type Day struct {
	Date              string       `json:"date"`
	AvgSentiment      float64      `json:"avg_sentiment"`
	ArticleCount      int          `json:"article_count"`
	Positive          int          `json:"positive"`
	Negative          int          `json:"negative"`
	Neutral           int          `json:"neutral"`
	DailyCumulative   int          `json:"daily_cumulative"`
	RunningCumulative int          `json:"running_cumulative"`
	Articles          []DayArticle `json:"articles"`
	RollingAvg        *float64     `json:"rolling_avg,omitempty"`
	RollingAvg7d      *float64     `json:"rolling_avg_7d,omitempty"`

	scores []float64
}

// Aggregate summarizes every article.
type Aggregate struct {
	Score             float64 `json:"score"`
	WeightedScore     float64 `json:"weighted_score"`
	Overall           string  `json:"overall"`
	Signal            string  `json:"signal"`
	Trend             string  `json:"trend"`
	TrendStrength     float64 `json:"trend_strength"`
	PositiveCount     int     `json:"positive_count"`
	NegativeCount     int     `json:"negative_count"`
	NeutralCount      int     `json:"neutral_count"`
	CumulativeScore   int     `json:"cumulative_score"`
	StrongestPositive float64 `json:"strongest_positive"`
	StrongestNegative float64 `json:"strongest_negative"`
}

// Report is the sentiment analysis of one query.
type Report struct {
	Query            string    `json:"query"`
	AssetType        string    `json:"asset_type"`
	Timestamp        time.Time `json:"timestamp"`
	ScanPeriod       string    `json:"scan_period"`
	ArticlesAnalyzed int       `json:"articles_analyzed"`
	SourcesScanned   []string  `json:"sources_scanned"`
	Aggregate        Aggregate `json:"aggregate"`
	Timeline         []*Day    `json:"timeline"`
	News             []Article `json:"news"`
}

// Feed collects deduplicated headlines for a query and names the sources
// that returned something.
type Feed interface {
	Collect(ctx context.Context, query, assetType string) ([]models.NewsArticle, []string, error)
}

// Analyzer runs a Feed and scores the result.
type Analyzer struct {
	feed Feed
	now  func() time.Time
}

func NewAnalyzer(feed Feed) *Analyzer {
	return &Analyzer{feed: feed, now: time.Now}
}

// Run collects news for query and analyzes it.
func (a *Analyzer) Run(ctx context.Context, query, assetType string) (*Report, error) {
	articles, sources, err := a.feed.Collect(ctx, query, assetType)
	if err != nil {
		return nil, err
	}
	return Analyze(query, assetType, articles, sources, a.now())
}

// Analyze scores articles and builds the report. articles are expected to
// be deduplicated already.
func Analyze(query, assetType string, articles []models.NewsArticle, sources []string, now time.Time) (*Report, error) {
	if len(articles) == 0 {
		return nil, ErrNoNews
	}

	scored := make([]Article, len(articles))
	for i, a := range articles {
		scored[i] = ScoreArticle(a)
	}

	timeline := buildTimeline(scored)
	agg := aggregate(scored)
	agg.Trend, agg.TrendStrength = detectTrend(timeline)

	// newest first, undated last
	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i].PublishedAt, scored[j].PublishedAt
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b)
	})
	news := scored
	if len(news) > maxNews {
		news = news[:maxNews]
	}
	if sources == nil {
		sources = []string{}
	}

	return &Report{
		Query:            query,
		AssetType:        assetType,
		Timestamp:        now,
		ScanPeriod:       ScanPeriod,
		ArticlesAnalyzed: len(scored),
		SourcesScanned:   sources,
		Aggregate:        agg,
		Timeline:         timeline,
		News:             news,
	}, nil
}

// ════════════════════════════════════════════════════════════════════
// Timeline
// ════════════════════════════════════════════════════════════════════

// classify is +1, -1 or 0. A score just past 0.15 already counts even
// though the label stays neutral until 0.2.
func classify(s Score) int {
	switch {
	case s.Label == LabelPositive || s.Score > countThreshold:
		return 1
	case s.Label == LabelNegative || s.Score < -countThreshold:
		return -1
	}
	return 0
}

func buildTimeline(articles []Article) []*Day {
	byDate := make(map[string]*Day)
	for _, a := range articles {
		if a.Date == "" {
			continue
		}
		d, ok := byDate[a.Date]
		if !ok {
			d = &Day{Date: a.Date, Articles: []DayArticle{}}
			byDate[a.Date] = d
		}
		d.scores = append(d.scores, a.Sentiment.Score)
		switch classify(a.Sentiment) {
		case 1:
			d.Positive++
			d.DailyCumulative++
		case -1:
			d.Negative++
			d.DailyCumulative--
		default:
			d.Neutral++
		}
		if len(d.Articles) < dayArticles {
			d.Articles = append(d.Articles, DayArticle{
				Title:  truncate(a.Title, dayTitleLen),
				Source: a.Source,
				Score:  a.Sentiment.Score,
				Label:  a.Sentiment.Label,
			})
		}
	}

	timeline := make([]*Day, 0, len(byDate))
	for _, d := range byDate {
		timeline = append(timeline, d)
	}
	sort.Slice(timeline, func(i, j int) bool { return timeline[i].Date < timeline[j].Date })

	running := 0
	for _, d := range timeline {
		d.ArticleCount = len(d.scores)
		d.AvgSentiment = models.Round(stat.Mean(d.scores, nil), 3)
		running += d.DailyCumulative
		d.RunningCumulative = running
	}

	if len(timeline) >= rollingMinDays {
		for i, d := range timeline {
			r3 := rollingMean(timeline, i, 3)
			r7 := rollingMean(timeline, i, 7)
			d.RollingAvg, d.RollingAvg7d = &r3, &r7
		}
	}
	return timeline
}

// rollingMean averages the daily averages of up to n days ending at i.
func rollingMean(timeline []*Day, i, n int) float64 {
	start := max(0, i-n+1)
	var sum float64
	for _, d := range timeline[start : i+1] {
		sum += d.AvgSentiment
	}
	return models.Round(sum/float64(i+1-start), 3)
}

// detectTrend compares the mean of the last 3 days with the 3 before.
func detectTrend(timeline []*Day) (string, float64) {
	if len(timeline) < trendMinDays {
		return TrendStable, 0
	}
	n := len(timeline)
	recent := dayMean(timeline[n-trendWindow:])
	older := dayMean(timeline[max(0, n-2*trendWindow) : n-trendWindow])
	diff := recent - older

	trend := TrendStable
	switch {
	case diff > trendThreshold:
		trend = TrendImproving
	case diff < -trendThreshold:
		trend = TrendDeteriorating
	}
	return trend, models.Round(math.Abs(diff), 3)
}

func dayMean(days []*Day) float64 {
	xs := make([]float64, len(days))
	for i, d := range days {
		xs[i] = d.AvgSentiment
	}
	return stat.Mean(xs, nil)
}

// ════════════════════════════════════════════════════════════════════
// Aggregate
// ════════════════════════════════════════════════════════════════════

// aggregate weights each score by 1+|s| so strong headlines count more.
func aggregate(articles []Article) Aggregate {
	scores := make([]float64, len(articles))
	weighted := make([]float64, len(articles))
	agg := Aggregate{}
	for i, a := range articles {
		s := a.Sentiment.Score
		scores[i] = s
		weighted[i] = s * (1 + math.Abs(s))
		switch {
		case s > countThreshold:
			agg.PositiveCount++
		case s < -countThreshold:
			agg.NegativeCount++
		}
	}
	agg.NeutralCount = len(scores) - agg.PositiveCount - agg.NegativeCount
	agg.CumulativeScore = agg.PositiveCount - agg.NegativeCount

	w := stat.Mean(weighted, nil)
	agg.Score = models.Round(stat.Mean(scores, nil), 3)
	agg.WeightedScore = models.Round(w, 3)
	agg.StrongestPositive = models.Round(slices.Max(scores), 3)
	agg.StrongestNegative = models.Round(slices.Min(scores), 3)
	agg.Overall, agg.Signal = overall(w)
	return agg
}

func overall(weighted float64) (string, string) {
	switch {
	case weighted > strongThreshold:
		return "VERY BULLISH", "STRONG BUY"
	case weighted > countThreshold:
		return "BULLISH", "BUY"
	case weighted < -strongThreshold:
		return "VERY BEARISH", "STRONG SELL"
	case weighted < -countThreshold:
		return "BEARISH", "SELL"
	}
	return "NEUTRAL", "HOLD"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
