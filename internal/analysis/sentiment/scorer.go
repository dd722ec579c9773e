// Package sentiment scores news headlines with a weighted word lexicon and
// aggregates them into a daily timeline and an overall signal.
package sentiment

import (
	"regexp"
	"slices"
	"strings"

	"github.com/seenimoa/stonks/pkg/models"
)

// Labels for a single text.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

const labelThreshold = 0.2

// Strong words weigh 2, the rest 1.
var positiveWords = map[string]int{
	"surge": 2, "soar": 2, "skyrocket": 2, "boom": 2, "breakout": 2,
	"moonshot": 2, "parabolic": 2, "explosive": 2, "unprecedented": 2,

	"rally": 1, "gain": 1, "rise": 1, "jump": 1, "climb": 1, "bull": 1, "bullish": 1,
	"spike": 1, "rebound": 1, "recover": 1, "uptick": 1, "upbeat": 1,
	"profit": 1, "growth": 1, "revenue": 1, "earnings": 1, "dividend": 1,
	"outperform": 1, "beat": 1, "exceed": 1, "record": 1, "high": 1, "peak": 1,
	"strong": 1, "positive": 1, "optimistic": 1, "confident": 1, "favorable": 1,
	"promising": 1, "encouraging": 1, "healthy": 1, "robust": 1, "solid": 1, "stable": 1,
	"upgrade": 1, "buy": 1, "accumulate": 1, "recommend": 1, "endorse": 1, "approve": 1,
	"launch": 1, "expand": 1, "acquire": 1, "partner": 1, "innovate": 1, "disrupt": 1,
	"breakthrough": 1, "success": 1, "victory": 1, "win": 1, "deal": 1, "agreement": 1,
	"partnership": 1, "collaboration": 1, "investment": 1, "funding": 1, "ipo": 1,
	"adoption": 1, "milestone": 1, "achievement": 1, "momentum": 1, "upside": 1,
}

var negativeWords = map[string]int{
	"crash": 2, "collapse": 2, "plummet": 2, "tank": 2, "disaster": 2,
	"catastrophe": 2, "bankrupt": 2, "fraud": 2, "scam": 2, "ponzi": 2,

	"plunge": 1, "fall": 1, "drop": 1, "decline": 1, "tumble": 1, "sink": 1, "bear": 1, "bearish": 1,
	"dive": 1, "slump": 1, "selloff": 1, "downturn": 1, "downgrade": 1,
	"loss": 1, "deficit": 1, "debt": 1, "miss": 1, "disappoint": 1, "shortfall": 1, "underperform": 1,
	"writedown": 1, "impairment": 1, "default": 1, "bankruptcy": 1, "insolvency": 1,
	"weak": 1, "negative": 1, "pessimistic": 1, "uncertain": 1, "volatile": 1, "risky": 1,
	"concerning": 1, "troubling": 1, "alarming": 1, "worrying": 1, "struggling": 1,
	"sell": 1, "avoid": 1, "cut": 1, "layoff": 1, "restructure": 1, "divest": 1,
	"terminate": 1, "suspend": 1, "halt": 1, "delay": 1, "cancel": 1, "recall": 1,
	"lawsuit": 1, "investigation": 1, "probe": 1, "scandal": 1, "violation": 1,
	"fine": 1, "penalty": 1, "sanction": 1, "warning": 1, "crisis": 1, "recession": 1,
	"inflation": 1, "war": 1, "conflict": 1, "tariff": 1, "restriction": 1, "ban": 1, "shortage": 1,
	"liquidation": 1, "hack": 1, "exploit": 1, "rug": 1, "dump": 1, "manipulation": 1,
}

var wordRe = regexp.MustCompile(`\b\w+\b`)

// Score is the lexicon result for one text.
type Score struct {
	Score         float64  `json:"score"`
	Label         string   `json:"label"`
	PositiveWords []string `json:"positive_words"`
	NegativeWords []string `json:"negative_words"`
	PosWeight     int      `json:"pos_weight"`
	NegWeight     int      `json:"neg_weight"`
}

// ScoreText counts each distinct lexicon word once. The score is
// (pos - neg) / (pos + neg), rounded to 3 decimals.
func ScoreText(text string) Score {
	s := Score{Label: LabelNeutral, PositiveWords: []string{}, NegativeWords: []string{}}
	if text == "" {
		return s
	}

	seen := make(map[string]bool)
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if seen[w] {
			continue
		}
		seen[w] = true
		if wt, ok := positiveWords[w]; ok {
			s.PositiveWords = append(s.PositiveWords, w)
			s.PosWeight += wt
		}
		if wt, ok := negativeWords[w]; ok {
			s.NegativeWords = append(s.NegativeWords, w)
			s.NegWeight += wt
		}
	}
	slices.Sort(s.PositiveWords)
	slices.Sort(s.NegativeWords)

	if total := s.PosWeight + s.NegWeight; total > 0 {
		s.Score = models.Round(float64(s.PosWeight-s.NegWeight)/float64(total), 3)
	}
	s.Label = label(s.Score)
	return s
}

func label(score float64) string {
	switch {
	case score > labelThreshold:
		return LabelPositive
	case score < -labelThreshold:
		return LabelNegative
	}
	return LabelNeutral
}

// Article is a headline with its score.
type Article struct {
	models.NewsArticle
	Date      string `json:"date,omitempty"`
	Sentiment Score  `json:"sentiment"`
}

// ScoreArticle scores the article text. A score assigned by the source
// wins over the lexicon.
func ScoreArticle(a models.NewsArticle) Article {
	out := Article{NewsArticle: a}
	if a.SourceSentiment != nil {
		v := *a.SourceSentiment
		out.Sentiment = Score{Score: v, Label: label(v), PositiveWords: []string{}, NegativeWords: []string{}}
	} else {
		out.Sentiment = ScoreText(a.Text())
	}
	if !a.PublishedAt.IsZero() {
		out.Date = a.PublishedAt.Format("2006-01-02")
	}
	return out
}
